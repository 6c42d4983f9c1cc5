package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

const currencyColumns = `id, name, main, exchange_rate, exchange_rate_synced_at`

// CreateCurrency inserts a currency with an explicit id. A conflicting row is
// left untouched and reported as storage.ErrAlreadyExists; ON CONFLICT keeps
// an enclosing transaction usable.
func (s *Store) CreateCurrency(ctx context.Context, currency models.Currency) (models.Currency, error) {
	rate := currency.ExchangeRate
	if rate.IsZero() {
		rate = decimal.NewFromInt(1)
	}
	query := `
		INSERT INTO currencies (id, name, main, exchange_rate)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
		RETURNING ` + currencyColumns
	created, err := scanCurrency(s.conn(ctx).QueryRow(ctx, query, currency.ID, currency.Name, currency.Main, rate))
	if errors.Is(err, storage.ErrNotFound) {
		return models.Currency{}, storage.ErrAlreadyExists
	}
	return created, err
}

// ListCurrencies returns all currencies ordered by id.
func (s *Store) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	rows, err := s.conn(ctx).Query(ctx, `SELECT `+currencyColumns+` FROM currencies ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list currencies: %w", err)
	}
	defer rows.Close()

	var out []models.Currency
	for rows.Next() {
		currency, err := scanCurrency(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, currency)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate currencies: %w", err)
	}
	return out, nil
}

// FindCurrencyByID fetches a currency by id.
func (s *Store) FindCurrencyByID(ctx context.Context, id int64) (models.Currency, error) {
	return scanCurrency(s.conn(ctx).QueryRow(ctx, `SELECT `+currencyColumns+` FROM currencies WHERE id = $1`, id))
}

// UpdateExchangeRate stores a freshly synced rate for a currency.
func (s *Store) UpdateExchangeRate(ctx context.Context, id int64, rate decimal.Decimal, syncedAt time.Time) error {
	tag, err := s.conn(ctx).Exec(ctx,
		`UPDATE currencies SET exchange_rate = $2, exchange_rate_synced_at = $3 WHERE id = $1`,
		id, rate, syncedAt,
	)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanCurrency(row pgx.Row) (models.Currency, error) {
	var currency models.Currency
	if err := row.Scan(&currency.ID, &currency.Name, &currency.Main, &currency.ExchangeRate, &currency.SyncedAt); err != nil {
		return models.Currency{}, mapError(err)
	}
	return currency, nil
}
