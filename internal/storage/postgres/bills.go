package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/bank-be/internal/models"
)

// CreateBill inserts a bill and returns it with its generated id.
func (s *Store) CreateBill(ctx context.Context, bill models.Bill) (models.Bill, error) {
	const query = `
		INSERT INTO bills (owner_id, account_bill, currency_id, available_funds)
		VALUES ($1, $2, $3, $4)
		RETURNING id, owner_id, account_bill, currency_id, available_funds`
	row := s.conn(ctx).QueryRow(ctx, query, bill.OwnerID, bill.AccountBill, bill.CurrencyID, bill.AvailableFunds)
	return scanBill(row)
}

// AccountBillExists reports whether an account number is already taken.
func (s *Store) AccountBillExists(ctx context.Context, accountBill string) (bool, error) {
	var exists bool
	err := s.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bills WHERE account_bill = $1)`, accountBill,
	).Scan(&exists)
	if err != nil {
		return false, mapError(err)
	}
	return exists, nil
}

// ListBillsByOwner returns the bills of a user ordered by id.
func (s *Store) ListBillsByOwner(ctx context.Context, ownerID int64) ([]models.Bill, error) {
	const query = `
		SELECT id, owner_id, account_bill, currency_id, available_funds
		FROM bills WHERE owner_id = $1 ORDER BY id`
	rows, err := s.conn(ctx).Query(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	defer rows.Close()

	var out []models.Bill
	for rows.Next() {
		bill, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, bill)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bills: %w", err)
	}
	return out, nil
}

func scanBill(row pgx.Row) (models.Bill, error) {
	var bill models.Bill
	if err := row.Scan(&bill.ID, &bill.OwnerID, &bill.AccountBill, &bill.CurrencyID, &bill.AvailableFunds); err != nil {
		return models.Bill{}, mapError(err)
	}
	return bill, nil
}
