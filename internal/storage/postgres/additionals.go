package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/bank-be/internal/models"
)

const additionalColumns = `id, owner_id, incoming_transfers_sum, outgoing_transfers_sum, account_balance_history`

// CreateAdditional inserts the auxiliary record of a user.
func (s *Store) CreateAdditional(ctx context.Context, additional models.Additional) (models.Additional, error) {
	history := additional.AccountBalanceHistory
	if history == "" {
		history = models.DefaultBalanceHistory
	}
	query := `
		INSERT INTO additionals (owner_id, incoming_transfers_sum, outgoing_transfers_sum, account_balance_history)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + additionalColumns
	row := s.conn(ctx).QueryRow(ctx, query,
		additional.OwnerID, additional.IncomingTransfersSum, additional.OutgoingTransfersSum, history)
	return scanAdditional(row)
}

// FindAdditionalByOwner fetches the auxiliary record of a user.
func (s *Store) FindAdditionalByOwner(ctx context.Context, ownerID int64) (models.Additional, error) {
	query := `SELECT ` + additionalColumns + ` FROM additionals WHERE owner_id = $1`
	return scanAdditional(s.conn(ctx).QueryRow(ctx, query, ownerID))
}

func scanAdditional(row pgx.Row) (models.Additional, error) {
	var a models.Additional
	err := row.Scan(&a.ID, &a.OwnerID, &a.IncomingTransfersSum, &a.OutgoingTransfersSum, &a.AccountBalanceHistory)
	if err != nil {
		return models.Additional{}, mapError(err)
	}
	return a, nil
}
