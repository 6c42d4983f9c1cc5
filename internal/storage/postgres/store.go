package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/bank-be/internal/storage"
)

// Ensure Store satisfies the storage interfaces at compile time.
var (
	_ storage.Transactor      = (*Store)(nil)
	_ storage.UserStore       = (*Store)(nil)
	_ storage.BillStore       = (*Store)(nil)
	_ storage.CurrencyStore   = (*Store)(nil)
	_ storage.AdditionalStore = (*Store)(nil)
)

const uniqueViolation = "23505"

// querier is the subset of pgx shared by the pool and a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// Store provides Postgres-backed persistence for users, bills, currencies and additionals.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// WithTransaction runs fn in a transaction. A transaction already present in
// ctx is reused so nested calls commit or roll back together.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if errRollback := tx.Rollback(ctx); errRollback != nil && !errors.Is(errRollback, pgx.ErrTxClosed) {
			log.Warn().Err(errRollback).Msg("Failed to rollback transaction")
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			login TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			surname TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			role TEXT NOT NULL DEFAULT 'customer',
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_successful_login_at TIMESTAMPTZ,
			last_failed_login_at TIMESTAMPTZ
		);`,
		`CREATE TABLE IF NOT EXISTS currencies (
			id BIGINT PRIMARY KEY,
			name TEXT UNIQUE NOT NULL,
			main BOOLEAN NOT NULL DEFAULT FALSE,
			exchange_rate NUMERIC(24,8) NOT NULL DEFAULT 1,
			exchange_rate_synced_at TIMESTAMPTZ
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS currencies_single_main_idx ON currencies (main) WHERE main;`,
		`CREATE TABLE IF NOT EXISTS bills (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			account_bill TEXT UNIQUE NOT NULL,
			currency_id BIGINT NOT NULL REFERENCES currencies(id),
			available_funds NUMERIC(24,2) NOT NULL DEFAULT 0
		);`,
		`CREATE INDEX IF NOT EXISTS bills_owner_idx ON bills (owner_id);`,
		`CREATE TABLE IF NOT EXISTS additionals (
			id BIGSERIAL PRIMARY KEY,
			owner_id BIGINT UNIQUE NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			incoming_transfers_sum NUMERIC(24,2) NOT NULL DEFAULT 0,
			outgoing_transfers_sum NUMERIC(24,2) NOT NULL DEFAULT 0,
			account_balance_history TEXT NOT NULL DEFAULT '0,0'
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func mapError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return storage.ErrAlreadyExists
	}
	return err
}
