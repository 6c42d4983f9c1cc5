package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hongminglow/bank-be/internal/models"
)

const userColumns = `id, login, name, surname, email, role, password_hash, created_at,
	last_successful_login_at, last_failed_login_at`

// CreateUser inserts a new user row and returns it with its generated id.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	query := `
		INSERT INTO users (login, name, surname, email, role, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	row := s.conn(ctx).QueryRow(ctx, query,
		user.Login, user.Name, user.Surname, user.Email, user.Role, user.PasswordHash)
	return scanUser(row)
}

// FindByLogin fetches a user by login.
func (s *Store) FindByLogin(ctx context.Context, login string) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1`
	return scanUser(s.conn(ctx).QueryRow(ctx, query, login))
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(s.conn(ctx).QueryRow(ctx, query, id))
}

// TouchLogin records the time of a successful or failed login attempt.
func (s *Store) TouchLogin(ctx context.Context, id int64, succeeded bool, at time.Time) error {
	query := `UPDATE users SET last_failed_login_at = $2 WHERE id = $1`
	if succeeded {
		query = `UPDATE users SET last_successful_login_at = $2 WHERE id = $1`
	}
	_, err := s.conn(ctx).Exec(ctx, query, id, at)
	return mapError(err)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Login, &user.Name, &user.Surname, &user.Email, &user.Role,
		&user.PasswordHash, &user.CreatedAt, &user.LastSuccessfulLoginAt, &user.LastFailedLoginAt,
	)
	if err != nil {
		return models.User{}, mapError(err)
	}
	return user, nil
}
