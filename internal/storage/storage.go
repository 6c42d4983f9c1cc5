package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/bank-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Transactor runs fn inside a transaction carried by the context it passes on.
// Store calls made with that context join the transaction. fn returning an
// error rolls everything back.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserStore captures persistence operations for users.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByLogin(ctx context.Context, login string) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	TouchLogin(ctx context.Context, id int64, succeeded bool, at time.Time) error
}

// BillStore captures persistence operations for bills.
type BillStore interface {
	CreateBill(ctx context.Context, bill models.Bill) (models.Bill, error)
	AccountBillExists(ctx context.Context, accountBill string) (bool, error)
	ListBillsByOwner(ctx context.Context, ownerID int64) ([]models.Bill, error)
}

// CurrencyStore captures persistence operations for currencies.
// CreateCurrency reports ErrAlreadyExists without aborting a surrounding transaction.
type CurrencyStore interface {
	CreateCurrency(ctx context.Context, currency models.Currency) (models.Currency, error)
	ListCurrencies(ctx context.Context) ([]models.Currency, error)
	FindCurrencyByID(ctx context.Context, id int64) (models.Currency, error)
	UpdateExchangeRate(ctx context.Context, id int64, rate decimal.Decimal, syncedAt time.Time) error
}

// AdditionalStore captures persistence operations for per-user auxiliary records.
type AdditionalStore interface {
	CreateAdditional(ctx context.Context, additional models.Additional) (models.Additional, error)
	FindAdditionalByOwner(ctx context.Context, ownerID int64) (models.Additional, error)
}
