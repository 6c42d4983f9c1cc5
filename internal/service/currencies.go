package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

// CurrencyService manages currencies and their exchange rates.
type CurrencyService struct {
	store storage.CurrencyStore
}

func NewCurrencyService(store storage.CurrencyStore) *CurrencyService {
	return &CurrencyService{store: store}
}

func (s *CurrencyService) GetAll(ctx context.Context) ([]models.Currency, error) {
	return s.store.ListCurrencies(ctx)
}

// GetByID returns storage.ErrNotFound for an unknown id.
func (s *CurrencyService) GetByID(ctx context.Context, id int64) (models.Currency, error) {
	return s.store.FindCurrencyByID(ctx, id)
}

func (s *CurrencyService) Insert(ctx context.Context, currency models.Currency) (models.Currency, error) {
	return s.store.CreateCurrency(ctx, currency)
}

func (s *CurrencyService) UpdateRate(ctx context.Context, id int64, rate decimal.Decimal, syncedAt time.Time) error {
	return s.store.UpdateExchangeRate(ctx, id, rate, syncedAt)
}
