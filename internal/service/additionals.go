package service

import (
	"context"

	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

// AdditionalService manages per-user auxiliary records.
type AdditionalService struct {
	store storage.AdditionalStore
}

func NewAdditionalService(store storage.AdditionalStore) *AdditionalService {
	return &AdditionalService{store: store}
}

func (s *AdditionalService) Insert(ctx context.Context, additional models.Additional) (models.Additional, error) {
	if additional.AccountBalanceHistory == "" {
		additional.AccountBalanceHistory = models.DefaultBalanceHistory
	}
	return s.store.CreateAdditional(ctx, additional)
}
