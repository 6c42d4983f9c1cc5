package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"

	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

const (
	AccountBillLength      = 26
	maxAccountBillAttempts = 10
)

// ErrAccountBillExhausted is returned when no free account number was drawn.
var ErrAccountBillExhausted = errors.New("unable to generate a unique account number")

// BillService manages bills.
type BillService struct {
	store  storage.BillStore
	random io.Reader
}

func NewBillService(store storage.BillStore) *BillService {
	return NewBillServiceWithRandom(store, rand.Reader)
}

// NewBillServiceWithRandom draws account numbers from the given source.
func NewBillServiceWithRandom(store storage.BillStore, random io.Reader) *BillService {
	return &BillService{store: store, random: random}
}

// GenerateAccountBill draws a random account number not yet used by any bill.
func (s *BillService) GenerateAccountBill(ctx context.Context) (string, error) {
	for range maxAccountBillAttempts {
		candidate, err := randomDigits(s.random, AccountBillLength)
		if err != nil {
			return "", fmt.Errorf("draw account number: %w", err)
		}
		taken, err := s.store.AccountBillExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrAccountBillExhausted
}

// Insert stores a bill. The zero value of AvailableFunds is a zero balance.
func (s *BillService) Insert(ctx context.Context, bill models.Bill) (models.Bill, error) {
	if bill.AvailableFunds.IsNegative() {
		return models.Bill{}, fmt.Errorf("negative funds %s", bill.AvailableFunds)
	}
	return s.store.CreateBill(ctx, bill)
}

func (s *BillService) ListByOwner(ctx context.Context, ownerID int64) ([]models.Bill, error) {
	return s.store.ListBillsByOwner(ctx, ownerID)
}

func randomDigits(r io.Reader, n int) (string, error) {
	buf := make([]byte, n)
	ten := big.NewInt(10)
	for i := range buf {
		d, err := rand.Int(r, ten)
		if err != nil {
			return "", err
		}
		buf[i] = byte('0' + d.Int64())
	}
	return string(buf), nil
}
