package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/hongminglow/bank-be/internal/auth"
	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/service"
	"github.com/hongminglow/bank-be/internal/storage"
	"github.com/hongminglow/bank-be/internal/storage/memory"
)

func TestUserService_Insert_HashesPassword(t *testing.T) {
	store := memory.New()
	svc := service.NewUserService(store, auth.NewBcryptHasher(bcrypt.MinCost))

	u, err := svc.Insert(context.TODO(), models.NewUser{
		Login: " happy_customer ", Name: "Happy", Surname: "Customer",
		Email: "happy@example.com", Password: "sup3rS3cr3t",
	})
	require.NoError(t, err)
	assert.True(t, u.ID > 0)
	assert.Equal(t, "happy_customer", u.Login)
	assert.Equal(t, models.RoleCustomer, u.Role)
	assert.NotEqual(t, "sup3rS3cr3t", u.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("sup3rS3cr3t")))

	got, err := svc.GetByLogin(context.TODO(), "happy_customer")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestUserService_Insert_Errors(t *testing.T) {
	tests := []struct {
		name    string
		user    models.NewUser
		wantErr error
	}{
		{"empty login", models.NewUser{Login: "  ", Password: "secret"}, service.ErrEmptyLogin},
		{"empty password", models.NewUser{Login: "bar"}, service.ErrEmptyPassword},
		{"duplicate login", models.NewUser{Login: "taken", Email: "x@example.com", Password: "secret"}, storage.ErrAlreadyExists},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := service.NewUserService(memory.New(), auth.NewBcryptHasher(bcrypt.MinCost))
			_, err := svc.Insert(context.TODO(), models.NewUser{Login: "taken", Email: "taken@example.com", Password: "secret"})
			require.NoError(t, err)

			_, err = svc.Insert(context.TODO(), tt.user)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	store := memory.New()
	svc := service.NewUserService(store, auth.NewBcryptHasher(bcrypt.MinCost))
	created, err := svc.Insert(context.TODO(), models.NewUser{Login: "shopper", Email: "s@example.com", Password: "sup3rS3cr3t"})
	require.NoError(t, err)

	u, err := svc.Authenticate(context.TODO(), "shopper", "sup3rS3cr3t")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)
	assert.NotNil(t, u.LastSuccessfulLoginAt)

	_, err = svc.Authenticate(context.TODO(), "shopper", "guessing")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	stored, err := store.FindByID(context.TODO(), created.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastFailedLoginAt)

	_, err = svc.Authenticate(context.TODO(), "unknown", "sup3rS3cr3t")
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	_, err = svc.Authenticate(context.TODO(), "shopper", "")
	assert.ErrorIs(t, err, service.ErrEmptyPassword)
}

func TestBillService_GenerateAccountBill(t *testing.T) {
	svc := service.NewBillService(memory.New())

	seen := map[string]bool{}
	for range 20 {
		number, err := svc.GenerateAccountBill(context.TODO())
		require.NoError(t, err)
		assert.Len(t, number, service.AccountBillLength)
		assert.Empty(t, strings.Trim(number, "0123456789"))
		seen[number] = true
	}
	assert.Len(t, seen, 20)
}

func TestBillService_GenerateAccountBill_RedrawsTakenNumbers(t *testing.T) {
	ctx := context.TODO()
	store := memory.New()
	seedOwnerAndCurrency(t, store)

	// a reader of zeroes always yields the same number
	svc := service.NewBillServiceWithRandom(store, bytes.NewReader(make([]byte, 4096)))
	first, err := svc.GenerateAccountBill(ctx)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("0", service.AccountBillLength), first)

	_, err = svc.Insert(ctx, models.Bill{OwnerID: 1, AccountBill: first, CurrencyID: 1})
	require.NoError(t, err)

	_, err = svc.GenerateAccountBill(ctx)
	assert.ErrorIs(t, err, service.ErrAccountBillExhausted)
}

func TestBillService_Insert(t *testing.T) {
	ctx := context.TODO()
	store := memory.New()
	seedOwnerAndCurrency(t, store)
	svc := service.NewBillService(store)

	bill, err := svc.Insert(ctx, models.Bill{OwnerID: 1, AccountBill: "123", CurrencyID: 1})
	require.NoError(t, err)
	assert.True(t, bill.AvailableFunds.IsZero())

	_, err = svc.Insert(ctx, models.Bill{OwnerID: 1, AccountBill: "456", CurrencyID: 1, AvailableFunds: decimal.NewFromInt(-1)})
	assert.Error(t, err)

	bills, err := svc.ListByOwner(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, bills, 1)
}

func TestAdditionalService_Insert(t *testing.T) {
	ctx := context.TODO()
	store := memory.New()
	seedOwnerAndCurrency(t, store)

	a, err := service.NewAdditionalService(store).Insert(ctx, models.Additional{OwnerID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.OwnerID)
	assert.Equal(t, models.DefaultBalanceHistory, a.AccountBalanceHistory)
	assert.True(t, a.IncomingTransfersSum.IsZero())
}

func seedOwnerAndCurrency(t *testing.T, store *memory.Store) {
	t.Helper()
	_, err := store.CreateUser(context.TODO(), models.User{Login: "owner", Email: "owner@example.com"})
	require.NoError(t, err)
	_, err = store.CreateCurrency(context.TODO(), models.Currency{ID: 1, Name: "USD"})
	require.NoError(t, err)
}
