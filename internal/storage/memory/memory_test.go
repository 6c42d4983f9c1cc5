package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

func TestWithTransaction_RollbackRestoresState(t *testing.T) {
	s := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		_, err := s.CreateUser(ctx, models.User{Login: "temp", Email: "temp@example.com"})
		require.NoError(t, err)
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.FindByLogin(ctx, "temp")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, 1, s.Inserts(OpCreateUser))
}

func TestWithTransaction_OutsideWriteSurvivesRollback(t *testing.T) {
	s := New()
	ctx := context.Background()
	u, err := s.CreateUser(ctx, models.User{Login: "jan", Email: "jan@example.com"})
	require.NoError(t, err)

	inTx := make(chan struct{})
	release := make(chan struct{})
	txDone := make(chan error, 1)
	go func() {
		txDone <- s.WithTransaction(ctx, func(ctx context.Context) error {
			close(inTx)
			<-release
			return errors.New("abort")
		})
	}()
	<-inTx

	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	touched := make(chan error, 1)
	go func() { touched <- s.TouchLogin(ctx, u.ID, true, at) }()

	select {
	case <-touched:
		t.Fatal("write outside the transaction completed while it was open")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.Error(t, <-txDone)
	require.NoError(t, <-touched)

	got, err := s.FindByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastSuccessfulLoginAt)
	assert.True(t, at.Equal(*got.LastSuccessfulLoginAt))
}

func TestWithTransaction_NestedJoinsOuter(t *testing.T) {
	s := New()
	ctx := context.Background()

	err := s.WithTransaction(ctx, func(ctx context.Context) error {
		return s.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := s.CreateCurrency(ctx, models.Currency{ID: 1, Name: "USD"})
			return err
		})
	})
	require.NoError(t, err)

	c, err := s.FindCurrencyByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "USD", c.Name)
}
