package rates

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/bank-be/internal/metrics"
	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/service"
	"github.com/hongminglow/bank-be/internal/storage/memory"
)

type stubProvider struct {
	quote Quote
	err   error
	calls atomic.Int32
	gate  chan struct{}

	mu     sync.Mutex
	ctxErr error
}

func (p *stubProvider) Latest(ctx context.Context, base string) (Quote, error) {
	p.calls.Add(1)
	if p.gate != nil {
		<-p.gate
	}
	p.mu.Lock()
	p.ctxErr = ctx.Err()
	p.mu.Unlock()
	if p.err != nil {
		return Quote{}, p.err
	}
	q := p.quote
	q.Base = base
	return q, nil
}

func seededCurrencies(t *testing.T) *service.CurrencyService {
	t.Helper()
	svc := service.NewCurrencyService(memory.New())
	for _, c := range []models.Currency{
		{ID: 1, Name: "USD"},
		{ID: 2, Name: "PLN", Main: true},
		{ID: 3, Name: "EUR"},
	} {
		_, err := svc.Insert(context.TODO(), c)
		require.NoError(t, err)
	}
	return svc
}

func TestRefresher_Refresh(t *testing.T) {
	currencies := seededCurrencies(t)
	provider := &stubProvider{quote: Quote{Rates: map[string]decimal.Decimal{
		"USD": decimal.RequireFromString("0.25"),
		"EUR": decimal.RequireFromString("0.23"),
		"GBP": decimal.RequireFromString("0.20"),
	}}}
	r := NewRefresher(currencies, provider, nil)

	require.NoError(t, r.Refresh(context.TODO()))

	all, err := currencies.GetAll(context.TODO())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, decimal.RequireFromString("0.25").Equal(all[0].ExchangeRate))
	assert.True(t, decimal.NewFromInt(1).Equal(all[1].ExchangeRate))
	assert.True(t, decimal.RequireFromString("0.23").Equal(all[2].ExchangeRate))
	for _, c := range all {
		assert.NotNil(t, c.SyncedAt, c.Name)
	}
}

func TestRefresher_SkipsUnquotedCurrencies(t *testing.T) {
	currencies := seededCurrencies(t)
	provider := &stubProvider{quote: Quote{Rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("0.25")}}}

	require.NoError(t, NewRefresher(currencies, provider, nil).Refresh(context.TODO()))

	eur, err := currencies.GetByID(context.TODO(), 3)
	require.NoError(t, err)
	assert.Nil(t, eur.SyncedAt)
	assert.True(t, decimal.NewFromInt(1).Equal(eur.ExchangeRate))
}

func TestRefresher_Errors(t *testing.T) {
	t.Run("no main currency", func(t *testing.T) {
		svc := service.NewCurrencyService(memory.New())
		_, err := svc.Insert(context.TODO(), models.Currency{ID: 1, Name: "USD"})
		require.NoError(t, err)

		err = NewRefresher(svc, &stubProvider{}, nil).Refresh(context.TODO())
		assert.ErrorIs(t, err, ErrNoMainCurrency)
	})

	t.Run("provider failure", func(t *testing.T) {
		boom := errors.New("provider down")
		err := NewRefresher(seededCurrencies(t), &stubProvider{err: boom}, nil).Refresh(context.TODO())
		assert.ErrorIs(t, err, boom)
	})
}

func TestRefresher_RefreshExchangeRates_RecordsOutcome(t *testing.T) {
	m := metrics.New()
	provider := &stubProvider{err: errors.New("provider down")}
	r := NewRefresher(seededCurrencies(t), provider, m)

	r.RefreshExchangeRates(context.TODO())
	provider.err = nil
	provider.quote = Quote{Rates: map[string]decimal.Decimal{}}
	r.RefreshExchangeRates(context.TODO())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateRefreshes.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateRefreshes.WithLabelValues("ok")))
	assert.Greater(t, testutil.ToFloat64(m.RateRefreshLastOK), 0.0)
}

func TestRefresher_ConcurrentCallsShareOneRun(t *testing.T) {
	provider := &stubProvider{
		quote: Quote{Rates: map[string]decimal.Decimal{}},
		gate:  make(chan struct{}),
	}
	r := NewRefresher(seededCurrencies(t), provider, nil)

	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.Refresh(context.TODO()))
		}()
	}
	// let every caller reach the in-flight run before releasing it
	require.Eventually(t, func() bool { return provider.calls.Load() == 1 }, time.Second, time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	close(provider.gate)
	wg.Wait()

	assert.Equal(t, int32(1), provider.calls.Load())
}

func TestRefresher_JoinerSurvivesStarterCancellation(t *testing.T) {
	provider := &stubProvider{
		quote: Quote{Rates: map[string]decimal.Decimal{}},
		gate:  make(chan struct{}),
	}
	r := NewRefresher(seededCurrencies(t), provider, nil)

	starterCtx, cancel := context.WithCancel(context.Background())
	starterDone := make(chan error, 1)
	go func() { starterDone <- r.Refresh(starterCtx) }()
	require.Eventually(t, func() bool { return provider.calls.Load() == 1 }, time.Second, time.Millisecond)

	joinerDone := make(chan error, 1)
	go func() { joinerDone <- r.Refresh(context.Background()) }()
	time.Sleep(50 * time.Millisecond)

	cancel()
	close(provider.gate)

	assert.NoError(t, <-starterDone)
	assert.NoError(t, <-joinerDone)
	provider.mu.Lock()
	defer provider.mu.Unlock()
	assert.NoError(t, provider.ctxErr)
}
