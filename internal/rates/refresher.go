package rates

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/hongminglow/bank-be/internal/metrics"
	"github.com/hongminglow/bank-be/internal/models"
)

var ErrNoMainCurrency = errors.New("no main currency configured")

// Provider returns the latest rates against a base currency.
type Provider interface {
	Latest(ctx context.Context, base string) (Quote, error)
}

// CurrencyStore is the part of the currency service the refresher needs.
type CurrencyStore interface {
	GetAll(ctx context.Context) ([]models.Currency, error)
	UpdateRate(ctx context.Context, id int64, rate decimal.Decimal, syncedAt time.Time) error
}

const refreshTimeout = time.Minute

// Refresher syncs stored exchange rates with the provider.
// Concurrent refreshes share a single in-flight run.
type Refresher struct {
	currencies CurrencyStore
	provider   Provider
	metrics    *metrics.Registry
	group      singleflight.Group
	now        func() time.Time
}

func NewRefresher(currencies CurrencyStore, provider Provider, m *metrics.Registry) *Refresher {
	return &Refresher{
		currencies: currencies,
		provider:   provider,
		metrics:    m,
		now:        time.Now,
	}
}

// Refresh updates every stored currency the provider quotes against the main currency.
// The shared run is detached from the cancellation of whichever caller started
// it and bounded by refreshTimeout instead.
func (r *Refresher) Refresh(ctx context.Context) error {
	_, err, shared := r.group.Do("refresh", func() (any, error) {
		runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
		defer cancel()
		return nil, r.refresh(runCtx)
	})
	if shared {
		log.Debug().Msg("Joined in-flight exchange rate refresh")
	}
	return err
}

// RefreshExchangeRates runs a refresh and logs its outcome. Errors never propagate.
func (r *Refresher) RefreshExchangeRates(ctx context.Context) {
	started := r.now()
	if err := r.Refresh(ctx); err != nil {
		r.observe("error")
		log.Error().Err(err).Msg("Exchange rate refresh failed")
		return
	}
	r.observe("ok")
	if r.metrics != nil {
		r.metrics.RateRefreshLastOK.Set(float64(r.now().Unix()))
	}
	log.Info().Dur("took", r.now().Sub(started)).Msg("Exchange rates refreshed")
}

func (r *Refresher) observe(result string) {
	if r.metrics != nil {
		r.metrics.RateRefreshes.WithLabelValues(result).Inc()
	}
}

func (r *Refresher) refresh(ctx context.Context) error {
	currencies, err := r.currencies.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("load currencies: %w", err)
	}
	main, ok := mainCurrency(currencies)
	if !ok {
		return ErrNoMainCurrency
	}

	quote, err := r.provider.Latest(ctx, main.Name)
	if err != nil {
		return err
	}

	syncedAt := r.now()
	for _, c := range currencies {
		rate := decimal.NewFromInt(1)
		if c.ID != main.ID {
			quoted, ok := quote.Rates[c.Name]
			if !ok || !quoted.IsPositive() {
				log.Warn().Str("currency", c.Name).Str("base", main.Name).Msg("Provider has no rate for currency")
				continue
			}
			rate = quoted
		}
		if err := r.currencies.UpdateRate(ctx, c.ID, rate, syncedAt); err != nil {
			return fmt.Errorf("update rate of %s: %w", c.Name, err)
		}
		log.Debug().Str("currency", c.Name).Stringer("rate", rate).Msg("Exchange rate updated")
	}
	return nil
}

func mainCurrency(currencies []models.Currency) (models.Currency, bool) {
	for _, c := range currencies {
		if c.Main {
			return c, true
		}
	}
	return models.Currency{}, false
}
