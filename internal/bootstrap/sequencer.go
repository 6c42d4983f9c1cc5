// Package bootstrap brings a freshly migrated database to its baseline state:
// the reference currencies, the recurring exchange-rate refresh and the
// administrator account with its bill. Every step is safe to repeat.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/hongminglow/bank-be/internal/config"
	"github.com/hongminglow/bank-be/internal/metrics"
	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

// DefaultCurrencyID is the currency of bills created without an explicit one.
const DefaultCurrencyID int64 = 1

// RefreshJobName names the recurring exchange-rate job.
const RefreshJobName = "exchange-rates"

var ErrDefaultCurrencyMissing = errors.New("default currency is missing")

// ReferenceCurrencies is the fixed seed set, inserted in this order.
var ReferenceCurrencies = []models.Currency{
	{ID: 1, Name: "USD"},
	{ID: 2, Name: "PLN", Main: true},
	{ID: 3, Name: "EUR"},
}

type UserService interface {
	GetByLogin(ctx context.Context, login string) (models.User, error)
	Insert(ctx context.Context, user models.NewUser) (models.User, error)
}

type BillService interface {
	GenerateAccountBill(ctx context.Context) (string, error)
	Insert(ctx context.Context, bill models.Bill) (models.Bill, error)
}

type CurrencyService interface {
	GetAll(ctx context.Context) ([]models.Currency, error)
	GetByID(ctx context.Context, id int64) (models.Currency, error)
	Insert(ctx context.Context, currency models.Currency) (models.Currency, error)
}

type AdditionalService interface {
	Insert(ctx context.Context, additional models.Additional) (models.Additional, error)
}

// RateRefresher syncs exchange rates. It handles its own failures.
type RateRefresher interface {
	RefreshExchangeRates(ctx context.Context)
}

// Scheduler registers recurring jobs.
type Scheduler interface {
	Schedule(name, spec string, job func(ctx context.Context)) error
}

// Deps are the collaborators of a Sequencer.
type Deps struct {
	Users       UserService
	Bills       BillService
	Currencies  CurrencyService
	Additionals AdditionalService
	Transactor  storage.Transactor
	Refresher   RateRefresher
	Scheduler   Scheduler
	Metrics     *metrics.Registry
}

// Sequencer runs the startup bootstrap.
type Sequencer struct {
	deps            Deps
	admin           config.Admin
	refreshSchedule string
}

func New(deps Deps, admin config.Admin, refreshSchedule string) *Sequencer {
	return &Sequencer{deps: deps, admin: admin, refreshSchedule: refreshSchedule}
}

// Run executes the full bootstrap: currencies, recurring refresh, admin.
// The first failing step aborts the sequence.
func (s *Sequencer) Run(ctx context.Context) error {
	log.Info().Msg("Bootstrapping database")
	if err := s.EnsureCurrencies(ctx); err != nil {
		return fmt.Errorf("ensure currencies: %w", err)
	}
	if err := s.ScheduleRecurringRateRefresh(); err != nil {
		return fmt.Errorf("schedule rate refresh: %w", err)
	}
	if err := s.EnsureAdmin(ctx); err != nil {
		return fmt.Errorf("ensure admin: %w", err)
	}
	log.Info().Msg("Bootstrap complete")
	return nil
}

// EnsureCurrencies seeds the reference currencies into an empty table in a
// single transaction and then triggers an exchange-rate refresh. A non-empty
// table only triggers the refresh.
func (s *Sequencer) EnsureCurrencies(ctx context.Context) error {
	existing, err := s.deps.Currencies.GetAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Debug().Int("count", len(existing)).Msg("Currencies already seeded")
		s.deps.Refresher.RefreshExchangeRates(ctx)
		return nil
	}

	err = s.deps.Transactor.WithTransaction(ctx, func(ctx context.Context) error {
		for _, c := range ReferenceCurrencies {
			_, err := s.deps.Currencies.Insert(ctx, c)
			switch {
			case errors.Is(err, storage.ErrAlreadyExists):
				// seeded concurrently by another instance
				log.Info().Str("currency", c.Name).Msg("Currency already present, skipping")
			case err != nil:
				return fmt.Errorf("insert currency %s: %w", c.Name, err)
			default:
				s.countInsert("currency")
				log.Info().Int64("id", c.ID).Str("currency", c.Name).Bool("main", c.Main).Msg("Currency seeded")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.deps.Refresher.RefreshExchangeRates(ctx)
	return nil
}

// ScheduleRecurringRateRefresh registers the exchange-rate refresh on the
// configured schedule.
func (s *Sequencer) ScheduleRecurringRateRefresh() error {
	return s.deps.Scheduler.Schedule(RefreshJobName, s.refreshSchedule, s.deps.Refresher.RefreshExchangeRates)
}

// EnsureAdmin creates the administrator with a bill in the default currency
// and an empty additional record, all in one transaction. An existing admin
// is left untouched.
func (s *Sequencer) EnsureAdmin(ctx context.Context) error {
	logger := log.With().Str("login", s.admin.Login).Logger()

	_, err := s.deps.Users.GetByLogin(ctx, s.admin.Login)
	if err == nil {
		logger.Debug().Msg("Admin already exists")
		return nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("lookup admin: %w", err)
	}

	err = s.deps.Transactor.WithTransaction(ctx, func(ctx context.Context) error {
		return s.createAdmin(ctx)
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		// The transaction is rolled back; only a committed admin row under
		// our login makes the conflict a lost race.
		if _, lookupErr := s.deps.Users.GetByLogin(ctx, s.admin.Login); lookupErr == nil {
			logger.Info().Msg("Admin created concurrently, skipping")
			return nil
		}
	}
	if err != nil {
		return err
	}
	logger.Info().Msg("Admin account created")
	return nil
}

func (s *Sequencer) createAdmin(ctx context.Context) error {
	currency, err := s.deps.Currencies.GetByID(ctx, DefaultCurrencyID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrDefaultCurrencyMissing
		}
		return fmt.Errorf("load default currency: %w", err)
	}

	user, err := s.deps.Users.Insert(ctx, models.NewUser{
		Login:    s.admin.Login,
		Name:     s.admin.Name,
		Surname:  s.admin.Surname,
		Email:    s.admin.Email,
		Role:     models.RoleAdmin,
		Password: s.admin.Password,
	})
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	s.countInsert("user")

	accountBill, err := s.deps.Bills.GenerateAccountBill(ctx)
	if err != nil {
		return fmt.Errorf("generate account bill: %w", err)
	}
	if _, err := s.deps.Bills.Insert(ctx, models.Bill{
		OwnerID:        user.ID,
		AccountBill:    accountBill,
		CurrencyID:     currency.ID,
		AvailableFunds: decimal.Zero,
	}); err != nil {
		return fmt.Errorf("insert bill: %w", err)
	}
	s.countInsert("bill")

	if _, err := s.deps.Additionals.Insert(ctx, models.Additional{OwnerID: user.ID}); err != nil {
		return fmt.Errorf("insert additional: %w", err)
	}
	s.countInsert("additional")
	return nil
}

func (s *Sequencer) countInsert(entity string) {
	if s.deps.Metrics != nil {
		s.deps.Metrics.BootstrapInserts.WithLabelValues(entity).Inc()
	}
}
