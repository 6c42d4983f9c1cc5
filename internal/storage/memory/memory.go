// Package memory is an in-process implementation of the storage interfaces.
// Transactions are serialized and rolled back by restoring a snapshot.
package memory

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

var (
	_ storage.Transactor      = (*Store)(nil)
	_ storage.UserStore       = (*Store)(nil)
	_ storage.BillStore       = (*Store)(nil)
	_ storage.CurrencyStore   = (*Store)(nil)
	_ storage.AdditionalStore = (*Store)(nil)
)

// Operation names passed to a FailFunc.
const (
	OpCreateUser       = "CreateUser"
	OpCreateBill       = "CreateBill"
	OpCreateCurrency   = "CreateCurrency"
	OpCreateAdditional = "CreateAdditional"
	OpUpdateRate       = "UpdateExchangeRate"
)

// FailFunc lets tests inject an error into a write operation.
type FailFunc func(op string) error

type txKey struct{}

type state struct {
	users       map[int64]models.User
	bills       map[int64]models.Bill
	currencies  map[int64]models.Currency
	additionals map[int64]models.Additional
	nextUser    int64
	nextBill    int64
	nextAdd     int64
}

func (st state) clone() state {
	cp := st
	cp.users = maps.Clone(st.users)
	cp.bills = maps.Clone(st.bills)
	cp.currencies = maps.Clone(st.currencies)
	cp.additionals = maps.Clone(st.additionals)
	return cp
}

type Store struct {
	txMu sync.Mutex
	mu   sync.Mutex
	st   state
	fail FailFunc

	// Inserts counts successful inserts per operation, rolled-back ones included.
	inserts map[string]int
}

func New() *Store {
	return &Store{
		st: state{
			users:       map[int64]models.User{},
			bills:       map[int64]models.Bill{},
			currencies:  map[int64]models.Currency{},
			additionals: map[int64]models.Additional{},
		},
		inserts: map[string]int{},
	}
}

// SetFailFunc installs an error injector; nil removes it.
func (s *Store) SetFailFunc(fn FailFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = fn
}

// Inserts returns how many times op succeeded.
func (s *Store) Inserts(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inserts[op]
}

func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	snapshot := s.st.clone()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		s.mu.Lock()
		s.st = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

// lockWrite makes a write outside a transaction wait for any open one, so a
// rollback cannot discard it. Writes inside the transaction pass through.
func (s *Store) lockWrite(ctx context.Context) func() {
	if ctx.Value(txKey{}) != nil {
		return func() {}
	}
	s.txMu.Lock()
	return s.txMu.Unlock
}

// must be called with mu held
func (s *Store) check(op string) error {
	if s.fail != nil {
		if err := s.fail(op); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	defer s.lockWrite(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpCreateUser); err != nil {
		return models.User{}, err
	}
	for _, u := range s.st.users {
		if u.Login == user.Login || strings.EqualFold(u.Email, user.Email) {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.st.nextUser++
	user.ID = s.st.nextUser
	user.CreatedAt = time.Now()
	s.st.users[user.ID] = user
	s.inserts[OpCreateUser]++
	return user, nil
}

func (s *Store) FindByLogin(_ context.Context, login string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.st.users {
		if u.Login == login {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) TouchLogin(ctx context.Context, id int64, succeeded bool, at time.Time) error {
	defer s.lockWrite(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.st.users[id]
	if !ok {
		return storage.ErrNotFound
	}
	if succeeded {
		u.LastSuccessfulLoginAt = &at
	} else {
		u.LastFailedLoginAt = &at
	}
	s.st.users[id] = u
	return nil
}

// Users returns all users ordered by id.
func (s *Store) Users() []models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.users)
}

func (s *Store) CreateBill(ctx context.Context, bill models.Bill) (models.Bill, error) {
	defer s.lockWrite(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpCreateBill); err != nil {
		return models.Bill{}, err
	}
	if _, ok := s.st.users[bill.OwnerID]; !ok {
		return models.Bill{}, storage.ErrNotFound
	}
	if _, ok := s.st.currencies[bill.CurrencyID]; !ok {
		return models.Bill{}, storage.ErrNotFound
	}
	for _, b := range s.st.bills {
		if b.AccountBill == bill.AccountBill {
			return models.Bill{}, storage.ErrAlreadyExists
		}
	}
	s.st.nextBill++
	bill.ID = s.st.nextBill
	s.st.bills[bill.ID] = bill
	s.inserts[OpCreateBill]++
	return bill, nil
}

func (s *Store) AccountBillExists(_ context.Context, accountBill string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.st.bills {
		if b.AccountBill == accountBill {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ListBillsByOwner(_ context.Context, ownerID int64) ([]models.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Bill
	for _, b := range sortedValues(s.st.bills) {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

// Bills returns all bills ordered by id.
func (s *Store) Bills() []models.Bill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.bills)
}

func (s *Store) CreateCurrency(ctx context.Context, currency models.Currency) (models.Currency, error) {
	defer s.lockWrite(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpCreateCurrency); err != nil {
		return models.Currency{}, err
	}
	for _, c := range s.st.currencies {
		if c.ID == currency.ID || c.Name == currency.Name || (c.Main && currency.Main) {
			return models.Currency{}, storage.ErrAlreadyExists
		}
	}
	if currency.ExchangeRate.IsZero() {
		currency.ExchangeRate = decimal.NewFromInt(1)
	}
	s.st.currencies[currency.ID] = currency
	s.inserts[OpCreateCurrency]++
	return currency, nil
}

func (s *Store) ListCurrencies(context.Context) ([]models.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.currencies), nil
}

func (s *Store) FindCurrencyByID(_ context.Context, id int64) (models.Currency, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.st.currencies[id]
	if !ok {
		return models.Currency{}, storage.ErrNotFound
	}
	return c, nil
}

func (s *Store) UpdateExchangeRate(ctx context.Context, id int64, rate decimal.Decimal, syncedAt time.Time) error {
	defer s.lockWrite(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpUpdateRate); err != nil {
		return err
	}
	c, ok := s.st.currencies[id]
	if !ok {
		return storage.ErrNotFound
	}
	c.ExchangeRate = rate
	c.SyncedAt = &syncedAt
	s.st.currencies[id] = c
	return nil
}

func (s *Store) CreateAdditional(ctx context.Context, additional models.Additional) (models.Additional, error) {
	defer s.lockWrite(ctx)()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(OpCreateAdditional); err != nil {
		return models.Additional{}, err
	}
	if _, ok := s.st.users[additional.OwnerID]; !ok {
		return models.Additional{}, storage.ErrNotFound
	}
	for _, a := range s.st.additionals {
		if a.OwnerID == additional.OwnerID {
			return models.Additional{}, storage.ErrAlreadyExists
		}
	}
	if additional.AccountBalanceHistory == "" {
		additional.AccountBalanceHistory = models.DefaultBalanceHistory
	}
	s.st.nextAdd++
	additional.ID = s.st.nextAdd
	s.st.additionals[additional.ID] = additional
	s.inserts[OpCreateAdditional]++
	return additional, nil
}

func (s *Store) FindAdditionalByOwner(_ context.Context, ownerID int64) (models.Additional, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.st.additionals {
		if a.OwnerID == ownerID {
			return a, nil
		}
	}
	return models.Additional{}, storage.ErrNotFound
}

// Additionals returns all additional records ordered by id.
func (s *Store) Additionals() []models.Additional {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.st.additionals)
}

func sortedValues[T any](m map[int64]T) []T {
	keys := slices.Sorted(maps.Keys(m))
	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}
