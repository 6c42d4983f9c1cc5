package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/bank-be/internal/auth"
	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

var (
	ErrEmptyLogin         = errors.New("login is required")
	ErrEmptyPassword      = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid login or password")
)

// UserService manages user accounts.
type UserService struct {
	store  storage.UserStore
	hasher auth.PasswordHasher
	now    func() time.Time
}

func NewUserService(store storage.UserStore, hasher auth.PasswordHasher) *UserService {
	return &UserService{store: store, hasher: hasher, now: time.Now}
}

// GetByLogin returns storage.ErrNotFound when no user has the login.
func (s *UserService) GetByLogin(ctx context.Context, login string) (models.User, error) {
	return s.store.FindByLogin(ctx, strings.TrimSpace(login))
}

func (s *UserService) GetByID(ctx context.Context, id int64) (models.User, error) {
	return s.store.FindByID(ctx, id)
}

// Insert stores a new user. The plaintext password is hashed first and
// only the hash is persisted.
func (s *UserService) Insert(ctx context.Context, nu models.NewUser) (models.User, error) {
	login := strings.TrimSpace(nu.Login)
	if login == "" {
		return models.User{}, ErrEmptyLogin
	}
	if nu.Password == "" {
		return models.User{}, ErrEmptyPassword
	}
	hash, err := s.hasher.Hash(nu.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	role := nu.Role
	if role == "" {
		role = models.RoleCustomer
	}
	return s.store.CreateUser(ctx, models.User{
		Login:        login,
		Name:         strings.TrimSpace(nu.Name),
		Surname:      strings.TrimSpace(nu.Surname),
		Email:        strings.TrimSpace(nu.Email),
		Role:         role,
		PasswordHash: hash,
	})
}

// Authenticate checks credentials and records the outcome on the user.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (models.User, error) {
	if password == "" {
		return models.User{}, ErrEmptyPassword
	}
	user, err := s.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	ok, err := s.hasher.Check(password, user.PasswordHash)
	if err != nil {
		return models.User{}, fmt.Errorf("check password: %w", err)
	}
	at := s.now()
	if touchErr := s.store.TouchLogin(ctx, user.ID, ok, at); touchErr != nil {
		log.Warn().Err(touchErr).Str("login", user.Login).Msg("Unable to record login attempt")
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}
	user.LastSuccessfulLoginAt = &at
	return user, nil
}
