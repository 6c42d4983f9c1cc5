package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/bank-be/internal/http/respond"
	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/models/dto"
	"github.com/hongminglow/bank-be/internal/service"
)

// Authenticator verifies credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, login, password string) (models.User, error)
}

// TokenIssuer issues access tokens.
type TokenIssuer interface {
	Generate(user models.User) (string, error)
}

// AuthHandler owns the login endpoint.
type AuthHandler struct {
	users    Authenticator
	tokens   TokenIssuer
	validate *validator.Validate
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(users Authenticator, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, validate: validator.New()}
}

// Register attaches auth routes to the mux. throttle, when non-nil, wraps the
// login route.
func (h *AuthHandler) Register(mux *http.ServeMux, throttle func(http.Handler) http.Handler) {
	var login http.Handler = http.HandlerFunc(h.handleLogin)
	if throttle != nil {
		login = throttle(login)
	}
	mux.Handle("POST /api/auth/login", login)
}

func (h *AuthHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	req.Login = strings.TrimSpace(req.Login)
	if err := h.validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid login payload")
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respond.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		log.Error().Err(err).Str("login", req.Login).Msg("Login failed")
		respond.Error(w, http.StatusInternalServerError, "failed to authenticate")
		return
	}

	token, err := h.tokens.Generate(user)
	if err != nil {
		log.Error().Err(err).Str("login", user.Login).Msg("Unable to generate token")
		respond.Error(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	respond.JSON(w, http.StatusOK, "login successful", dto.LoginResponse{Token: token, User: user})
}
