package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/bank-be/internal/http/respond"
	"github.com/hongminglow/bank-be/internal/middleware"
	"github.com/hongminglow/bank-be/internal/models"
	"github.com/hongminglow/bank-be/internal/storage"
)

type UserFinder interface {
	GetByID(ctx context.Context, id int64) (models.User, error)
}

// UserHandler serves the profile of the authenticated user.
type UserHandler struct {
	users UserFinder
}

func NewUserHandler(users UserFinder) *UserHandler {
	return &UserHandler{users: users}
}

// Register attaches the profile route behind the given auth middleware.
func (h *UserHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/users/me", requireAuth(http.HandlerFunc(h.handleMe)))
}

func (h *UserHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// token outlived its user
			respond.Error(w, http.StatusUnauthorized, "invalid token")
			return
		}
		log.Error().Err(err).Int64("user_id", userID).Msg("Unable to load user")
		respond.Error(w, http.StatusInternalServerError, "failed to load user")
		return
	}
	respond.JSON(w, http.StatusOK, "ok", user)
}
