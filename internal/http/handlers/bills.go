package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/bank-be/internal/http/respond"
	"github.com/hongminglow/bank-be/internal/middleware"
	"github.com/hongminglow/bank-be/internal/models"
)

type BillLister interface {
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Bill, error)
}

// BillHandler serves the bills of the authenticated user.
type BillHandler struct {
	bills BillLister
}

func NewBillHandler(bills BillLister) *BillHandler {
	return &BillHandler{bills: bills}
}

// Register attaches the bill routes behind the given auth middleware.
func (h *BillHandler) Register(mux *http.ServeMux, requireAuth func(http.Handler) http.Handler) {
	mux.Handle("GET /api/bills", requireAuth(http.HandlerFunc(h.handleList)))
}

func (h *BillHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}
	bills, err := h.bills.ListByOwner(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Unable to list bills")
		respond.Error(w, http.StatusInternalServerError, "failed to list bills")
		return
	}
	if bills == nil {
		bills = []models.Bill{}
	}
	respond.JSON(w, http.StatusOK, "ok", bills)
}
