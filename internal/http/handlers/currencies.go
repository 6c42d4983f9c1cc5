package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/hongminglow/bank-be/internal/http/respond"
	"github.com/hongminglow/bank-be/internal/models"
)

type CurrencyLister interface {
	GetAll(ctx context.Context) ([]models.Currency, error)
}

// CurrencyHandler lists supported currencies with their latest rates.
type CurrencyHandler struct {
	currencies CurrencyLister
}

func NewCurrencyHandler(currencies CurrencyLister) *CurrencyHandler {
	return &CurrencyHandler{currencies: currencies}
}

func (h *CurrencyHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/currencies", h.handleList)
}

func (h *CurrencyHandler) handleList(w http.ResponseWriter, r *http.Request) {
	currencies, err := h.currencies.GetAll(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Unable to list currencies")
		respond.Error(w, http.StatusInternalServerError, "failed to list currencies")
		return
	}
	if currencies == nil {
		currencies = []models.Currency{}
	}
	respond.JSON(w, http.StatusOK, "ok", currencies)
}
