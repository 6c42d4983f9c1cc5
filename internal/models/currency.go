package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Currency is a supported currency. Rates are quoted against the main currency.
type Currency struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	Main         bool            `json:"main"`
	ExchangeRate decimal.Decimal `json:"exchange_rate"`
	SyncedAt     *time.Time      `json:"exchange_rate_synced_at,omitempty"`
}
