package models

import "github.com/shopspring/decimal"

// Bill is a user's monetary account in a single currency.
type Bill struct {
	ID             int64           `json:"id"`
	OwnerID        int64           `json:"owner_id"`
	AccountBill    string          `json:"account_bill"`
	CurrencyID     int64           `json:"currency_id"`
	AvailableFunds decimal.Decimal `json:"available_funds"`
}
