package models

import "github.com/shopspring/decimal"

// DefaultBalanceHistory is the history value of an account with no movements.
const DefaultBalanceHistory = "0,0"

// Additional holds per-user auxiliary statistics.
type Additional struct {
	ID                    int64           `json:"id"`
	OwnerID               int64           `json:"owner_id"`
	IncomingTransfersSum  decimal.Decimal `json:"incoming_transfers_sum"`
	OutgoingTransfersSum  decimal.Decimal `json:"outgoing_transfers_sum"`
	AccountBalanceHistory string          `json:"account_balance_history"`
}
