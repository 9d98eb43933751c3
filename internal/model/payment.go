package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRequest is the outcome of one split computation. It is built fresh
// per computation and never mutated afterwards.
type PaymentRequest struct {
	ID           string          `json:"id"`
	UserID       int64           `json:"user_id"`
	ReceiptID    string          `json:"receipt_id"`
	Recipient    string          `json:"recipient"` // checksummed address
	ChainID      int64           `json:"chain_id"`
	AssetSymbol  string          `json:"asset_symbol"`
	AssetAmount  decimal.Decimal `json:"asset_amount"` // per person, in the asset
	FiatAmount   decimal.Decimal `json:"fiat_amount"`  // per person, in the receipt currency
	Participants int             `json:"participants"` // payers including the sender
	URI          string          `json:"uri"`
	CreatedAt    time.Time       `json:"created_at"`
}

// GenerateID assigns a new UUID if the request does not have one yet.
func (p *PaymentRequest) GenerateID() {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
}
