package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is a single purchased item on a receipt.
type LineItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// ReceiptRecord is the validated result of one extraction attempt.
// When IsReceipt is true, Merchant, Total, Currency and Items are set and
// Message is empty. When IsReceipt is false only Message carries data.
// Records are immutable after validation.
type ReceiptRecord struct {
	ID        string           `json:"id"`
	IsReceipt bool             `json:"is_receipt"`
	Merchant  string           `json:"merchant,omitempty"`
	Date      string           `json:"date,omitempty"` // YYYY-MM-DD, best effort
	Total     decimal.Decimal  `json:"total"`
	Tax       *decimal.Decimal `json:"tax,omitempty"`
	Currency  string           `json:"currency,omitempty"`
	Items     []LineItem       `json:"items"`
	Message   string           `json:"message,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
}

// GenerateID assigns a new UUID if the record does not have one yet.
func (r *ReceiptRecord) GenerateID() {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
}
