package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/supabase-community/supabase-go"

	"github.com/splitchain/splitbot/internal/model"
)

// SupabaseRepository persists history to Supabase for multi-instance
// deployments.
type SupabaseRepository struct {
	client *supabase.Client
}

func NewSupabaseRepository(url, key string) (*SupabaseRepository, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, err
	}

	return &SupabaseRepository{
		client: client,
	}, nil
}

// receiptRow flattens a ReceiptRecord for the receipts table; items are kept
// as a JSON column.
type receiptRow struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"user_id"`
	Merchant  string    `json:"merchant"`
	Date      string    `json:"date,omitempty"`
	Total     string    `json:"total"`
	Tax       string    `json:"tax,omitempty"`
	Currency  string    `json:"currency"`
	Items     string    `json:"items"`
	CreatedAt time.Time `json:"created_at"`
}

type paymentRow struct {
	ID           string    `json:"id"`
	UserID       int64     `json:"user_id"`
	ReceiptID    string    `json:"receipt_id"`
	Recipient    string    `json:"recipient"`
	ChainID      int64     `json:"chain_id"`
	AssetSymbol  string    `json:"asset_symbol"`
	AssetAmount  string    `json:"asset_amount"`
	FiatAmount   string    `json:"fiat_amount"`
	Participants int       `json:"participants"`
	URI          string    `json:"uri"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r *SupabaseRepository) SaveReceipt(ctx context.Context, userID int64, receipt *model.ReceiptRecord) error {
	items, err := json.Marshal(receipt.Items)
	if err != nil {
		return fmt.Errorf("failed to encode receipt items: %w", err)
	}
	row := receiptRow{
		ID:        receipt.ID,
		UserID:    userID,
		Merchant:  receipt.Merchant,
		Date:      receipt.Date,
		Total:     receipt.Total.String(),
		Currency:  receipt.Currency,
		Items:     string(items),
		CreatedAt: receipt.CreatedAt,
	}
	if receipt.Tax != nil {
		row.Tax = receipt.Tax.String()
	}

	_, _, err = r.client.From("receipts").Insert(row, true, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) SavePaymentRequest(ctx context.Context, request *model.PaymentRequest) error {
	row := paymentRow{
		ID:           request.ID,
		UserID:       request.UserID,
		ReceiptID:    request.ReceiptID,
		Recipient:    request.Recipient,
		ChainID:      request.ChainID,
		AssetSymbol:  request.AssetSymbol,
		AssetAmount:  request.AssetAmount.String(),
		FiatAmount:   request.FiatAmount.String(),
		Participants: request.Participants,
		URI:          request.URI,
		CreatedAt:    request.CreatedAt,
	}

	_, _, err := r.client.From("payment_requests").Insert(row, true, "", "", "").Execute()
	if err != nil {
		return fmt.Errorf("failed to save payment request: %w", err)
	}
	return nil
}

func (r *SupabaseRepository) RecentPaymentRequests(ctx context.Context, userID int64, limit int) ([]model.PaymentRequest, error) {
	query := r.client.From("payment_requests").
		Select("*", "", false).
		Eq("user_id", strconv.FormatInt(userID, 10)).
		Order("created_at.desc", nil)
	if limit > 0 {
		query = query.Limit(limit, "")
	}

	data, _, err := query.Execute()
	if err != nil {
		return nil, fmt.Errorf("failed to get payment requests: %w", err)
	}

	var rows []paymentRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse payment requests: %w", err)
	}

	requests := make([]model.PaymentRequest, 0, len(rows))
	for _, row := range rows {
		assetAmount, err := decimal.NewFromString(row.AssetAmount)
		if err != nil {
			return nil, fmt.Errorf("corrupt asset amount %q: %w", row.AssetAmount, err)
		}
		fiatAmount, err := decimal.NewFromString(row.FiatAmount)
		if err != nil {
			return nil, fmt.Errorf("corrupt fiat amount %q: %w", row.FiatAmount, err)
		}
		requests = append(requests, model.PaymentRequest{
			ID:           row.ID,
			UserID:       row.UserID,
			ReceiptID:    row.ReceiptID,
			Recipient:    row.Recipient,
			ChainID:      row.ChainID,
			AssetSymbol:  row.AssetSymbol,
			AssetAmount:  assetAmount,
			FiatAmount:   fiatAmount,
			Participants: row.Participants,
			URI:          row.URI,
			CreatedAt:    row.CreatedAt,
		})
	}
	return requests, nil
}
