package repository

import (
	"context"

	"github.com/splitchain/splitbot/internal/model"
)

// Repository stores confirmed receipts and the payment requests produced
// from them. The conversation engine owns session state itself; this is the
// durable history behind /history.
type Repository interface {
	SaveReceipt(ctx context.Context, userID int64, receipt *model.ReceiptRecord) error
	SavePaymentRequest(ctx context.Context, request *model.PaymentRequest) error
	RecentPaymentRequests(ctx context.Context, userID int64, limit int) ([]model.PaymentRequest, error)
}
