package repository

import (
	"context"
	"sync"

	"github.com/splitchain/splitbot/internal/model"
)

// MemoryRepository keeps history in process memory. Sufficient for
// single-instance deployments and used by tests.
type MemoryRepository struct {
	mu       sync.Mutex
	receipts []storedReceipt
	payments []model.PaymentRequest
}

type storedReceipt struct {
	userID  int64
	receipt model.ReceiptRecord
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (r *MemoryRepository) SaveReceipt(ctx context.Context, userID int64, receipt *model.ReceiptRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.receipts = append(r.receipts, storedReceipt{userID: userID, receipt: *receipt})
	return nil
}

func (r *MemoryRepository) SavePaymentRequest(ctx context.Context, request *model.PaymentRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payments = append(r.payments, *request)
	return nil
}

func (r *MemoryRepository) RecentPaymentRequests(ctx context.Context, userID int64, limit int) ([]model.PaymentRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []model.PaymentRequest
	for i := len(r.payments) - 1; i >= 0; i-- {
		if r.payments[i].UserID != userID {
			continue
		}
		out = append(out, r.payments[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
