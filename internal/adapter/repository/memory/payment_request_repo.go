package memory

import (
	"context"
	"sync"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// paymentRequestRepository implements domain.PaymentRequestRepository
type paymentRequestRepository struct {
	mu       sync.RWMutex
	requests []domain.PaymentRequest // newest first
}

// NewPaymentRequestRepository creates a new payment request repository
func NewPaymentRequestRepository() domain.PaymentRequestRepository {
	return &paymentRequestRepository{}
}

func (r *paymentRequestRepository) Create(ctx context.Context, request *domain.PaymentRequest) error {
	if request == nil || request.ID == "" {
		return domain.InvalidInputf("payment request must have an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests = prepend(r.requests, *request)
	return nil
}

func (r *paymentRequestRepository) ListByAddress(ctx context.Context, address string) ([]*domain.PaymentRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.PaymentRequest, 0)
	for i := range r.requests {
		if r.requests[i].Involves(address) {
			req := r.requests[i]
			result = append(result, &req)
		}
	}
	return result, nil
}
