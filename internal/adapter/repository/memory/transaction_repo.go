package memory

import (
	"context"
	"sync"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// transactionRepository implements domain.TransactionRepository
type transactionRepository struct {
	mu  sync.RWMutex
	log []domain.Transaction // newest first
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository() domain.TransactionRepository {
	return &transactionRepository{}
}

// Append adds a transaction at the head of the log
func (r *transactionRepository) Append(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return domain.InvalidInputf("transaction must have an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.log = prepend(r.log, *tx)
	return nil
}

// ListByAddress retrieves transactions involving the address, newest first
func (r *transactionRepository) ListByAddress(ctx context.Context, address string) ([]*domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Transaction, 0)
	for i := range r.log {
		if r.log[i].Involves(address) {
			tx := r.log[i]
			result = append(result, &tx)
		}
	}
	return result, nil
}

// Count returns the total number of transactions
func (r *transactionRepository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.log), nil
}
