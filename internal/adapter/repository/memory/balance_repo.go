package memory

import (
	"context"
	"sync"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// balanceRepository implements domain.BalanceRepository
type balanceRepository struct {
	mu       sync.RWMutex
	balances map[string]domain.Balances
}

// NewBalanceRepository creates a new balance repository
func NewBalanceRepository() domain.BalanceRepository {
	return &balanceRepository{balances: make(map[string]domain.Balances)}
}

// Get retrieves the balances of an address, zero if unknown
func (r *balanceRepository) Get(ctx context.Context, address string) (domain.Balances, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.balances[address]
	if !ok {
		return domain.ZeroBalances(address), nil
	}
	return b, nil
}

// Put stores the balances of an address
func (r *balanceRepository) Put(ctx context.Context, balances domain.Balances) error {
	if balances.Address == "" {
		return domain.InvalidInputf("balance address cannot be empty")
	}
	if err := balances.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.balances[balances.Address] = balances
	return nil
}
