package memory

import (
	"context"
	"sync"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// userRepository implements domain.UserRepository
type userRepository struct {
	mu    sync.RWMutex
	users map[string]domain.UserProfile
}

// NewUserRepository creates a new user repository
func NewUserRepository() domain.UserRepository {
	return &userRepository{users: make(map[string]domain.UserProfile)}
}

func (r *userRepository) GetByAddress(ctx context.Context, address string) (*domain.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	profile, ok := r.users[address]
	if !ok {
		return nil, domain.NotFoundf("user %s not found", address)
	}
	return &profile, nil
}

func (r *userRepository) Create(ctx context.Context, profile *domain.UserProfile) error {
	if profile == nil || profile.Address == "" {
		return domain.InvalidInputf("user profile must have an address")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.users[profile.Address] = *profile
	return nil
}
