package memory

import (
	"context"
	"sync"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// feedRepository implements domain.FeedRepository
type feedRepository struct {
	mu    sync.RWMutex
	items []domain.FeedItem // newest first
}

// NewFeedRepository creates a new feed repository
func NewFeedRepository() domain.FeedRepository {
	return &feedRepository{}
}

func (r *feedRepository) Append(ctx context.Context, item *domain.FeedItem) error {
	if item == nil || item.ID == "" {
		return domain.InvalidInputf("feed item must have an ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = prepend(r.items, *item)
	return nil
}

func (r *feedRepository) List(ctx context.Context, filter domain.FeedFilter) ([]*domain.FeedItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.FeedItem, 0, len(r.items))
	for i := range r.items {
		if filter.Matches(r.items[i].Type) {
			item := r.items[i]
			result = append(result, &item)
		}
	}
	return result, nil
}
