package feedrelay

import (
	"context"
	"sync"

	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/logger"
	"github.com/simaogato/cpay-backend/internal/metrics"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
)

// FeedSource is the ledger as seen by the relay
type FeedSource interface {
	Subscribe(fn func()) *ledger.Subscription
	ListFeed(ctx context.Context, filter domain.FeedFilter) ([]*domain.FeedItem, error)
}

// RelayService forwards new feed items to an EventPublisher.
// Change events carry no payload, so every change re-reads the feed and
// publishes the items it has not seen yet, oldest first. Delivery is at most
// once: an item that fails to publish is logged and not retried.
type RelayService struct {
	source    FeedSource
	publisher domain.EventPublisher
	log       *logger.Logger
	metrics   *metrics.LedgerMetrics

	mu      sync.Mutex
	seen    map[string]struct{}
	changed chan struct{}
}

// NewRelayService creates a new RelayService instance
func NewRelayService(source FeedSource, publisher domain.EventPublisher, log *logger.Logger, m *metrics.LedgerMetrics) *RelayService {
	if log == nil {
		log = logger.Nop()
	}
	return &RelayService{
		source:    source,
		publisher: publisher,
		log:       log,
		metrics:   m,
		seen:      make(map[string]struct{}),
		changed:   make(chan struct{}, 1),
	}
}

// Prime marks the current feed as already relayed
func (r *RelayService) Prime(ctx context.Context) error {
	items, err := r.source.ListFeed(ctx, domain.FeedFilterAll)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, item := range items {
		r.seen[item.ID] = struct{}{}
	}
	return nil
}

// Sync publishes every unseen feed item and returns how many were published
func (r *RelayService) Sync(ctx context.Context) (int, error) {
	items, err := r.source.ListFeed(ctx, domain.FeedFilterAll)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	published := 0
	// the feed is newest first
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		if _, ok := r.seen[item.ID]; ok {
			continue
		}
		r.seen[item.ID] = struct{}{}

		itemCtx := r.log.WithFields(ctx, map[string]any{"feed_item_id": item.ID, "feed_item_type": item.Type})
		if err := r.publisher.Publish(itemCtx, item); err != nil {
			r.log.Error(itemCtx, "failed to relay feed item", err)
			r.metrics.FeedRelayed(false)
			continue
		}
		r.metrics.FeedRelayed(true)
		r.log.Debug(itemCtx, "feed item relayed")
		published++
	}
	return published, nil
}

// Run relays feed items until ctx is cancelled.
// The feed present at start is not relayed.
func (r *RelayService) Run(ctx context.Context) error {
	if err := r.Prime(ctx); err != nil {
		return err
	}

	sub := r.source.Subscribe(r.signal)
	defer sub.Unsubscribe()

	// items appended between Prime and Subscribe
	r.signal()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.changed:
			if _, err := r.Sync(ctx); err != nil && ctx.Err() == nil {
				r.log.Error(ctx, "feed relay sync failed", err)
			}
		}
	}
}

// signal coalesces change events; it never blocks the notifying mutation
func (r *RelayService) signal() {
	select {
	case r.changed <- struct{}{}:
	default:
	}
}
