package feedrelay

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/cpay-backend/internal/adapter/repository/memory"
	"github.com/simaogato/cpay-backend/internal/domain"
	"github.com/simaogato/cpay-backend/internal/usecase/ledger"
)

const (
	alice = "0x742d35cc6634c0532925a3b844bc9e7595f8ff71"
	bob   = "0x8ba1f109551bd432803012645ac136ddd64dba72"
)

// MockPublisher is a mock implementation of EventPublisher
type MockPublisher struct {
	mock.Mock
	mu    sync.Mutex
	notes []string
}

func (m *MockPublisher) Publish(ctx context.Context, item *domain.FeedItem) error {
	args := m.Called(ctx, item)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.notes = append(m.notes, item.Note)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *MockPublisher) Notes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.notes...)
}

func newLedger(t *testing.T) *ledger.LedgerService {
	t.Helper()
	store := memory.NewStore()
	svc := ledger.NewLedgerService(
		store.Balances, store.Transactions, store.Invoices,
		store.PaymentRequests, store.Feed, store.Users,
		ledger.WithLatency(ledger.NoLatency),
	)
	require.NoError(t, store.Balances.Put(context.Background(), domain.Balances{
		Address: alice, CELO: decimal.RequireFromString("100"), CUSD: decimal.RequireFromString("100"),
	}))
	return svc
}

func send(t *testing.T, svc *ledger.LedgerService, note string) {
	t.Helper()
	_, err := svc.Transfer(context.Background(), ledger.TransferInput{
		From: alice, To: bob, Amount: decimal.RequireFromString("1"), Token: domain.TokenCUSD, Note: note,
	})
	require.NoError(t, err)
}

func TestRelayService_SyncPublishesUnseenOldestFirst(t *testing.T) {
	ctx := context.Background()
	svc := newLedger(t)
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.AnythingOfType("*domain.FeedItem")).Return(nil)
	relay := NewRelayService(svc, publisher, nil, nil)

	send(t, svc, "history")
	require.NoError(t, relay.Prime(ctx))

	send(t, svc, "one")
	send(t, svc, "two")

	n, err := relay.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, []string{"one", "two"}, publisher.Notes())

	// nothing new
	n, err = relay.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	publisher.AssertNumberOfCalls(t, "Publish", 2)
}

func TestRelayService_PublishFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	svc := newLedger(t)
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(item *domain.FeedItem) bool {
		return item.Note == "lost"
	})).Return(errors.New("broker down"))
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	relay := NewRelayService(svc, publisher, nil, nil)

	send(t, svc, "lost")
	send(t, svc, "kept")

	n, err := relay.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"kept"}, publisher.Notes())

	n, err = relay.Sync(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRelayService_RunFollowsLedgerChanges(t *testing.T) {
	svc := newLedger(t)
	publisher := new(MockPublisher)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	relay := NewRelayService(svc, publisher, nil, nil)

	send(t, svc, "before start")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()

	require.Eventually(t, func() bool { return svc.SubscriberCount() == 1 }, time.Second, 5*time.Millisecond)

	send(t, svc, "a")
	send(t, svc, "b")

	require.Eventually(t, func() bool { return len(publisher.Notes()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"a", "b"}, publisher.Notes())

	cancel()
	require.NoError(t, <-done)
	assert.Zero(t, svc.SubscriberCount())
}

type failingSource struct{}

func (failingSource) Subscribe(fn func()) *ledger.Subscription { return &ledger.Subscription{} }

func (failingSource) ListFeed(context.Context, domain.FeedFilter) ([]*domain.FeedItem, error) {
	return nil, errors.New("ledger unavailable")
}

func TestRelayService_RunFailsWhenPrimeFails(t *testing.T) {
	relay := NewRelayService(failingSource{}, new(MockPublisher), nil, nil)

	err := relay.Run(context.Background())

	assert.EqualError(t, err, "ledger unavailable")
}
