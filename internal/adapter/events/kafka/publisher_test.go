package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/cpay-backend/internal/domain"
)

type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockWriter) Close() error {
	return m.Called().Error(0)
}

func sampleItem() *domain.FeedItem {
	return &domain.FeedItem{
		ID:        "feed-1",
		Type:      domain.FeedItemSend,
		Actor:     "0x742d35cc6634c0532925a3b844bc9e7595f8ff71",
		Recipient: "0x8ba1f109551bd432803012645ac136ddd64dba72",
		Amount:    decimal.RequireFromString("25"),
		Token:     domain.TokenCUSD,
		Note:      "Lunch at the cafe",
		Timestamp: time.UnixMilli(1735732800000),
	}
}

func TestPublisher_Publish(t *testing.T) {
	ctx := context.Background()
	writer := new(MockWriter)
	p := &Publisher{writer: writer}

	writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		if len(msgs) != 1 {
			return false
		}
		msg := msgs[0]
		var event FeedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			return false
		}
		return string(msg.Key) == "feed-1" &&
			event.Amount == "25.00" &&
			event.Type == "send" &&
			event.Timestamp == 1735732800000 &&
			event.InvoiceID == "" &&
			len(msg.Headers) == 1 && string(msg.Headers[0].Value) == "send"
	})).Return(nil)

	err := p.Publish(ctx, sampleItem())

	assert.NoError(t, err)
	writer.AssertExpectations(t)
}

func TestPublisher_PublishError(t *testing.T) {
	ctx := context.Background()
	writer := new(MockWriter)
	p := &Publisher{writer: writer}

	writer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("broker unavailable"))

	err := p.Publish(ctx, sampleItem())

	assert.EqualError(t, err, "broker unavailable")
	assert.Error(t, p.Publish(ctx, nil))
}

func TestPublisher_Close(t *testing.T) {
	writer := new(MockWriter)
	writer.On("Close").Return(nil)

	require.NoError(t, (&Publisher{writer: writer}).Close())
	writer.AssertCalled(t, "Close")
}

func TestNewPublisher_ConfiguresWriter(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "cpay.feed")

	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "cpay.feed", w.Topic)
	assert.Equal(t, "localhost:9092", w.Addr.String())
	assert.IsType(t, &kafka.LeastBytes{}, w.Balancer)
}

func TestNewFeedEvent_OmitsEmptyFields(t *testing.T) {
	item := sampleItem()
	item.Recipient = ""
	item.Note = ""

	data, err := json.Marshal(NewFeedEvent(item))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "recipient")
	assert.NotContains(t, string(data), "note")
	assert.Contains(t, string(data), `"token":"cUSD"`)
}
