package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/simaogato/cpay-backend/internal/domain"
)

// messageWriter is the part of *kafka.Writer the publisher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// FeedEvent is the wire form of a feed item
type FeedEvent struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Actor     string `json:"actor"`
	Recipient string `json:"recipient,omitempty"`
	Amount    string `json:"amount"`
	Token     string `json:"token"`
	Note      string `json:"note,omitempty"`
	InvoiceID string `json:"invoiceId,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// NewFeedEvent converts a feed item; Timestamp is in unix milliseconds
func NewFeedEvent(item *domain.FeedItem) FeedEvent {
	return FeedEvent{
		ID:        item.ID,
		Type:      string(item.Type),
		Actor:     item.Actor,
		Recipient: item.Recipient,
		Amount:    domain.FormatAmount(item.Amount),
		Token:     string(item.Token),
		Note:      item.Note,
		InvoiceID: item.InvoiceID,
		Timestamp: item.Timestamp.UnixMilli(),
	}
}

// Publisher writes feed items to a Kafka topic
type Publisher struct {
	writer messageWriter
}

// NewPublisher creates a publisher writing to topic on brokers
func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

// Publish sends one feed item keyed by its ID
func (p *Publisher) Publish(ctx context.Context, item *domain.FeedItem) error {
	if item == nil {
		return fmt.Errorf("publish: nil feed item")
	}
	data, err := json.Marshal(NewFeedEvent(item))
	if err != nil {
		return err
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(item.ID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(item.Type)},
		},
		Time: item.Timestamp,
	})
}

// Close flushes pending messages and closes the writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

var _ domain.EventPublisher = (*Publisher)(nil)
