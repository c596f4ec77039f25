package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FeedItemType is the display taxonomy of the activity feed.
// It is distinct from TransactionKind.
type FeedItemType string

const (
	FeedItemSend            FeedItemType = "send"
	FeedItemReceive         FeedItemType = "receive"
	FeedItemInvoiceCreated  FeedItemType = "invoice_created"
	FeedItemInvoicePaid     FeedItemType = "invoice_paid"
	FeedItemRequestSent     FeedItemType = "request_sent"
	FeedItemRequestReceived FeedItemType = "request_received"
)

// FeedItem is a denormalized, display-oriented record derived from a ledger
// mutation. Recipient and InvoiceID are empty when not applicable.
type FeedItem struct {
	ID        string
	Type      FeedItemType
	Actor     string
	Recipient string
	Amount    decimal.Decimal
	Token     Token
	Note      string
	InvoiceID string
	Timestamp time.Time
}

// FeedFilter selects a subset of the feed
type FeedFilter string

const (
	FeedFilterAll      FeedFilter = "all"
	FeedFilterSent     FeedFilter = "sent"
	FeedFilterReceived FeedFilter = "received"
	FeedFilterInvoices FeedFilter = "invoices"
)

// ParseFeedFilter maps a raw filter to a FeedFilter.
// Empty or unknown values behave as FeedFilterAll.
func ParseFeedFilter(raw string) FeedFilter {
	switch FeedFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case FeedFilterSent:
		return FeedFilterSent
	case FeedFilterReceived:
		return FeedFilterReceived
	case FeedFilterInvoices:
		return FeedFilterInvoices
	default:
		return FeedFilterAll
	}
}

// Matches reports whether an item of the given type passes the filter
func (f FeedFilter) Matches(t FeedItemType) bool {
	switch f {
	case FeedFilterSent:
		return t == FeedItemSend || t == FeedItemRequestSent
	case FeedFilterReceived:
		return t == FeedItemReceive || t == FeedItemRequestReceived
	case FeedFilterInvoices:
		return t == FeedItemInvoiceCreated || t == FeedItemInvoicePaid
	default:
		return true
	}
}
