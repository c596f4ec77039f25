package domain

import (
	"context"
)

// BalanceRepository defines the interface for balance persistence operations
type BalanceRepository interface {
	// Get retrieves the balances of an address
	// Unknown addresses yield zero balances, not an error
	Get(ctx context.Context, address string) (Balances, error)

	// Put stores the balances of an address, replacing any previous value
	Put(ctx context.Context, balances Balances) error
}

// TransactionRepository defines the interface for the transaction log
type TransactionRepository interface {
	// Append adds a transaction at the head of the log
	Append(ctx context.Context, tx *Transaction) error

	// ListByAddress retrieves transactions sent or received by the address, newest first
	ListByAddress(ctx context.Context, address string) ([]*Transaction, error)

	// Count returns the total number of transactions
	Count(ctx context.Context) (int, error)
}

// InvoiceRepository defines the interface for invoice persistence operations
type InvoiceRepository interface {
	// Create adds a new invoice
	Create(ctx context.Context, invoice *Invoice) error

	// GetByID retrieves an invoice by its ID
	// Returns an error of kind NOT_FOUND if it does not exist
	GetByID(ctx context.Context, id string) (*Invoice, error)

	// Update replaces a stored invoice
	Update(ctx context.Context, invoice *Invoice) error

	// ListByAddress retrieves invoices where the address is merchant or payer, newest first
	ListByAddress(ctx context.Context, address string) ([]*Invoice, error)
}

// PaymentRequestRepository defines the interface for payment request persistence operations
type PaymentRequestRepository interface {
	// Create adds a new payment request
	Create(ctx context.Context, request *PaymentRequest) error

	// ListByAddress retrieves requests where the address is requester or payer, newest first
	ListByAddress(ctx context.Context, address string) ([]*PaymentRequest, error)
}

// FeedRepository defines the interface for the activity feed
type FeedRepository interface {
	// Append adds an item at the head of the feed
	Append(ctx context.Context, item *FeedItem) error

	// List retrieves feed items passing the filter, newest first
	List(ctx context.Context, filter FeedFilter) ([]*FeedItem, error)
}

// UserRepository defines the interface for the user directory
type UserRepository interface {
	// GetByAddress retrieves a profile
	// Returns an error of kind NOT_FOUND if it does not exist
	GetByAddress(ctx context.Context, address string) (*UserProfile, error)

	// Create adds or replaces a profile
	Create(ctx context.Context, profile *UserProfile) error
}

// EventPublisher sends feed items to an external consumer
type EventPublisher interface {
	Publish(ctx context.Context, item *FeedItem) error
}
