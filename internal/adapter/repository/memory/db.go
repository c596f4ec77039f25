package memory

import (
	"github.com/simaogato/cpay-backend/internal/domain"
)

// Store bundles the in-memory repositories backing one ledger.
// State lives for the process lifetime and is lost on restart.
type Store struct {
	Balances        domain.BalanceRepository
	Transactions    domain.TransactionRepository
	Invoices        domain.InvoiceRepository
	PaymentRequests domain.PaymentRequestRepository
	Feed            domain.FeedRepository
	Users           domain.UserRepository
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Balances:        NewBalanceRepository(),
		Transactions:    NewTransactionRepository(),
		Invoices:        NewInvoiceRepository(),
		PaymentRequests: NewPaymentRequestRepository(),
		Feed:            NewFeedRepository(),
		Users:           NewUserRepository(),
	}
}

// prepend inserts v at the head of s
func prepend[T any](s []T, v T) []T {
	s = append(s, v)
	copy(s[1:], s[:len(s)-1])
	s[0] = v
	return s
}
