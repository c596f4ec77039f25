package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind represents what produced a transaction log entry
type TransactionKind string

const (
	TransactionKindSend           TransactionKind = "send"
	TransactionKindReceive        TransactionKind = "receive"
	TransactionKindInvoiceCreated TransactionKind = "invoice_created"
	TransactionKindInvoicePaid    TransactionKind = "invoice_paid"
	// Reserved: no ledger operation produces request transactions yet.
	TransactionKindRequestCreated  TransactionKind = "request_created"
	TransactionKindRequestReceived TransactionKind = "request_received"
)

// Transaction is an append-only entry of the ledger's transaction log.
// It is never mutated after creation.
type Transaction struct {
	ID        string
	Kind      TransactionKind
	From      string
	To        string
	Amount    decimal.Decimal
	Token     Token
	Note      string
	Timestamp time.Time
	TxHash    string
}

// Involves reports whether the address is the sender or the recipient
func (t *Transaction) Involves(address string) bool {
	return t.From == address || t.To == address
}

// Validate ensures the transaction adheres to domain rules
func (t *Transaction) Validate() error {
	if t.From == "" || t.To == "" {
		return InvalidInputf("transaction must have a sender and a recipient")
	}
	if t.From == t.To {
		return InvalidInputf("sender and recipient must differ")
	}
	if !t.Token.IsValid() {
		return InvalidInputf("unsupported token %q", t.Token)
	}
	return ValidateAmount(t.Amount)
}
