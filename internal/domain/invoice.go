package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the lifecycle state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusPaid    InvoiceStatus = "paid"
	// InvoiceStatusExpired is reserved. No operation transitions into it.
	InvoiceStatusExpired InvoiceStatus = "expired"
)

// InvoiceIDPrefix is prepended to generated invoice IDs
const InvoiceIDPrefix = "inv_"

// Invoice represents a merchant's request to be paid.
// Payer is nil for an open invoice; PaidAt is nil until the invoice is paid.
type Invoice struct {
	ID          string
	Merchant    string
	Payer       *string
	Amount      decimal.Decimal
	Token       Token
	Description string
	Status      InvoiceStatus
	CreatedAt   time.Time
	PaidAt      *time.Time
}

// Clone returns a deep copy so callers never share pointers with the ledger
func (i *Invoice) Clone() *Invoice {
	c := *i
	if i.Payer != nil {
		payer := *i.Payer
		c.Payer = &payer
	}
	if i.PaidAt != nil {
		paidAt := *i.PaidAt
		c.PaidAt = &paidAt
	}
	return &c
}

// Involves reports whether the address is the merchant or the payer
func (i *Invoice) Involves(address string) bool {
	if i.Merchant == address {
		return true
	}
	return i.Payer != nil && *i.Payer == address
}

// MarkPaid performs the pending -> paid transition and binds the payer.
// paid is terminal; expired invoices cannot be paid.
func (i *Invoice) MarkPaid(payer string, at time.Time) error {
	switch i.Status {
	case InvoiceStatusPending:
	case InvoiceStatusPaid:
		return NewError(KindAlreadyPaid, "invoice %s already paid", i.ID)
	default:
		return InvalidInputf("invoice %s is %s and cannot be paid", i.ID, i.Status)
	}
	i.Status = InvoiceStatusPaid
	i.Payer = &payer
	i.PaidAt = &at
	return nil
}

// Validate ensures the invoice adheres to domain rules
func (i *Invoice) Validate() error {
	if i.Merchant == "" {
		return InvalidInputf("invoice must have a merchant")
	}
	if i.Description == "" {
		return InvalidInputf("invoice description cannot be empty")
	}
	if !i.Token.IsValid() {
		return InvalidInputf("unsupported token %q", i.Token)
	}
	if i.Status == InvoiceStatusPaid && (i.Payer == nil || i.PaidAt == nil) {
		return InvalidInputf("paid invoice must have a payer and a paid time")
	}
	return ValidateAmount(i.Amount)
}
