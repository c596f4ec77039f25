package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRequest represents a requester asking a payer for funds.
// IsPaid is reserved: no operation flips it yet.
type PaymentRequest struct {
	ID        string
	Requester string
	Payer     string
	Amount    decimal.Decimal
	Token     Token
	Note      string
	CreatedAt time.Time
	IsPaid    bool
}

// Involves reports whether the address is the requester or the payer
func (r *PaymentRequest) Involves(address string) bool {
	return r.Requester == address || r.Payer == address
}
