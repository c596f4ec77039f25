package domain

import (
	"github.com/shopspring/decimal"
)

// Balances holds the per-token balances of one address.
// Balances is the only entity whose identity is its key (the address).
type Balances struct {
	Address string
	CELO    decimal.Decimal
	CUSD    decimal.Decimal
}

// ZeroBalances returns an empty balance for the address
func ZeroBalances(address string) Balances {
	return Balances{Address: address, CELO: decimal.Zero, CUSD: decimal.Zero}
}

// Of returns the balance held in the given token
func (b Balances) Of(token Token) decimal.Decimal {
	if token == TokenCELO {
		return b.CELO
	}
	return b.CUSD
}

// With returns a copy of the balances with the token amount replaced
func (b Balances) With(token Token, amount decimal.Decimal) Balances {
	if token == TokenCELO {
		b.CELO = amount
	} else {
		b.CUSD = amount
	}
	return b
}

// Validate ensures no token balance is negative
func (b Balances) Validate() error {
	if b.CELO.IsNegative() || b.CUSD.IsNegative() {
		return InvalidInputf("balance of %s cannot be negative", b.Address)
	}
	return nil
}
