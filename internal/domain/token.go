package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Token represents a supported stable or native token
type Token string

const (
	TokenCELO Token = "CELO"
	TokenCUSD Token = "cUSD"
)

// AmountScale is the number of fractional digits the simulator keeps.
// One minor unit is 0.01 of a token.
const AmountScale int32 = 2

// MaxAmountDigits bounds both the integer and the fractional digits of an amount
const MaxAmountDigits = 18

// amountPattern accepts plain decimal notation only; exponents are rejected
// before any arithmetic runs on the value.
var amountPattern = regexp.MustCompile(`^[+-]?\d{1,18}(\.\d{1,18})?$`)

// IsValid reports whether the token is one of the supported tokens
func (t Token) IsValid() bool {
	return t == TokenCELO || t == TokenCUSD
}

// ParseToken converts a user supplied symbol to a Token.
// Matching is case-insensitive so "cusd" and "CUSD" both resolve to cUSD.
func ParseToken(symbol string) (Token, error) {
	s := strings.TrimSpace(symbol)
	switch {
	case strings.EqualFold(s, string(TokenCELO)):
		return TokenCELO, nil
	case strings.EqualFold(s, string(TokenCUSD)):
		return TokenCUSD, nil
	}
	return "", InvalidInputf("unsupported token %q", symbol)
}

// ParseAmount parses a decimal string into an amount and validates it
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	if !amountPattern.MatchString(s) {
		return decimal.Zero, InvalidInputf("invalid amount %q", raw)
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, InvalidInputf("invalid amount %q", raw)
	}
	if err := ValidateAmount(amount); err != nil {
		return decimal.Zero, err
	}
	return amount, nil
}

// ValidateAmount ensures the amount is strictly positive and representable
// in minor units without rounding.
func ValidateAmount(amount decimal.Decimal) error {
	exp := amount.Exponent()
	if exp < -MaxAmountDigits || exp > MaxAmountDigits || int64(amount.NumDigits())+int64(exp) > MaxAmountDigits {
		return InvalidInputf("amount is out of range")
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return InvalidInputf("amount must be positive")
	}
	if !amount.Equal(amount.Truncate(AmountScale)) {
		return InvalidInputf("amount must have at most %d decimal places", AmountScale)
	}
	return nil
}

// FormatAmount renders an amount the way balances are displayed ("25.00")
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountScale)
}
