package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

const (
	alice = "0x742d35cc6634c0532925a3b844bc9e7595f8ff71"
	bob   = "0x8ba1f109551bd432803012645ac136ddd64dba72"
)

func TestTransaction_Validate(t *testing.T) {
	tests := []struct {
		name    string
		tx      Transaction
		wantErr bool
		errMsg  string
	}{
		{
			name: "valid send",
			tx: Transaction{
				Kind:   TransactionKindSend,
				From:   alice,
				To:     bob,
				Amount: decimal.RequireFromString("25.00"),
				Token:  TokenCUSD,
			},
			wantErr: false,
		},
		{
			name: "missing recipient",
			tx: Transaction{
				From:   alice,
				Amount: decimal.NewFromInt(1),
				Token:  TokenCUSD,
			},
			wantErr: true,
			errMsg:  "must have a sender and a recipient",
		},
		{
			name: "self transfer",
			tx: Transaction{
				From:   alice,
				To:     alice,
				Amount: decimal.NewFromInt(1),
				Token:  TokenCELO,
			},
			wantErr: true,
			errMsg:  "sender and recipient must differ",
		},
		{
			name: "unknown token",
			tx: Transaction{
				From:   alice,
				To:     bob,
				Amount: decimal.NewFromInt(1),
				Token:  Token("ETH"),
			},
			wantErr: true,
			errMsg:  "unsupported token",
		},
		{
			name: "zero amount",
			tx: Transaction{
				From:   alice,
				To:     bob,
				Amount: decimal.Zero,
				Token:  TokenCUSD,
			},
			wantErr: true,
			errMsg:  "amount must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_Involves(t *testing.T) {
	tx := &Transaction{From: alice, To: bob, Timestamp: time.Now()}

	assert.True(t, tx.Involves(alice))
	assert.True(t, tx.Involves(bob))
	assert.False(t, tx.Involves("0xdd2fd4581271e230360230f9337d5c0430bf44c0"))
}
