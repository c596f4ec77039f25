package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewError(KindNotFound, "invoice %s not found", "inv_x")

	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrAlreadyPaid)
	assert.Equal(t, "invoice inv_x not found", err.Error())
}

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("paying invoice: %w", ErrInsufficientBalance)

	assert.Equal(t, KindInsufficientBalance, KindOf(wrapped))
	assert.True(t, errors.Is(wrapped, ErrInsufficientBalance))
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("boom")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}
