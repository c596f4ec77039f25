package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "lowercase is unchanged", input: alice, want: alice},
		{name: "checksummed", input: "0x742d35Cc6634C0532925a3b844Bc9e7595f8fF71", want: alice},
		{name: "upper hex", input: "0x742D35CC6634C0532925A3B844BC9E7595F8FF71", want: alice},
		{name: "surrounding space", input: "  " + alice + "\n", want: alice},
		{name: "missing prefix stays as is", input: "BOB", want: "BOB"},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeAddress(tt.input))
		})
	}
}
