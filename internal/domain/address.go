package domain

import "strings"

// NormalizeAddress returns the canonical spelling of a hex address.
// Hex digits are case-insensitive, so every spelling of one account maps to
// the same lowercase key. Values without the 0x prefix are only trimmed and
// left for validation to reject.
func NormalizeAddress(address string) string {
	s := strings.TrimSpace(address)
	if !strings.HasPrefix(s, "0x") {
		return s
	}
	return strings.ToLower(s)
}
