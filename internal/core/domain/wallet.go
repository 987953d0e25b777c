package domain

import (
	"regexp"
	"strings"
)

var walletPattern = regexp.MustCompile(`^0x[0-9a-f]{40}$`)

// NormalizeWallet lowercases an address and checks it looks like an
// EVM account (0x followed by 40 hex digits).
func NormalizeWallet(address string) (string, error) {
	addr := strings.ToLower(strings.TrimSpace(address))
	if !walletPattern.MatchString(addr) {
		return "", ErrInvalidWallet
	}
	return addr, nil
}
