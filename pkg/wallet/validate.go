package wallet

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidAddress is returned before any upstream call is made. Its message
// is surfaced verbatim as the 400 response body.
var ErrInvalidAddress = errors.New("Invalid Solana wallet address format")

// Base58 alphabet, no 0/O/I/l, standard Solana pubkey length range.
var addressRe = regexp.MustCompile(`^[1-9A-HJ-NP-Za-km-z]{32,44}$`)

func ValidAddress(addr string) bool {
	return addressRe.MatchString(strings.TrimSpace(addr))
}

// addressSum is the deterministic seed behind every synthesized value: the
// byte sum of the address mod 1000. Stable per address, so fallback responses
// and the archetype never flicker between requests.
func addressSum(addr string) int {
	sum := 0
	for _, c := range addr {
		sum += int(c)
	}
	return sum % 1000
}
