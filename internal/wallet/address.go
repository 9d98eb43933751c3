// Package wallet normalizes Ethereum-style addresses to EIP-55 checksummed
// form.
package wallet

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// ErrInvalidAddress is returned for input that is not a plausible address or
// carries a wrong mixed-case checksum.
var ErrInvalidAddress = errors.New("invalid wallet address")

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// Checksum validates addr and returns it in EIP-55 checksummed form.
// All-lowercase and all-uppercase hex are accepted and re-cased; mixed-case
// input must already match its checksum.
func Checksum(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if !addressPattern.MatchString(addr) {
		return "", ErrInvalidAddress
	}

	hex := addr[2:]
	lower := strings.ToLower(hex)

	hasher := sha3.NewLegacyKeccak256()
	hasher.Write([]byte(lower))
	hash := hasher.Sum(nil)

	out := []byte(lower)
	for i, c := range out {
		if c < 'a' || c > 'f' {
			continue
		}
		nibble := hash[i/2]
		if i%2 == 0 {
			nibble >>= 4
		}
		if nibble&0x0f >= 8 {
			out[i] = c - ('a' - 'A')
		}
	}
	checksummed := "0x" + string(out)

	// A mixed-case input is a checksum claim; verify it.
	if hex != lower && hex != strings.ToUpper(lower) && addr != checksummed {
		return "", ErrInvalidAddress
	}
	return checksummed, nil
}
