// Package address provides per-currency address validation.
//
// Every validator is a pure value type: safe for concurrent use and total
// over all input strings. ValidateAddress reports why an address was
// rejected; IsValid collapses that into a boolean.
package address

import (
	"bytes"
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

const (
	// checksumLen is the length of a base58check checksum in bytes.
	checksumLen = 4

	// hash160Len is the length of a RIPEMD-160 payload (P2PKH, P2SH, XRP account ID).
	hash160Len = 20
)

// Validator checks whether a string is a valid address for one currency.
type Validator interface {
	// ValidateAddress returns nil if address is valid, or a structured error describing why not.
	ValidateAddress(address string) error
}

// IsValid reports whether v accepts address. A nil validator accepts nothing.
func IsValid(v Validator, address string) bool {
	if v == nil || address == "" {
		return false
	}
	return v.ValidateAddress(address) == nil
}

// DecodeBase58Check decodes a Base58Check string using the Bitcoin alphabet.
// Returns the version byte and the payload without checksum.
func DecodeBase58Check(s string) (version byte, payload []byte, err error) {
	return decodeBase58Check(s, base58.BTCAlphabet)
}

// decodeBase58Check decodes a Base58Check string in the given alphabet and verifies its checksum.
func decodeBase58Check(s string, alphabet *base58.Alphabet) (version byte, payload []byte, err error) {
	if s == "" {
		return 0, nil, payerr.ErrInvalidAddress
	}

	decoded, err := base58.DecodeAlphabet(s, alphabet)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", payerr.ErrInvalidAddress, err)
	}

	// Minimum length: 1 (version) + 1 (payload) + 4 (checksum)
	if len(decoded) < 1+1+checksumLen {
		return 0, nil, payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
			"reason": "too short",
		})
	}

	data := decoded[:len(decoded)-checksumLen]
	checksum := decoded[len(decoded)-checksumLen:]

	if !bytes.Equal(checksum, doubleSHA256Checksum(data)) {
		return 0, nil, payerr.ErrInvalidChecksum
	}

	return data[0], data[1:], nil
}

// doubleSHA256Checksum computes the first 4 bytes of double SHA256.
func doubleSHA256Checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:checksumLen]
}

// invalid returns ErrInvalidAddress annotated with the rejected address.
func invalid(address, reason string) error {
	return payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
		"address": address,
		"reason":  reason,
	})
}
