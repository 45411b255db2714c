package address

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// ethAddressLen is the length of a 0x-prefixed Ethereum address.
const ethAddressLen = 42

// Ethereum validates 0x-prefixed 20-byte hex addresses. Checksum casing is not enforced.
type Ethereum struct{}

// ValidateAddress implements Validator.
func (Ethereum) ValidateAddress(address string) error {
	if !IsValidEthereumAddress(address) {
		return invalid(address, "expected 0x followed by 40 hex characters")
	}
	return nil
}

// IsValidEthereumAddress checks if the address is a valid Ethereum address format.
// This validates the format (40 hex chars with 0x prefix) but does not validate checksum.
func IsValidEthereumAddress(address string) bool {
	if len(address) != ethAddressLen {
		return false
	}
	if !strings.HasPrefix(address, "0x") {
		return false
	}
	return common.IsHexAddress(address)
}

// ToChecksumAddress renders an Ethereum address in EIP-55 checksum casing.
// Invalid input is returned unchanged.
func ToChecksumAddress(address string) string {
	if !IsValidEthereumAddress(address) {
		return address
	}
	return common.HexToAddress(address).Hex()
}

// ValidateChecksumAddress validates that an Ethereum address has correct EIP-55 checksum.
// All lowercase and all uppercase addresses are considered valid (non-checksummed).
// Mixed-case addresses must have the correct checksum.
func ValidateChecksumAddress(address string) error {
	if !IsValidEthereumAddress(address) {
		return payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
			"address": address,
		})
	}

	addrPart := address[2:]
	if addrPart == strings.ToLower(addrPart) || addrPart == strings.ToUpper(addrPart) {
		return nil
	}

	expected := ToChecksumAddress(address)
	if address != expected {
		return payerr.WithDetails(payerr.ErrInvalidChecksum, map[string]string{
			"expected": expected,
			"actual":   address,
		})
	}

	return nil
}
