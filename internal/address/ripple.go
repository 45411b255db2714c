package address

import (
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// rippleAlphabet is the XRP Ledger base58 dictionary.
const rippleAlphabet = "rpshnaf39wBUDNEGHJKLM4PQRST7VWXYZ2bcdeCg65jkm8oFqi1tuvAxyz"

// rippleAccountVersion is the version byte of classic XRP account addresses.
const rippleAccountVersion = 0x00

//nolint:gochecknoglobals // Immutable alphabet table
var xrpAlphabet = base58.NewAlphabet(rippleAlphabet)

// Ripple validates classic XRP Ledger account addresses (r...).
type Ripple struct{}

// ValidateAddress implements Validator.
func (Ripple) ValidateAddress(address string) error {
	if !strings.HasPrefix(address, "r") {
		return invalid(address, "classic addresses start with r")
	}

	version, payload, err := decodeBase58Check(address, xrpAlphabet)
	if err != nil {
		return err
	}

	if version != rippleAccountVersion {
		return payerr.WithDetails(payerr.ErrUnsupportedVersion, map[string]string{
			"version": fmt.Sprintf("0x%02x", version),
		})
	}

	if len(payload) != hash160Len {
		return invalid(address, "account ID must be 20 bytes")
	}
	return nil
}
