package address

import (
	"fmt"

	"github.com/stellar/go/keypair"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Stellar validates StrKey-encoded account IDs (G...). Muxed and seed strings are rejected.
type Stellar struct{}

// ValidateAddress implements Validator.
func (Stellar) ValidateAddress(address string) error {
	if address == "" {
		return payerr.ErrInvalidAddress
	}
	if _, err := keypair.ParseAddress(address); err != nil {
		return fmt.Errorf("%w: %w", payerr.ErrInvalidAddress, err)
	}
	return nil
}
