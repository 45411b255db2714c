package address

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Solana validates base58-encoded 32-byte public keys.
type Solana struct{}

// ValidateAddress implements Validator.
func (Solana) ValidateAddress(address string) error {
	if address == "" {
		return payerr.ErrInvalidAddress
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("%w: %w", payerr.ErrInvalidAddress, err)
	}
	return nil
}
