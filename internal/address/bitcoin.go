package address

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Bitcoin validates legacy Base58Check (P2PKH/P2SH), bech32 segwit v0 and
// bech32m taproot addresses.
type Bitcoin struct {
	PubKeyHashVersion byte   // P2PKH version byte
	ScriptHashVersion byte   // P2SH version byte
	SegwitHRP         string // bech32 human-readable part; empty disables segwit
}

// BitcoinMainnet holds the Bitcoin mainnet address parameters.
//
//nolint:gochecknoglobals // Immutable network parameters
var BitcoinMainnet = Bitcoin{
	PubKeyHashVersion: 0x00, // addresses start with 1
	ScriptHashVersion: 0x05, // addresses start with 3
	SegwitHRP:         "bc",
}

// Witness program sizes.
const (
	witnessV0PubKeyHashLen = 20
	witnessV0ScriptHashLen = 32
	witnessV1TaprootLen    = 32
)

// ValidateAddress implements Validator.
func (b Bitcoin) ValidateAddress(address string) error {
	if address == "" {
		return payerr.ErrInvalidAddress
	}

	if b.SegwitHRP != "" && strings.HasPrefix(strings.ToLower(address), b.SegwitHRP+"1") {
		return b.validateSegwit(address)
	}
	return b.validateLegacy(address)
}

// validateLegacy checks a Base58Check P2PKH or P2SH address.
func (b Bitcoin) validateLegacy(address string) error {
	version, payload, err := DecodeBase58Check(address)
	if err != nil {
		return err
	}

	if version != b.PubKeyHashVersion && version != b.ScriptHashVersion {
		return payerr.WithDetails(payerr.ErrUnsupportedVersion, map[string]string{
			"version": fmt.Sprintf("0x%02x", version),
		})
	}

	if len(payload) != hash160Len {
		return invalid(address, "payload must be 20 bytes")
	}
	return nil
}

// validateSegwit checks a segwit address. Version 0 must carry a bech32
// checksum and version 1 (taproot) a bech32m checksum (BIP 350). Later
// witness versions are not accepted.
func (b Bitcoin) validateSegwit(address string) error {
	hrp, data, encoding, err := bech32.DecodeGeneric(address)
	if err != nil {
		return fmt.Errorf("%w: %w", payerr.ErrInvalidChecksum, err)
	}

	if hrp != b.SegwitHRP {
		return invalid(address, "unexpected human-readable part "+hrp)
	}

	if len(data) < 1 {
		return invalid(address, "missing witness version")
	}

	witnessVersion := data[0]
	program, err := bech32.ConvertBits(data[1:], 5, 8, false)
	if err != nil {
		return fmt.Errorf("%w: %w", payerr.ErrInvalidAddress, err)
	}

	switch witnessVersion {
	case 0:
		if encoding != bech32.Version0 {
			return invalid(address, "witness version 0 requires a bech32 checksum")
		}
		if len(program) != witnessV0PubKeyHashLen && len(program) != witnessV0ScriptHashLen {
			return invalid(address, fmt.Sprintf("witness program length %d", len(program)))
		}
	case 1:
		if encoding != bech32.VersionM {
			return invalid(address, "witness version 1 requires a bech32m checksum")
		}
		if len(program) != witnessV1TaprootLen {
			return invalid(address, fmt.Sprintf("taproot program length %d", len(program)))
		}
	default:
		return payerr.WithDetails(payerr.ErrUnsupportedVersion, map[string]string{
			"witness_version": fmt.Sprintf("%d", witnessVersion),
		})
	}
	return nil
}
