package currency

import (
	"encoding/json"
	"math/big"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Amount is a non-negative smallest-unit magnitude tied to a currency.
type Amount struct {
	units    *big.Int
	currency *Currency
}

// NewAmount creates an amount from a smallest-unit integer.
func NewAmount(units *big.Int, cur *Currency) (Amount, error) {
	if cur == nil {
		return Amount{}, payerr.ErrUnknownCurrency
	}
	if units == nil || units.Sign() < 0 {
		return Amount{}, payerr.WithDetails(payerr.ErrInvalidAmount, map[string]string{
			"currency": cur.Code,
			"reason":   "amount must be a non-negative integer",
		})
	}
	return Amount{units: new(big.Int).Set(units), currency: cur}, nil
}

// NewAmountFromUnits is NewAmount for small values.
func NewAmountFromUnits(units uint64, cur *Currency) (Amount, error) {
	return NewAmount(new(big.Int).SetUint64(units), cur)
}

// ParseAmount converts a display decimal (e.g. "1.2") into smallest units.
// The grammar is digits with at most one '.'; signs, exponents and
// whitespace are rejected. More fractional digits than the currency scale
// fails with ErrAmountPrecision unless the excess digits are all zero.
func ParseAmount(display string, cur *Currency) (Amount, error) {
	if cur == nil {
		return Amount{}, payerr.ErrUnknownCurrency
	}
	if !isDecimalLiteral(display) {
		return Amount{}, payerr.WithDetails(payerr.ErrInvalidAmount, map[string]string{
			"amount": display,
		})
	}

	normalized := display
	if strings.HasPrefix(normalized, ".") {
		normalized = "0" + normalized
	}
	normalized = strings.TrimSuffix(normalized, ".")

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return Amount{}, payerr.WithDetails(payerr.ErrInvalidAmount, map[string]string{
			"amount": display,
		})
	}

	shifted := d.Shift(int32(cur.Decimals)) //nolint:gosec // Decimals bounded by registry validation
	if !shifted.Equal(shifted.Truncate(0)) {
		return Amount{}, payerr.WithDetails(payerr.ErrAmountPrecision, map[string]string{
			"amount":   display,
			"currency": cur.Code,
			"decimals": strconv.Itoa(cur.Decimals),
		})
	}

	return Amount{units: shifted.BigInt(), currency: cur}, nil
}

// isDecimalLiteral reports whether s is digits with at most one '.' and at least one digit.
func isDecimalLiteral(s string) bool {
	digits := 0
	dots := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
			if dots > 1 {
				return false
			}
		default:
			return false
		}
	}
	return digits > 0
}

// Units returns a copy of the smallest-unit magnitude.
func (a Amount) Units() *big.Int {
	if a.units == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(a.units)
}

// Currency returns the currency the amount is denominated in.
func (a Amount) Currency() *Currency {
	return a.currency
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.units == nil || a.units.Sign() == 0
}

// Equal reports whether both amounts have the same magnitude and currency code.
func (a Amount) Equal(b Amount) bool {
	return a.currency.String() == b.currency.String() && a.Units().Cmp(b.Units()) == 0
}

// String renders the amount in display units with the minimal decimal
// representation: 100000000 satoshis renders as "1", 120000000 as "1.2".
func (a Amount) String() string {
	if a.units == nil || a.currency == nil {
		return "0"
	}
	return decimal.NewFromBigInt(a.units, -int32(a.currency.Decimals)).String() //nolint:gosec // Decimals bounded by registry validation
}

// amountJSON is the wire form of an Amount.
type amountJSON struct {
	Currency string `json:"currency"`
	Display  string `json:"display"`
	Units    string `json:"units"`
}

// MarshalJSON implements json.Marshaler.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(amountJSON{
		Currency: a.currency.String(),
		Display:  a.String(),
		Units:    a.Units().String(),
	})
}
