package currency

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

func TestParseAmount(t *testing.T) {
	t.Parallel()

	reg := Default()

	tests := []struct {
		name     string
		display  string
		code     string
		expected string
	}{
		{"one bitcoin", "1", "BTC", "100000000"},
		{"fractional bitcoin", "1.2", "BTC", "120000000"},
		{"one satoshi", "0.00000001", "BTC", "1"},
		{"leading dot", ".5", "BTC", "50000000"},
		{"trailing dot", "5.", "BTC", "500000000"},
		{"zero", "0", "BTC", "0"},
		{"excess zeros accepted", "1.2000000000000", "BTC", "120000000"},
		{"one ether", "1", "ETH", "1000000000000000000"},
		{"one wei", "0.000000000000000001", "ETH", "1"},
		{"large ether", "123456789.123456789", "ETH", "123456789123456789000000000"},
		{"xrp drops", "25.5", "XRP", "25500000"},
		{"stellar stroops", "0.0000001", "XLM", "1"},
		{"solana lamports", "2.000000001", "SOL", "2000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			amt, err := ParseAmount(tt.display, reg.Get(tt.code))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amt.Units().String())
			assert.Equal(t, tt.code, amt.Currency().Code)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	t.Parallel()

	btc := Default().Get("BTC")

	tests := []struct {
		name    string
		display string
	}{
		{"empty", ""},
		{"dot only", "."},
		{"negative", "-1"},
		{"plus sign", "+1"},
		{"exponent", "1e5"},
		{"two dots", "1.2.3"},
		{"comma", "1,5"},
		{"letters", "abc"},
		{"leading space", " 1"},
		{"trailing space", "1 "},
		{"hex", "0x10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseAmount(tt.display, btc)
			require.ErrorIs(t, err, payerr.ErrInvalidAmount)
		})
	}
}

func TestParseAmount_ExcessPrecision(t *testing.T) {
	t.Parallel()

	_, err := ParseAmount("0.000000001", Default().Get("BTC"))
	require.ErrorIs(t, err, payerr.ErrAmountPrecision)

	_, err = ParseAmount("1.0000001", Default().Get("XRP"))
	require.ErrorIs(t, err, payerr.ErrAmountPrecision)
}

func TestParseAmount_NilCurrency(t *testing.T) {
	t.Parallel()
	_, err := ParseAmount("1", nil)
	require.ErrorIs(t, err, payerr.ErrUnknownCurrency)
}

func TestAmount_String(t *testing.T) {
	t.Parallel()

	reg := Default()

	tests := []struct {
		name     string
		units    string
		code     string
		expected string
	}{
		{"one bitcoin", "100000000", "BTC", "1"},
		{"fractional", "120000000", "BTC", "1.2"},
		{"one satoshi", "1", "BTC", "0.00000001"},
		{"zero", "0", "BTC", "0"},
		{"one ether", "1000000000000000000", "ETH", "1"},
		{"one wei", "1", "ETH", "0.000000000000000001"},
		{"many ether", "1500000000000000000000", "ETH", "1500"},
		{"xrp", "25500000", "XRP", "25.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			units, ok := new(big.Int).SetString(tt.units, 10)
			require.True(t, ok)
			amt, err := NewAmount(units, reg.Get(tt.code))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, amt.String())
		})
	}
}

func TestAmount_ParseStringRoundTrip(t *testing.T) {
	t.Parallel()

	for _, cur := range Default().All() {
		for _, units := range []uint64{0, 1, 7, 100, 123456789, 1_000_000_000_000} {
			amt, err := NewAmountFromUnits(units, cur)
			require.NoError(t, err)

			parsed, err := ParseAmount(amt.String(), cur)
			require.NoError(t, err, "%s %d", cur.Code, units)
			assert.True(t, amt.Equal(parsed), "%s %d", cur.Code, units)
		}
	}
}

func TestNewAmount_Invalid(t *testing.T) {
	t.Parallel()

	btc := Default().Get("BTC")

	_, err := NewAmount(big.NewInt(-1), btc)
	require.ErrorIs(t, err, payerr.ErrInvalidAmount)

	_, err = NewAmount(nil, btc)
	require.ErrorIs(t, err, payerr.ErrInvalidAmount)

	_, err = NewAmount(big.NewInt(1), nil)
	require.ErrorIs(t, err, payerr.ErrUnknownCurrency)
}

func TestAmount_UnitsIsCopy(t *testing.T) {
	t.Parallel()

	amt, err := NewAmountFromUnits(5, Default().Get("BTC"))
	require.NoError(t, err)

	amt.Units().SetInt64(99)
	assert.Equal(t, "5", amt.Units().String())
}

func TestAmount_Equal(t *testing.T) {
	t.Parallel()

	reg := Default()
	a, _ := NewAmountFromUnits(1, reg.Get("BTC"))
	b, _ := NewAmountFromUnits(1, reg.Get("BTC"))
	c, _ := NewAmountFromUnits(1, reg.Get("ETH"))
	d, _ := NewAmountFromUnits(2, reg.Get("BTC"))

	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(d))
	assert.True(t, Amount{}.IsZero())
}

func TestAmount_MarshalJSON(t *testing.T) {
	t.Parallel()

	amt, err := ParseAmount("1.2", Default().Get("BTC"))
	require.NoError(t, err)

	data, err := json.Marshal(amt)
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"BTC","display":"1.2","units":"120000000"}`, string(data))
}
