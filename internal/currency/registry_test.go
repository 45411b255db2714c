package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/payreq/internal/address"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	reg := Default()
	assert.Equal(t, []string{"BTC", "ETH", "XRP", "XLM", "SOL"}, reg.Codes())
	assert.Same(t, reg, Default())

	btc := reg.Get("BTC")
	require.NotNil(t, btc)
	assert.Equal(t, "bitcoin", btc.URIScheme)
	assert.Equal(t, 8, btc.Decimals)

	eth := reg.Get("ETH")
	require.NotNil(t, eth)
	assert.Equal(t, "ethereum", eth.URIScheme)
	assert.Equal(t, 18, eth.Decimals)
}

func TestRegistry_Lookup(t *testing.T) {
	t.Parallel()

	reg := Default()

	c, ok := reg.Lookup("btc")
	require.True(t, ok)
	assert.Equal(t, "BTC", c.Code)

	c, ok = reg.Lookup(" Xrp ")
	require.True(t, ok)
	assert.Equal(t, "XRP", c.Code)

	_, ok = reg.Lookup("DOGE")
	assert.False(t, ok)
	assert.Nil(t, reg.Get("DOGE"))
}

func TestRegistry_AllIsCopy(t *testing.T) {
	t.Parallel()

	reg := Default()
	all := reg.All()
	all[0] = nil
	assert.NotNil(t, reg.All()[0])
}

func TestNewRegistry_Invalid(t *testing.T) {
	t.Parallel()

	valid := Defaults()[0]

	tests := []struct {
		name   string
		mutate func(c *Currency)
	}{
		{"missing code", func(c *Currency) { c.Code = "" }},
		{"lowercase code", func(c *Currency) { c.Code = "btc" }},
		{"missing scheme", func(c *Currency) { c.URIScheme = "" }},
		{"uppercase scheme", func(c *Currency) { c.URIScheme = "Bitcoin" }},
		{"negative decimals", func(c *Currency) { c.Decimals = -1 }},
		{"huge decimals", func(c *Currency) { c.Decimals = 99 }},
		{"fio token without chain", func(c *Currency) { c.FIOChainCode = "" }},
		{"bad contract", func(c *Currency) { c.Contract = "nope" }},
		{"nil validator", func(c *Currency) { c.Validator = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := valid
			tt.mutate(&c)
			_, err := NewRegistry(c)
			require.ErrorIs(t, err, payerr.ErrConfigInvalid)
		})
	}
}

func TestNewRegistry_Duplicate(t *testing.T) {
	t.Parallel()
	btc := Defaults()[0]
	_, err := NewRegistry(btc, btc)
	require.ErrorIs(t, err, payerr.ErrConfigInvalid)
}

func TestNewRegistry_Empty(t *testing.T) {
	t.Parallel()
	_, err := NewRegistry()
	require.ErrorIs(t, err, payerr.ErrConfigInvalid)
}

func TestWithTokens(t *testing.T) {
	t.Parallel()

	reg, err := WithTokens(Token{
		Code:     "usdc",
		Name:     "USD Coin",
		Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Decimals: 6,
	})
	require.NoError(t, err)

	usdc := reg.Get("USDC")
	require.NotNil(t, usdc)
	assert.Equal(t, "ethereum", usdc.URIScheme)
	assert.False(t, usdc.Native)
	assert.Equal(t, "ETH", usdc.FIOChainCode)
	assert.Equal(t, "USDC", usdc.FIOTokenCode)
	assert.False(t, usdc.SupportsPayID())

	schemes := reg.ByScheme("ethereum")
	require.Len(t, schemes, 2)
	assert.Equal(t, "ETH", schemes[0].Code)
	assert.Equal(t, "USDC", schemes[1].Code)
}

func TestWithTokens_Invalid(t *testing.T) {
	t.Parallel()

	_, err := WithTokens(Token{Code: "BAD", Contract: "0x123", Decimals: 6})
	require.ErrorIs(t, err, payerr.ErrConfigInvalid)

	_, err = WithTokens(Token{Code: "ETH", Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48", Decimals: 6})
	require.ErrorIs(t, err, payerr.ErrConfigInvalid)
}

func TestRegistry_MatchAddress(t *testing.T) {
	t.Parallel()

	reg := Default()

	tests := []struct {
		address  string
		expected string
	}{
		{"1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ", "BTC"},
		{"bc1qgu4y0m03kerspt2vzgr8aysplxvuasrxpyejer", "BTC"},
		{"0x2c4d5626b6559927350db12e50143e2e8b1b9951", "ETH"},
		{"rAPERVgXZavGgiGv6xBgtiZurirW2yAmY", "XRP"},
		{"GAAZI4TCR3TY5OJHCTJC2A4QSY6CJWJH5IAJTGKIN2ER7LBNVKOCCWN7", "XLM"},
		{"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", "SOL"},
	}

	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			t.Parallel()
			c, ok := reg.MatchAddress(tt.address)
			require.True(t, ok)
			assert.Equal(t, tt.expected, c.Code)
			assert.True(t, reg.IsKnownAddress(tt.address))
		})
	}

	_, ok := reg.MatchAddress("unknown")
	assert.False(t, ok)
	assert.False(t, reg.IsKnownAddress(""))
}

func TestRegistry_Suggest(t *testing.T) {
	t.Parallel()

	reg := Default()
	assert.Equal(t, "BTC", reg.Suggest("btc"))
	assert.Equal(t, "BTC", reg.Suggest("BTX"))
	assert.Equal(t, "ETH", reg.Suggest("ETHH"))
	assert.Empty(t, reg.Suggest("DOGECOIN"))
	assert.Empty(t, reg.Suggest(""))
}

func TestRegistry_Resolve(t *testing.T) {
	t.Parallel()

	reg := Default()

	c, err := reg.Resolve("eth")
	require.NoError(t, err)
	assert.Equal(t, "ETH", c.Code)

	_, err = reg.Resolve("ETX")
	require.ErrorIs(t, err, payerr.ErrUnknownCurrency)

	var pe *payerr.PayError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "Did you mean ETH?", pe.Suggestion)
}

func TestIsValidAddress(t *testing.T) {
	t.Parallel()

	reg := Default()
	btc := reg.Get("BTC")
	eth := reg.Get("ETH")

	assert.True(t, IsValidAddress("1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ", btc))
	assert.False(t, IsValidAddress("blah", btc))
	assert.False(t, IsValidAddress("", btc))
	assert.False(t, IsValidAddress(" 1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ", btc))

	assert.True(t, IsValidAddress("0x2c4d5626b6559927350db12e50143e2e8b1b9951", eth))
	assert.False(t, IsValidAddress("blah", eth))
	assert.False(t, IsValidAddress("", eth))

	// No cross-currency acceptance
	assert.False(t, IsValidAddress("1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ", eth))
	assert.False(t, IsValidAddress("0x2c4d5626b6559927350db12e50143e2e8b1b9951", btc))

	assert.False(t, IsValidAddress("1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ", nil))
}

type panickyValidator struct{}

func (panickyValidator) ValidateAddress(string) error { panic("boom") }

var _ address.Validator = panickyValidator{}

func TestIsValidAddress_NeverPanics(t *testing.T) {
	t.Parallel()
	cur := &Currency{Code: "BAD", Validator: panickyValidator{}}
	assert.NotPanics(t, func() {
		assert.False(t, IsValidAddress("anything", cur))
	})
}

func TestCurrency_Supports(t *testing.T) {
	t.Parallel()

	reg := Default()
	assert.True(t, reg.Get("BTC").SupportsPayID())
	assert.True(t, reg.Get("BTC").SupportsFIO())
	assert.False(t, reg.Get("BTC").SupportsTag())
	assert.True(t, reg.Get("XRP").SupportsTag())
	assert.False(t, reg.Get("SOL").SupportsPayID())

	var nilCur *Currency
	assert.False(t, nilCur.SupportsFIO())
	assert.Empty(t, nilCur.String())
}
