// Package currency defines the static per-currency metadata used by the
// payment request engine: URI scheme, smallest-unit scale, address rule and
// the identifiers used by the PayID and FIO resolution networks.
package currency

import (
	"strings"

	"github.com/mrz1836/payreq/internal/address"
)

// Currency describes one payable asset. Values are built once by a Registry
// and never mutated afterwards.
type Currency struct {
	// Code is the uppercase ticker (e.g. "BTC").
	Code string `validate:"required,uppercase,alphanum,max=12" yaml:"code" json:"code"`

	// Name is the human-readable name.
	Name string `validate:"required" yaml:"name" json:"name"`

	// URIScheme is the lowercase BIP21-style scheme token (e.g. "bitcoin").
	URIScheme string `validate:"required,lowercase,alpha" yaml:"uri_scheme" json:"uri_scheme"`

	// Decimals converts display amounts to the smallest indivisible unit.
	Decimals int `validate:"gte=0,lte=36" yaml:"decimals" json:"decimals"`

	// PayIDNetwork is the PayID payment network token; empty disables PayID.
	PayIDNetwork string `validate:"omitempty,lowercase" yaml:"payid_network,omitempty" json:"payid_network,omitempty"`

	// FIOChainCode and FIOTokenCode identify the currency on FIO; an empty chain code disables FIO.
	FIOChainCode string `validate:"required_with=FIOTokenCode" yaml:"fio_chain_code,omitempty" json:"fio_chain_code,omitempty"`
	FIOTokenCode string `validate:"required_with=FIOChainCode" yaml:"fio_token_code,omitempty" json:"fio_token_code,omitempty"`

	// TagParam is the URI query key carrying a destination tag or memo.
	TagParam string `validate:"omitempty,lowercase,alpha" yaml:"tag_param,omitempty" json:"tag_param,omitempty"`

	// Contract is the token contract address for non-native assets.
	Contract string `validate:"omitempty,eth_addr" yaml:"contract,omitempty" json:"contract,omitempty"`

	// Native is false for tokens riding on another chain's scheme.
	Native bool `yaml:"native" json:"native"`

	// Validator checks addresses for this currency.
	Validator address.Validator `validate:"-" yaml:"-" json:"-"`
}

// SupportsPayID reports whether handles can be resolved over PayID for this currency.
func (c *Currency) SupportsPayID() bool {
	return c != nil && c.PayIDNetwork != ""
}

// SupportsFIO reports whether handles can be resolved over FIO for this currency.
func (c *Currency) SupportsFIO() bool {
	return c != nil && c.FIOChainCode != ""
}

// SupportsTag reports whether the currency carries a destination tag or memo.
func (c *Currency) SupportsTag() bool {
	return c != nil && c.TagParam != ""
}

// String returns the currency code.
func (c *Currency) String() string {
	if c == nil {
		return ""
	}
	return c.Code
}

// IsValidAddress reports whether candidate is a valid address for cur.
// It is total over all strings: empty or malformed input yields false.
func IsValidAddress(candidate string, cur *Currency) (valid bool) {
	if cur == nil || cur.Validator == nil || candidate == "" {
		return false
	}
	if strings.TrimSpace(candidate) != candidate {
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			valid = false
		}
	}()

	return address.IsValid(cur.Validator, candidate)
}

// Token is an ERC-20 asset supplied by configuration.
type Token struct {
	Code     string `yaml:"code" json:"code" validate:"required"`
	Name     string `yaml:"name" json:"name"`
	Contract string `yaml:"contract" json:"contract" validate:"required,eth_addr"`
	Decimals int    `yaml:"decimals" json:"decimals" validate:"gte=0,lte=36"`
}

// NewToken builds the Currency for an ERC-20 token. Tokens share the
// ethereum scheme and address rule and resolve over FIO as ETH/<code>.
func NewToken(t Token) Currency {
	code := strings.ToUpper(strings.TrimSpace(t.Code))
	name := t.Name
	if name == "" {
		name = code
	}
	return Currency{
		Code:         code,
		Name:         name,
		URIScheme:    "ethereum",
		Decimals:     t.Decimals,
		FIOChainCode: "ETH",
		FIOTokenCode: code,
		Contract:     t.Contract,
		Native:       false,
		Validator:    address.Ethereum{},
	}
}

// Defaults returns the built-in currency table.
func Defaults() []Currency {
	return []Currency{
		{
			Code:         "BTC",
			Name:         "Bitcoin",
			URIScheme:    "bitcoin",
			Decimals:     8,
			PayIDNetwork: "btc",
			FIOChainCode: "BTC",
			FIOTokenCode: "BTC",
			Native:       true,
			Validator:    address.BitcoinMainnet,
		},
		{
			Code:         "ETH",
			Name:         "Ethereum",
			URIScheme:    "ethereum",
			Decimals:     18,
			PayIDNetwork: "eth",
			FIOChainCode: "ETH",
			FIOTokenCode: "ETH",
			Native:       true,
			Validator:    address.Ethereum{},
		},
		{
			Code:         "XRP",
			Name:         "XRP",
			URIScheme:    "ripple",
			Decimals:     6,
			PayIDNetwork: "xrpl",
			FIOChainCode: "XRP",
			FIOTokenCode: "XRP",
			TagParam:     "dt",
			Native:       true,
			Validator:    address.Ripple{},
		},
		{
			Code:         "XLM",
			Name:         "Stellar Lumens",
			URIScheme:    "stellar",
			Decimals:     7,
			PayIDNetwork: "xlm",
			FIOChainCode: "XLM",
			FIOTokenCode: "XLM",
			TagParam:     "memo",
			Native:       true,
			Validator:    address.Stellar{},
		},
		{
			Code:         "SOL",
			Name:         "Solana",
			URIScheme:    "solana",
			Decimals:     9,
			FIOChainCode: "SOL",
			FIOTokenCode: "SOL",
			TagParam:     "memo",
			Native:       true,
			Validator:    address.Solana{},
		},
	}
}
