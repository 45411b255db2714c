// Package scan classifies scanned or pasted content: payment requests,
// resolvable handles, private keys and deep links.
package scan

import (
	"encoding/json"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/mrz1836/payreq/internal/address"
	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/payment"
	"github.com/mrz1836/payreq/internal/resolver"
)

// Kind is the classification of scanned content.
type Kind int

// Classification kinds.
const (
	KindInvalid Kind = iota
	KindPaymentRequest
	KindResolvable
	KindPrivateKey
	KindDeepLink
)

// wifVersion is the base58check version byte of mainnet WIF keys.
const wifVersion = 0x80

// String returns the kind name used in output.
func (k Kind) String() string {
	switch k {
	case KindPaymentRequest:
		return "payment_request"
	case KindResolvable:
		return "resolvable"
	case KindPrivateKey:
		return "private_key"
	case KindDeepLink:
		return "deep_link"
	case KindInvalid:
		return "invalid"
	default:
		return "invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Options controls classification.
type Options struct {
	// Registry supplies the candidate currencies. Defaults to currency.Default().
	Registry *currency.Registry

	// Currency restricts classification to payment requests for this currency.
	Currency *currency.Currency

	// PrivateKeyOnly accepts private keys and nothing else.
	PrivateKeyOnly bool

	// DeepLinkPrefixes lists the prefixes that mark application deep links.
	DeepLinkPrefixes []string
}

// Result is the outcome of Classify. Private key material is never stored.
type Result struct {
	Kind     Kind
	Request  *payment.Request
	Handle   resolver.Handle
	DeepLink string
}

// resultJSON is the wire form of a Result.
type resultJSON struct {
	Kind     Kind             `json:"kind"`
	Request  *payment.Request `json:"request,omitempty"`
	Handle   *resolver.Handle `json:"handle,omitempty"`
	DeepLink string           `json:"deep_link,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r Result) MarshalJSON() ([]byte, error) {
	out := resultJSON{Kind: r.Kind, Request: r.Request, DeepLink: r.DeepLink}
	if r.Kind == KindResolvable {
		h := r.Handle
		out.Handle = &h
	}
	return json.Marshal(out)
}

// Classify determines what content is. It is pure and never fails: anything
// unrecognized is KindInvalid.
func Classify(content string, opts Options) Result {
	s := strings.TrimSpace(content)
	if s == "" {
		return Result{Kind: KindInvalid}
	}

	if opts.PrivateKeyOnly {
		if IsPrivateKey(s) {
			return Result{Kind: KindPrivateKey}
		}
		return Result{Kind: KindInvalid}
	}

	if opts.Currency != nil {
		if req, ok := payment.MakeRequest(s, opts.Currency); ok {
			return Result{Kind: KindPaymentRequest, Request: req}
		}
		return Result{Kind: KindInvalid}
	}

	reg := opts.Registry
	if reg == nil {
		reg = currency.Default()
	}

	if IsPrivateKey(s) {
		return Result{Kind: KindPrivateKey}
	}

	if req, ok := matchRequest(s, reg); ok {
		return Result{Kind: KindPaymentRequest, Request: req}
	}

	if h, ok := resolver.NewDetector(reg).Detect(s); ok {
		return Result{Kind: KindResolvable, Handle: h}
	}

	for _, prefix := range opts.DeepLinkPrefixes {
		if prefix != "" && strings.HasPrefix(s, prefix) {
			return Result{Kind: KindDeepLink, DeepLink: s}
		}
	}

	return Result{Kind: KindInvalid}
}

// matchRequest tries s as a URI of every currency sharing its scheme, then
// as a bare address of every registered currency.
func matchRequest(s string, reg *currency.Registry) (*payment.Request, bool) {
	if scheme, _, found := strings.Cut(s, ":"); found {
		for _, cur := range reg.ByScheme(scheme) {
			if req, ok := payment.MakeRequest(s, cur); ok {
				return req, true
			}
		}
		return nil, false
	}

	cur, ok := reg.MatchAddress(s)
	if !ok {
		return nil, false
	}
	return payment.MakeRequest(s, cur)
}

// IsPrivateKey reports whether s is a mainnet WIF private key or a raw
// 32-byte hex secp256k1 key, with or without a 0x prefix.
func IsPrivateKey(s string) bool {
	return isWIF(s) || isHexKey(s)
}

func isWIF(s string) bool {
	version, payload, err := address.DecodeBase58Check(s)
	if err != nil || version != wifVersion {
		return false
	}
	switch {
	case len(payload) == 32:
	case len(payload) == 33 && payload[32] == 0x01:
	default:
		return false
	}
	_, err = btcutil.DecodeWIF(s)
	return err == nil
}

func isHexKey(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(s) != 64 {
		return false
	}
	_, err := crypto.HexToECDSA(s)
	return err == nil
}
