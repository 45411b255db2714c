package payment

import (
	"net/url"
	"strings"

	"github.com/mrz1836/payreq/internal/currency"
)

// Recognized query keys.
const (
	paramAmount  = "amount"
	paramMessage = "message"
	paramLabel   = "label"

	// requiredPrefix marks parameters a decoder must understand (BIP21).
	requiredPrefix = "req-"
)

// param is one decoded query pair.
type param struct {
	key   string
	value string
}

// ParseURI decodes raw as "<scheme>:<address>[?<query>]" for cur. A string
// without cur's scheme prefix is treated entirely as a bare address. The
// scheme match is case-sensitive and a "//" after the colon is tolerated.
//
// Query pairs are split on '&' and each pair on its first '=' only, so
// "message=Payment=true" yields "Payment=true". Values are percent-decoded
// when well formed and kept verbatim otherwise. The first occurrence of a
// key wins and unknown keys are ignored, except "req-" keys, which fail the
// decode. A malformed or over-precise amount also fails the decode.
func ParseURI(raw string, cur *currency.Currency) (*Request, bool) {
	req, _, ok := parseURI(raw, cur)
	return req, ok
}

// parseURI is ParseURI that also reports whether a scheme prefix was present.
func parseURI(raw string, cur *currency.Currency) (req *Request, hadScheme, ok bool) {
	if cur == nil {
		return nil, false, false
	}

	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, false, false
	}

	rest, hadScheme := strings.CutPrefix(s, cur.URIScheme+":")
	if !hadScheme {
		r, err := NewRequest(cur, s, WithRawSource(raw))
		return r, false, err == nil
	}

	rest = strings.TrimPrefix(rest, "//")
	address, query, _ := strings.Cut(rest, "?")

	opts := []RequestOption{WithRawSource(raw)}
	for _, p := range parseQuery(query) {
		switch p.key {
		case paramAmount:
			amt, err := currency.ParseAmount(p.value, cur)
			if err != nil {
				return nil, true, false
			}
			opts = append(opts, WithAmount(amt))
		case paramMessage:
			opts = append(opts, WithMessage(p.value))
		case paramLabel:
			opts = append(opts, WithLabel(p.value))
		default:
			if cur.TagParam != "" && p.key == cur.TagParam {
				opts = append(opts, WithTag(p.value))
				continue
			}
			if strings.HasPrefix(p.key, requiredPrefix) {
				return nil, true, false
			}
		}
	}

	r, err := NewRequest(cur, address, opts...)
	if err != nil {
		return nil, true, false
	}
	return r, true, true
}

// parseQuery splits a query into ordered pairs, keeping the first occurrence of each key.
func parseQuery(query string) []param {
	if query == "" {
		return nil
	}

	var params []param
	seen := make(map[string]struct{})

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")
		key = unescape(key)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		params = append(params, param{key: key, value: unescape(value)})
	}
	return params
}

// unescape percent-decodes s, returning s unchanged if it is not valid percent-encoding.
// '+' is kept literally.
func unescape(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

// escape percent-encodes s for a query value, encoding spaces as %20.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// RequestString returns "<scheme>:<address>" or, with an amount,
// "<scheme>:<address>?amount=<decimal>" using the minimal display decimal.
func RequestString(cur *currency.Currency, address string, amount *currency.Amount) string {
	if cur == nil {
		return address
	}

	var b strings.Builder
	b.WriteString(cur.URIScheme)
	b.WriteByte(':')
	b.WriteString(address)

	if amount != nil {
		b.WriteString("?amount=")
		b.WriteString(amount.String())
	}
	return b.String()
}

// Encode serializes a request to its canonical URI. Parameters are emitted
// in the order amount, tag, message, label; empty ones are omitted.
func Encode(r *Request) string {
	if r == nil {
		return ""
	}

	var params []string
	if r.amount != nil {
		params = append(params, paramAmount+"="+r.amount.String())
	}
	if r.tag != "" && r.currency.TagParam != "" {
		params = append(params, r.currency.TagParam+"="+escape(r.tag))
	}
	if r.message != "" {
		params = append(params, paramMessage+"="+escape(r.message))
	}
	if r.label != "" {
		params = append(params, paramLabel+"="+escape(r.label))
	}

	uri := r.currency.URIScheme + ":" + r.toAddress
	if len(params) > 0 {
		uri += "?" + strings.Join(params, "&")
	}
	return uri
}
