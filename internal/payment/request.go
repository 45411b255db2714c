// Package payment turns raw strings (scheme URIs, bare addresses, PayID and
// FIO handles) into validated payment requests and encodes requests back
// into canonical URIs.
package payment

import (
	"encoding/json"
	"strconv"

	"github.com/mrz1836/payreq/internal/currency"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// maxTagLen caps free-text memos carried as destination tags.
const maxTagLen = 256

// Request is a validated payment request. The destination address is
// checked against the currency when the request is built, and the request
// is immutable afterwards.
type Request struct {
	currency  *currency.Currency
	toAddress string
	amount    *currency.Amount
	message   string
	label     string
	tag       string
	rawSource string
}

// RequestOption sets an optional field on a Request.
type RequestOption func(*Request)

// WithAmount sets the requested amount.
func WithAmount(a currency.Amount) RequestOption {
	return func(r *Request) { r.amount = &a }
}

// WithMessage sets the free-text message.
func WithMessage(m string) RequestOption {
	return func(r *Request) { r.message = m }
}

// WithLabel sets the free-text label.
func WithLabel(l string) RequestOption {
	return func(r *Request) { r.label = l }
}

// WithTag sets the destination tag or memo.
func WithTag(tag string) RequestOption {
	return func(r *Request) { r.tag = tag }
}

// WithRawSource records the string the request was built from.
func WithRawSource(raw string) RequestOption {
	return func(r *Request) { r.rawSource = raw }
}

// NewRequest builds a request for address in cur. It fails with
// ErrInvalidAddress if address is not valid for cur.
func NewRequest(cur *currency.Currency, address string, opts ...RequestOption) (*Request, error) {
	if cur == nil {
		return nil, payerr.ErrUnknownCurrency
	}
	if !currency.IsValidAddress(address, cur) {
		return nil, payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
			"address":  address,
			"currency": cur.Code,
		})
	}

	r := &Request{currency: cur, toAddress: address}
	for _, opt := range opts {
		opt(r)
	}

	if r.amount != nil && r.amount.Currency().String() != cur.Code {
		return nil, payerr.WithDetails(payerr.ErrInvalidAmount, map[string]string{
			"amount_currency": r.amount.Currency().String(),
			"currency":        cur.Code,
		})
	}

	if err := validateTag(cur, r.tag); err != nil {
		return nil, err
	}

	return r, nil
}

// validateTag checks a destination tag against the currency's tag rule.
// XRP destination tags are unsigned 32-bit integers; memos are free text.
func validateTag(cur *currency.Currency, tag string) error {
	if tag == "" {
		return nil
	}
	if !cur.SupportsTag() {
		return payerr.WithDetails(payerr.ErrNotSupported, map[string]string{
			"currency": cur.Code,
			"reason":   "currency has no destination tag",
		})
	}
	if len(tag) > maxTagLen {
		return payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{
			"reason": "tag too long",
		})
	}
	if cur.TagParam == "dt" {
		if _, err := strconv.ParseUint(tag, 10, 32); err != nil {
			return payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{
				"tag":    tag,
				"reason": "destination tag must be an unsigned 32-bit integer",
			})
		}
	}
	return nil
}

// Currency returns the currency the request targets.
func (r *Request) Currency() *currency.Currency { return r.currency }

// ToAddress returns the validated destination address.
func (r *Request) ToAddress() string { return r.toAddress }

// Amount returns the requested amount and whether one was given.
func (r *Request) Amount() (currency.Amount, bool) {
	if r.amount == nil {
		return currency.Amount{}, false
	}
	return *r.amount, true
}

// Message returns the free-text message, or "".
func (r *Request) Message() string { return r.message }

// Label returns the free-text label, or "".
func (r *Request) Label() string { return r.label }

// Tag returns the destination tag or memo, or "".
func (r *Request) Tag() string { return r.tag }

// RawSource returns the string the request was built from.
func (r *Request) RawSource() string { return r.rawSource }

// String returns the canonical URI for the request.
func (r *Request) String() string {
	return Encode(r)
}

// requestJSON is the wire form of a Request.
type requestJSON struct {
	Currency  string           `json:"currency"`
	Address   string           `json:"address"`
	Amount    *currency.Amount `json:"amount,omitempty"`
	Message   string           `json:"message,omitempty"`
	Label     string           `json:"label,omitempty"`
	Tag       string           `json:"tag,omitempty"`
	URI       string           `json:"uri"`
	RawSource string           `json:"raw_source,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r *Request) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestJSON{
		Currency:  r.currency.Code,
		Address:   r.toAddress,
		Amount:    r.amount,
		Message:   r.message,
		Label:     r.label,
		Tag:       r.tag,
		URI:       Encode(r),
		RawSource: r.rawSource,
	})
}
