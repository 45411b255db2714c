// Package resolver detects human-readable payment handles (PayID, FIO) and
// resolves them to native addresses through pluggable network transports.
package resolver

import (
	"context"

	"github.com/mrz1836/payreq/internal/currency"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Kind identifies the naming system a handle belongs to.
type Kind int

// Handle kinds.
const (
	KindUnknown Kind = iota
	KindPayID
	KindFIO
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindPayID:
		return "payid"
	case KindFIO:
		return "fio"
	case KindUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unrecognized names decode to KindUnknown.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "payid":
		*k = KindPayID
	case "fio":
		*k = KindFIO
	default:
		*k = KindUnknown
	}
	return nil
}

// Handle is a detected human-readable payment handle.
type Handle struct {
	Raw    string `json:"raw"`
	Kind   Kind   `json:"kind"`
	Local  string `json:"local"`
	Domain string `json:"domain"`
}

// String returns the handle as written.
func (h Handle) String() string {
	return h.Raw
}

// Resolution is the outcome of a successful lookup.
type Resolution struct {
	Address string `json:"address"`
	Tag     string `json:"tag,omitempty"` // destination tag or memo; empty when absent
}

// Transport looks a handle up on its naming network. Implementations own
// their connections and rate limits.
type Transport interface {
	Lookup(ctx context.Context, h Handle, cur *currency.Currency) (Resolution, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, h Handle, cur *currency.Currency) (Resolution, error)

// Lookup implements Transport.
func (f TransportFunc) Lookup(ctx context.Context, h Handle, cur *currency.Currency) (Resolution, error) {
	return f(ctx, h, cur)
}

// Callback receives the single result of an asynchronous resolution.
type Callback func(Resolution, error)

// Logger is the logging capability the resolver needs.
type Logger interface {
	Debug(format string, args ...any)
	Error(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Error(string, ...any) {}

// Resolution failure kinds. Every error returned by Service carries exactly one of these codes.
var (
	// ErrNotFound indicates the handle does not exist or has no address for the currency.
	ErrNotFound = &payerr.PayError{
		Code:     "HANDLE_NOT_FOUND",
		Message:  "payment handle not found",
		ExitCode: payerr.ExitNotFound,
	}

	// ErrUnsupportedCurrency indicates the handle cannot be resolved for the requested currency.
	ErrUnsupportedCurrency = &payerr.PayError{
		Code:     "UNSUPPORTED_CURRENCY",
		Message:  "currency not supported for this handle",
		ExitCode: payerr.ExitInput,
	}

	// ErrNetworkFailure indicates the lookup could not be completed.
	ErrNetworkFailure = &payerr.PayError{
		Code:     "NETWORK_FAILURE",
		Message:  "handle resolution failed",
		ExitCode: payerr.ExitGeneral,
	}

	// ErrMalformedResponse indicates the remote answered with something unusable.
	ErrMalformedResponse = &payerr.PayError{
		Code:     "MALFORMED_RESPONSE",
		Message:  "malformed resolution response",
		ExitCode: payerr.ExitGeneral,
	}
)

// IsResolutionError reports whether err carries one of the four resolution failure kinds.
func IsResolutionError(err error) bool {
	return payerr.Is(err, ErrNotFound) ||
		payerr.Is(err, ErrUnsupportedCurrency) ||
		payerr.Is(err, ErrNetworkFailure) ||
		payerr.Is(err, ErrMalformedResponse)
}

// Normalize maps any error into one of the four resolution failure kinds.
// Errors that already carry a kind are returned unchanged; everything else
// becomes ErrNetworkFailure with the original error as its cause.
func Normalize(err error) error {
	if err == nil || IsResolutionError(err) {
		return err
	}
	return &payerr.PayError{
		Code:     ErrNetworkFailure.Code,
		Message:  ErrNetworkFailure.Message,
		Cause:    err,
		ExitCode: ErrNetworkFailure.ExitCode,
	}
}

// Unsupported returns ErrUnsupportedCurrency annotated with the handle and currency.
func Unsupported(h Handle, cur *currency.Currency, reason string) error {
	return payerr.WithDetails(ErrUnsupportedCurrency, map[string]string{
		"handle":   h.Raw,
		"currency": cur.String(),
		"reason":   reason,
	})
}
