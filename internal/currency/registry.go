package currency

import (
	"fmt"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// MaxSuggestDistance is the largest edit distance Suggest will accept.
const MaxSuggestDistance = 2

//nolint:gochecknoglobals // Validator caches struct metadata and is safe for concurrent use
var validate = validator.New(validator.WithRequiredStructEnabled())

// Registry is the read-only set of currencies known to the process.
// All methods are safe for concurrent use.
type Registry struct {
	ordered []*Currency
	byCode  map[string]*Currency
}

// NewRegistry validates the given table and builds a registry from it.
// Natives should come first: address matching returns the first hit in
// registration order.
func NewRegistry(currencies ...Currency) (*Registry, error) {
	if len(currencies) == 0 {
		return nil, payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"reason": "currency table is empty",
		})
	}

	r := &Registry{
		ordered: make([]*Currency, 0, len(currencies)),
		byCode:  make(map[string]*Currency, len(currencies)),
	}

	for i := range currencies {
		c := currencies[i]
		if err := validateCurrency(&c); err != nil {
			return nil, err
		}
		if _, dup := r.byCode[c.Code]; dup {
			return nil, payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
				"currency": c.Code,
				"reason":   "duplicate currency code",
			})
		}
		r.byCode[c.Code] = &c
		r.ordered = append(r.ordered, &c)
	}

	return r, nil
}

func validateCurrency(c *Currency) error {
	if err := validate.Struct(c); err != nil {
		return payerr.WithDetails(payerr.Wrap(payerr.ErrConfigInvalid, "currency %q", c.Code), map[string]string{
			"currency": c.Code,
			"reason":   err.Error(),
		})
	}
	if c.Validator == nil {
		return payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"currency": c.Code,
			"reason":   "no address validator",
		})
	}
	return nil
}

//nolint:gochecknoglobals // Lazily built default registry
var defaultRegistry = sync.OnceValue(func() *Registry {
	r, err := NewRegistry(Defaults()...)
	if err != nil {
		panic(fmt.Sprintf("currency: invalid built-in table: %v", err))
	}
	return r
})

// Default returns the registry built from the built-in table.
func Default() *Registry {
	return defaultRegistry()
}

// WithTokens returns the built-in table extended with the given tokens.
func WithTokens(tokens ...Token) (*Registry, error) {
	table := Defaults()
	for _, t := range tokens {
		if err := validate.Struct(t); err != nil {
			return nil, payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
				"token":  t.Code,
				"reason": err.Error(),
			})
		}
		table = append(table, NewToken(t))
	}
	return NewRegistry(table...)
}

// Lookup finds a currency by code, case-insensitively.
func (r *Registry) Lookup(code string) (*Currency, bool) {
	c, ok := r.byCode[strings.ToUpper(strings.TrimSpace(code))]
	return c, ok
}

// Get returns the currency for code or nil.
func (r *Registry) Get(code string) *Currency {
	c, _ := r.Lookup(code)
	return c
}

// All returns every currency in registration order.
func (r *Registry) All() []*Currency {
	out := make([]*Currency, len(r.ordered))
	copy(out, r.ordered)
	return out
}

// Codes returns every currency code in registration order.
func (r *Registry) Codes() []string {
	codes := make([]string, len(r.ordered))
	for i, c := range r.ordered {
		codes[i] = c.Code
	}
	return codes
}

// ByScheme returns the currencies that use the given URI scheme, natives first.
func (r *Registry) ByScheme(scheme string) []*Currency {
	var out []*Currency
	for _, c := range r.ordered {
		if c.URIScheme == scheme && c.Native {
			out = append(out, c)
		}
	}
	for _, c := range r.ordered {
		if c.URIScheme == scheme && !c.Native {
			out = append(out, c)
		}
	}
	return out
}

// MatchAddress returns the first registered currency whose validator accepts s.
func (r *Registry) MatchAddress(s string) (*Currency, bool) {
	for _, c := range r.ordered {
		if IsValidAddress(s, c) {
			return c, true
		}
	}
	return nil, false
}

// IsKnownAddress reports whether s is a valid address of any registered currency.
func (r *Registry) IsKnownAddress(s string) bool {
	_, ok := r.MatchAddress(s)
	return ok
}

// Suggest returns the closest registered code to an unknown one, or "" when
// nothing is within MaxSuggestDistance.
func (r *Registry) Suggest(code string) string {
	input := strings.ToUpper(strings.TrimSpace(code))
	if input == "" {
		return ""
	}

	minDist := MaxSuggestDistance + 1
	var suggestion string

	for _, c := range r.ordered {
		dist := levenshtein.ComputeDistance(input, c.Code)
		if dist == 0 {
			return c.Code
		}
		if dist < minDist {
			minDist = dist
			suggestion = c.Code
		}
	}

	if minDist <= MaxSuggestDistance {
		return suggestion
	}
	return ""
}

// Resolve looks up code and returns an UNKNOWN_CURRENCY error with a
// suggestion when it is not registered.
func (r *Registry) Resolve(code string) (*Currency, error) {
	if c, ok := r.Lookup(code); ok {
		return c, nil
	}

	err := payerr.WithDetails(payerr.ErrUnknownCurrency, map[string]string{
		"currency": code,
	})
	if s := r.Suggest(code); s != "" {
		return nil, payerr.WithSuggestion(err, fmt.Sprintf("Did you mean %s?", s))
	}
	return nil, payerr.WithSuggestion(err, "Run 'payreq currencies' to list supported codes")
}
