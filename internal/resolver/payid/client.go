// Package payid resolves PayID handles (local$domain) over HTTPS.
package payid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/resolver"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

const (
	// Version is the PayID protocol version sent with every request.
	Version = "1.0"

	// DefaultEnvironment is the ledger environment requested.
	DefaultEnvironment = "mainnet"

	// DefaultScheme is the URL scheme of PayID servers.
	DefaultScheme = "https"
)

//nolint:gochecknoglobals // Validator caches struct metadata and is safe for concurrent use
var validate = validator.New(validator.WithRequiredStructEnabled())

// response is the PayID address document.
type response struct {
	Addresses []addressEntry `json:"addresses"`
	PayID     string         `json:"payId"`
}

type addressEntry struct {
	PaymentNetwork     string         `json:"paymentNetwork" validate:"required"`
	Environment        string         `json:"environment"`
	AddressDetailsType string         `json:"addressDetailsType"`
	AddressDetails     addressDetails `json:"addressDetails"`
}

type addressDetails struct {
	Address string     `json:"address" validate:"required"`
	Tag     flexString `json:"tag"`
}

// flexString accepts a JSON string or number; some servers send numeric tags.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// Client is a PayID resolver transport.
type Client struct {
	scheme      string
	environment string
	httpClient  *http.Client
	rateLimiter *resolver.RateLimiter
}

// ClientOptions configures the PayID client.
type ClientOptions struct {
	// Scheme overrides the URL scheme (useful for testing against plain HTTP).
	Scheme string
	// Environment overrides the requested environment (default "mainnet").
	Environment string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter overrides the default per-domain rate limiter.
	RateLimiter *resolver.RateLimiter
}

// NewClient creates a PayID client.
func NewClient(opts *ClientOptions) *Client {
	c := &Client{
		scheme:      DefaultScheme,
		environment: DefaultEnvironment,
		httpClient:  resolver.NewHTTPClient(resolver.DefaultHTTPTimeout),
		rateLimiter: resolver.DefaultRateLimiter(),
	}

	if opts != nil {
		if opts.Scheme != "" {
			c.scheme = opts.Scheme
		}
		if opts.Environment != "" {
			c.environment = strings.ToLower(opts.Environment)
		}
		if opts.HTTPClient != nil {
			c.httpClient = opts.HTTPClient
		}
		if opts.RateLimiter != nil {
			c.rateLimiter = opts.RateLimiter
		}
	}

	return c
}

// URL returns the lookup URL for a handle: <scheme>://<domain>/<local>.
func (c *Client) URL(h resolver.Handle) string {
	u := url.URL{
		Scheme: c.scheme,
		Host:   h.Domain,
		Path:   "/" + h.Local,
	}
	return u.String()
}

// AcceptHeader returns the media type requesting addresses on network.
func (c *Client) AcceptHeader(network string) string {
	return fmt.Sprintf("application/%s-%s+json", strings.ToLower(network), c.environment)
}

// Lookup implements resolver.Transport.
func (c *Client) Lookup(ctx context.Context, h resolver.Handle, cur *currency.Currency) (resolver.Resolution, error) {
	if h.Kind != resolver.KindPayID {
		return resolver.Resolution{}, resolver.Unsupported(h, cur, "not a PayID handle")
	}
	if !cur.SupportsPayID() {
		return resolver.Resolution{}, resolver.Unsupported(h, cur, "currency has no PayID network")
	}

	if err := c.rateLimiter.Wait(ctx, h.Domain); err != nil {
		return resolver.Resolution{}, fmt.Errorf("rate limiter: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL(h), nil)
	if err != nil {
		return resolver.Resolution{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Accept", c.AcceptHeader(cur.PayIDNetwork))
	httpReq.Header.Set("PayID-Version", Version)
	httpReq.Header.Set("User-Agent", resolver.UserAgent)

	resp, err := c.httpClient.Do(httpReq) //nolint:gosec // G107: host comes from a detected handle
	if err != nil {
		return resolver.Resolution{}, fmt.Errorf("sending request: %w", err)
	}

	body, err := resolver.ReadBody(resp)
	if err != nil {
		return resolver.Resolution{}, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return c.parse(body, h, cur)
	case http.StatusNotFound:
		return resolver.Resolution{}, payerr.WithDetails(resolver.ErrNotFound, map[string]string{
			"handle": h.Raw,
		})
	case http.StatusNotAcceptable, http.StatusUnsupportedMediaType:
		return resolver.Resolution{}, resolver.Unsupported(h, cur, "server has no "+cur.PayIDNetwork+" address")
	default:
		return resolver.Resolution{}, payerr.WithDetails(resolver.ErrNetworkFailure, map[string]string{
			"handle": h.Raw,
			"status": strconv.Itoa(resp.StatusCode),
			"body":   resolver.TruncateBody(string(body), 256),
		})
	}
}

func (c *Client) parse(body []byte, h resolver.Handle, cur *currency.Currency) (resolver.Resolution, error) {
	var doc response
	if err := json.Unmarshal(body, &doc); err != nil {
		return resolver.Resolution{}, malformed(h, err.Error())
	}

	entry, ok := c.match(doc.Addresses, cur.PayIDNetwork)
	if !ok {
		return resolver.Resolution{}, resolver.Unsupported(h, cur, "no matching address entry")
	}

	if err := validate.Struct(entry); err != nil {
		return resolver.Resolution{}, malformed(h, err.Error())
	}

	return resolver.Resolution{
		Address: entry.AddressDetails.Address,
		Tag:     string(entry.AddressDetails.Tag),
	}, nil
}

// match picks the first entry for network in the requested environment.
// Entries without an environment are accepted.
func (c *Client) match(entries []addressEntry, network string) (addressEntry, bool) {
	for _, e := range entries {
		if !strings.EqualFold(e.PaymentNetwork, network) {
			continue
		}
		if e.Environment != "" && !strings.EqualFold(e.Environment, c.environment) {
			continue
		}
		return e, true
	}
	return addressEntry{}, false
}

func malformed(h resolver.Handle, reason string) error {
	return payerr.WithDetails(resolver.ErrMalformedResponse, map[string]string{
		"handle": h.Raw,
		"reason": reason,
	})
}
