// Package fio resolves FIO handles (local@domain) through a FIO API node.
package fio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/resolver"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

const (
	// DefaultAPIURL is the public FIO API node used when none is configured.
	DefaultAPIURL = "https://fio.greymass.com"

	// pubAddressPath is the chain endpoint mapping a FIO handle to a public address.
	pubAddressPath = "/v1/chain/get_pub_address"

	// endpointKey is the rate limiter key for the API node.
	endpointKey = "fio"
)

// pubAddressRequest is the body of get_pub_address.
type pubAddressRequest struct {
	FIOAddress string `json:"fio_address"`
	ChainCode  string `json:"chain_code"`
	TokenCode  string `json:"token_code"`
}

// pubAddressResponse is the success body of get_pub_address.
type pubAddressResponse struct {
	PublicAddress string `json:"public_address"`
}

// apiError is the error body returned by FIO nodes.
type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Fields  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
		Error string `json:"error"`
	} `json:"fields"`
}

// Client is a FIO resolver transport.
type Client struct {
	apiURL      string
	httpClient  *http.Client
	rateLimiter *resolver.RateLimiter
}

// ClientOptions configures the FIO client.
type ClientOptions struct {
	// APIURL overrides the FIO API node (useful for testing).
	APIURL string
	// HTTPClient overrides the default HTTP client.
	HTTPClient *http.Client
	// RateLimiter overrides the default rate limiter.
	RateLimiter *resolver.RateLimiter
}

// NewClient creates a FIO client.
func NewClient(opts *ClientOptions) *Client {
	c := &Client{
		apiURL:      DefaultAPIURL,
		httpClient:  resolver.NewHTTPClient(resolver.DefaultHTTPTimeout),
		rateLimiter: resolver.DefaultRateLimiter(),
	}

	if opts != nil {
		if opts.APIURL != "" {
			c.apiURL = strings.TrimRight(opts.APIURL, "/")
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

// Lookup implements resolver.Transport.
func (c *Client) Lookup(ctx context.Context, h resolver.Handle, cur *currency.Currency) (resolver.Resolution, error) {
	if h.Kind != resolver.KindFIO {
		return resolver.Resolution{}, resolver.Unsupported(h, cur, "not a FIO handle")
	}
	if !cur.SupportsFIO() {
		return resolver.Resolution{}, resolver.Unsupported(h, cur, "currency has no FIO chain code")
	}

	if err := c.rateLimiter.Wait(ctx, endpointKey); err != nil {
		return resolver.Resolution{}, fmt.Errorf("rate limiter: %w", err)
	}

	payload, err := json.Marshal(pubAddressRequest{
		FIOAddress: h.Raw,
		ChainCode:  cur.FIOChainCode,
		TokenCode:  cur.FIOTokenCode,
	})
	if err != nil {
		return resolver.Resolution{}, fmt.Errorf("encoding request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+pubAddressPath, bytes.NewReader(payload))
	if err != nil {
		return resolver.Resolution{}, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", resolver.UserAgent)

	resp, err := c.httpClient.Do(httpReq) //nolint:gosec // G107: URL is from validated config
	if err != nil {
		return resolver.Resolution{}, fmt.Errorf("sending request: %w", err)
	}

	body, err := resolver.ReadBody(resp)
	if err != nil {
		return resolver.Resolution{}, err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return parse(body, h)
	case resp.StatusCode == http.StatusNotFound || (resp.StatusCode == http.StatusBadRequest && isNotFound(body)):
		return resolver.Resolution{}, payerr.WithDetails(resolver.ErrNotFound, map[string]string{
			"handle":   h.Raw,
			"currency": cur.Code,
		})
	default:
		return resolver.Resolution{}, payerr.WithDetails(resolver.ErrNetworkFailure, map[string]string{
			"handle": h.Raw,
			"status": strconv.Itoa(resp.StatusCode),
			"body":   resolver.TruncateBody(string(body), 256),
		})
	}
}

func parse(body []byte, h resolver.Handle) (resolver.Resolution, error) {
	var out pubAddressResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return resolver.Resolution{}, payerr.WithDetails(resolver.ErrMalformedResponse, map[string]string{
			"handle": h.Raw,
			"reason": err.Error(),
		})
	}

	address, tag := SplitPublicAddress(out.PublicAddress)
	if address == "" {
		return resolver.Resolution{}, payerr.WithDetails(resolver.ErrMalformedResponse, map[string]string{
			"handle": h.Raw,
			"reason": "empty public_address",
		})
	}
	return resolver.Resolution{Address: address, Tag: tag}, nil
}

// SplitPublicAddress splits a FIO public address of the form
// "<address>?dt=<tag>" or "<address>?memo=<memo>" into address and tag.
func SplitPublicAddress(public string) (address, tag string) {
	address, query, found := strings.Cut(strings.TrimSpace(public), "?")
	if !found {
		return address, ""
	}

	for _, pair := range strings.Split(query, "&") {
		key, value, _ := strings.Cut(pair, "=")
		switch key {
		case "dt", "memo", "tag":
			if tag == "" {
				tag = value
			}
		}
	}
	return address, tag
}

// isNotFound reports whether a 400 body describes a missing handle or address.
func isNotFound(body []byte) bool {
	var e apiError
	if err := json.Unmarshal(body, &e); err != nil {
		return false
	}
	if strings.Contains(strings.ToLower(e.Message), "not found") {
		return true
	}
	for _, f := range e.Fields {
		if strings.Contains(strings.ToLower(f.Error), "not found") ||
			strings.Contains(strings.ToLower(f.Error), "not registered") {
			return true
		}
	}
	return false
}
