package payid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/resolver"
)

const xrpPayIDDoc = `{
  "addresses": [
    {
      "paymentNetwork": "BTC",
      "environment": "MAINNET",
      "addressDetailsType": "CryptoAddressDetails",
      "addressDetails": {"address": "1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ"}
    },
    {
      "paymentNetwork": "XRPL",
      "environment": "TESTNET",
      "addressDetailsType": "CryptoAddressDetails",
      "addressDetails": {"address": "rHb9CJAWyB4rj91VRWn96DkukG4bwdtyTh"}
    },
    {
      "paymentNetwork": "XRPL",
      "environment": "MAINNET",
      "addressDetailsType": "CryptoAddressDetails",
      "addressDetails": {"address": "rAPERVgXZavGgiGv6xBgtiZurirW2yAmY", "tag": "184302"}
    }
  ],
  "payId": "pay$wietse.com"
}`

// newTestClient points a client at srv and returns a handle whose domain is the server host.
func newTestClient(t *testing.T, srv *httptest.Server) (*Client, resolver.Handle) {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	c := NewClient(&ClientOptions{
		Scheme:      "http",
		HTTPClient:  srv.Client(),
		RateLimiter: resolver.NewRateLimiter(0, 1),
	})
	h := resolver.Handle{Raw: "pay$" + u.Host, Kind: resolver.KindPayID, Local: "pay", Domain: u.Host}
	return c, h
}

func TestClient_Lookup_Success(t *testing.T) {
	t.Parallel()

	type seen struct{ accept, version, path string }
	requests := make(chan seen, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests <- seen{r.Header.Get("Accept"), r.Header.Get("PayID-Version"), r.URL.Path}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(xrpPayIDDoc))
	}))
	defer srv.Close()

	c, h := newTestClient(t, srv)

	res, err := c.Lookup(context.Background(), h, currency.Default().Get("XRP"))
	require.NoError(t, err)
	assert.Equal(t, "rAPERVgXZavGgiGv6xBgtiZurirW2yAmY", res.Address)
	assert.Equal(t, "184302", res.Tag)

	got := <-requests
	assert.Equal(t, "application/xrpl-mainnet+json", got.accept)
	assert.Equal(t, "1.0", got.version)
	assert.Equal(t, "/pay", got.path)
}

func TestClient_Lookup_BTC(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(xrpPayIDDoc))
	}))
	defer srv.Close()

	c, h := newTestClient(t, srv)

	res, err := c.Lookup(context.Background(), h, currency.Default().Get("BTC"))
	require.NoError(t, err)
	assert.Equal(t, "1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ", res.Address)
	assert.Empty(t, res.Tag)
}

func TestClient_Lookup_NumericTag(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"addresses":[{"paymentNetwork":"XRPL","environment":"MAINNET",` +
			`"addressDetails":{"address":"rAPERVgXZavGgiGv6xBgtiZurirW2yAmY","tag":42}}]}`))
	}))
	defer srv.Close()

	c, h := newTestClient(t, srv)

	res, err := c.Lookup(context.Background(), h, currency.Default().Get("XRP"))
	require.NoError(t, err)
	assert.Equal(t, "42", res.Tag)
}

func TestClient_Lookup_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		code     string
		expected error
	}{
		{"not found", http.StatusNotFound, `{"error":"Not Found"}`, "BTC", resolver.ErrNotFound},
		{"not acceptable", http.StatusNotAcceptable, ``, "BTC", resolver.ErrUnsupportedCurrency},
		{"unsupported media type", http.StatusUnsupportedMediaType, ``, "BTC", resolver.ErrUnsupportedCurrency},
		{"server error", http.StatusInternalServerError, `oops`, "BTC", resolver.ErrNetworkFailure},
		{"rate limited", http.StatusTooManyRequests, ``, "BTC", resolver.ErrNetworkFailure},
		{"invalid json", http.StatusOK, `{not json`, "BTC", resolver.ErrMalformedResponse},
		{"entry without address", http.StatusOK, `{"addresses":[{"paymentNetwork":"BTC","environment":"MAINNET","addressDetails":{}}]}`, "BTC", resolver.ErrMalformedResponse},
		{"no matching network", http.StatusOK, xrpPayIDDoc, "ETH", resolver.ErrUnsupportedCurrency},
		{"no addresses", http.StatusOK, `{"addresses":[]}`, "BTC", resolver.ErrUnsupportedCurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, h := newTestClient(t, srv)
			_, err := c.Lookup(context.Background(), h, currency.Default().Get(tt.code))
			require.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestClient_Lookup_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c, h := newTestClient(t, srv)
	srv.Close()

	_, err := c.Lookup(context.Background(), h, currency.Default().Get("BTC"))
	require.Error(t, err)
	require.ErrorIs(t, resolver.Normalize(err), resolver.ErrNetworkFailure)
}

func TestClient_Lookup_RejectsWrongInput(t *testing.T) {
	t.Parallel()

	c := NewClient(nil)
	reg := currency.Default()

	_, err := c.Lookup(context.Background(), resolver.Handle{Raw: "luke@stokes", Kind: resolver.KindFIO}, reg.Get("BTC"))
	require.ErrorIs(t, err, resolver.ErrUnsupportedCurrency)

	_, err = c.Lookup(context.Background(), resolver.Handle{Raw: "pay$wietse.com", Kind: resolver.KindPayID}, reg.Get("SOL"))
	require.ErrorIs(t, err, resolver.ErrUnsupportedCurrency)
}

func TestClient_URL(t *testing.T) {
	t.Parallel()

	c := NewClient(nil)
	h := resolver.Handle{Raw: "GiveDirectly$payid.charity", Kind: resolver.KindPayID, Local: "GiveDirectly", Domain: "payid.charity"}
	assert.Equal(t, "https://payid.charity/GiveDirectly", c.URL(h))
	assert.Equal(t, "application/btc-mainnet+json", c.AcceptHeader("BTC"))

	testnet := NewClient(&ClientOptions{Environment: "TESTNET"})
	assert.Equal(t, "application/xrpl-testnet+json", testnet.AcceptHeader("xrpl"))
}

func TestClient_ServiceIntegration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, h := newTestClient(t, srv)
	svc := resolver.NewService(resolver.WithPayID(c))

	_, err := svc.Resolve(context.Background(), h, currency.Default().Get("BTC"))
	require.ErrorIs(t, err, resolver.ErrNetworkFailure)
}
