package scan

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/resolver"
)

const (
	btcAddress = "1Hz96kJKF2HLPGY15JWLB5m9qGNxvt8tHJ"
	ethAddress = "0x2c4d5626b6559927350db12e50143e2e8b1b9951"
	xrpAddress = "rAPERVgXZavGgiGv6xBgtiZurirW2yAmY"

	wifUncompressed = "5HueCGU8rMjxEXxiPuD5BDku4MkFqeZyd4dZ1jvhTVqvbTLvyTJ"
	wifCompressed   = "KwdMAjGmerYanjeui5SHS7JkmpZvVipYvB2LJGU1ZxJwYvP98617"
	hexKey          = "0C28FCA386C7A227600B2FE50B7CAE11EC86D3BF1FBE471BE89827E19D72AA1D"
)

//nolint:gochecknoglobals // Test data
var deepLinks = []string{"payreq://", "https://payreq.app/link/"}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected Kind
		currency string
	}{
		{"bitcoin uri", "bitcoin:" + btcAddress + "?amount=0.1", KindPaymentRequest, "BTC"},
		{"bare bitcoin address", btcAddress, KindPaymentRequest, "BTC"},
		{"bare ethereum address", ethAddress, KindPaymentRequest, "ETH"},
		{"ripple uri with tag", "ripple:" + xrpAddress + "?dt=7", KindPaymentRequest, "XRP"},
		{"surrounding whitespace", "\n " + btcAddress + " \t", KindPaymentRequest, "BTC"},
		{"fio handle", "luke@stokes", KindResolvable, ""},
		{"payid handle", "pay$wietse.com", KindResolvable, ""},
		{"wif uncompressed", wifUncompressed, KindPrivateKey, ""},
		{"wif compressed", wifCompressed, KindPrivateKey, ""},
		{"hex key", hexKey, KindPrivateKey, ""},
		{"hex key with prefix", "0x" + hexKey, KindPrivateKey, ""},
		{"deep link", "payreq://request?id=1", KindDeepLink, ""},
		{"https deep link", "https://payreq.app/link/abc", KindDeepLink, ""},
		{"other https url", "https://example.com", KindInvalid, ""},
		{"unknown scheme", "litecoin:LM2WMpR1Rp6j3Sa59cMXMs1SPzj9eXpGc1", KindInvalid, ""},
		{"bad uri", "bitcoin:blah", KindInvalid, ""},
		{"empty", "", KindInvalid, ""},
		{"garbage", "notanaddress", KindInvalid, ""},
		{"zero hex key", "0000000000000000000000000000000000000000000000000000000000000000", KindInvalid, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := Classify(tt.content, Options{DeepLinkPrefixes: deepLinks})
			assert.Equal(t, tt.expected, res.Kind)
			if tt.currency != "" {
				require.NotNil(t, res.Request)
				assert.Equal(t, tt.currency, res.Request.Currency().Code)
			}
		})
	}
}

func TestClassify_Handle(t *testing.T) {
	t.Parallel()

	res := Classify("GiveDirectly$payid.charity", Options{})
	require.Equal(t, KindResolvable, res.Kind)
	assert.Equal(t, resolver.KindPayID, res.Handle.Kind)
	assert.Equal(t, "GiveDirectly", res.Handle.Local)
	assert.Equal(t, "payid.charity", res.Handle.Domain)
}

func TestClassify_CurrencyRestriction(t *testing.T) {
	t.Parallel()

	reg, err := currency.WithTokens(currency.Token{
		Code:     "USDC",
		Contract: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Decimals: 6,
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		content  string
		code     string
		expected Kind
	}{
		{"matching uri", "bitcoin:" + btcAddress, "BTC", KindPaymentRequest},
		{"matching bare address", btcAddress, "BTC", KindPaymentRequest},
		{"other currency", ethAddress, "BTC", KindInvalid},
		{"token sharing scheme", "ethereum:" + ethAddress + "?amount=1.5", "USDC", KindPaymentRequest},
		{"handle rejected", "luke@stokes", "BTC", KindInvalid},
		{"private key rejected", wifCompressed, "BTC", KindInvalid},
		{"deep link rejected", "payreq://x", "BTC", KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res := Classify(tt.content, Options{
				Registry:         reg,
				Currency:         reg.Get(tt.code),
				DeepLinkPrefixes: deepLinks,
			})
			assert.Equal(t, tt.expected, res.Kind)
			if tt.expected == KindPaymentRequest {
				assert.Equal(t, tt.code, res.Request.Currency().Code)
			}
		})
	}
}

func TestClassify_PrivateKeyOnly(t *testing.T) {
	t.Parallel()

	opts := Options{PrivateKeyOnly: true, DeepLinkPrefixes: deepLinks}
	assert.Equal(t, KindPrivateKey, Classify(wifUncompressed, opts).Kind)
	assert.Equal(t, KindPrivateKey, Classify(hexKey, opts).Kind)
	assert.Equal(t, KindInvalid, Classify(btcAddress, opts).Kind)
	assert.Equal(t, KindInvalid, Classify("luke@stokes", opts).Kind)
	assert.Equal(t, KindInvalid, Classify("payreq://x", opts).Kind)

	// Gift redemption links carry a key the wallet would sweep; they are not keys themselves.
	gift := "https://brd.com/x/gift/" + wifUncompressed
	assert.Equal(t, KindInvalid, Classify(gift, opts).Kind)
	assert.Equal(t, KindInvalid, Classify(gift, Options{}).Kind)
}

func TestIsPrivateKey(t *testing.T) {
	t.Parallel()

	assert.True(t, IsPrivateKey(wifUncompressed))
	assert.True(t, IsPrivateKey(wifCompressed))
	assert.True(t, IsPrivateKey(hexKey))
	assert.False(t, IsPrivateKey(btcAddress))
	assert.False(t, IsPrivateKey(hexKey[:62]))
	assert.False(t, IsPrivateKey("zz"+hexKey[2:]))
	assert.False(t, IsPrivateKey(""))
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Classify(wifCompressed, Options{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"private_key"}`, string(data))

	data, err = json.Marshal(Classify("luke@stokes", Options{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"resolvable","handle":{"raw":"luke@stokes","kind":"fio","local":"luke","domain":"stokes"}}`, string(data))
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "invalid", KindInvalid.String())
	assert.Equal(t, "payment_request", KindPaymentRequest.String())
	assert.Equal(t, "resolvable", KindResolvable.String())
	assert.Equal(t, "private_key", KindPrivateKey.String())
	assert.Equal(t, "deep_link", KindDeepLink.String())
	assert.Equal(t, "invalid", Kind(99).String())
}
