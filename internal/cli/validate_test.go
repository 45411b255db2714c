package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

func TestValidate_AllCurrencies(t *testing.T) {
	stdout, err := executeCommand(t, "validate", strings.ToLower(ethAddress))
	require.NoError(t, err)

	m := decodeJSON(t, stdout)
	assert.Equal(t, true, m["valid"])
	assert.Contains(t, m["currencies"], "ETH")
	assert.Contains(t, m["currencies"], "USDC")
	assert.NotContains(t, m["currencies"], "BTC")
	assert.Equal(t, ethAddress, m["checksum_address"])
}

func TestValidate_SingleCurrency(t *testing.T) {
	stdout, err := executeCommand(t, "-o", "text", "validate", btcAddress, "--currency", "BTC")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Valid:")
	assert.Contains(t, stdout, "BTC")
	assert.NotContains(t, stdout, "Checksum")
}

func TestValidate_StrictChecksum(t *testing.T) {
	badCase := ethAddress[:len(ethAddress)-1] + "D"

	_, err := executeCommand(t, "validate", badCase, "-c", "ETH")
	require.NoError(t, err, "casing is not enforced by default")

	_, err = executeCommand(t, "validate", badCase, "-c", "ETH", "--strict-checksum")
	require.Error(t, err)
	assert.True(t, payerr.Is(err, payerr.ErrInvalidChecksum))

	_, err = executeCommand(t, "validate", ethAddress, "-c", "ETH", "--strict-checksum")
	require.NoError(t, err)

	_, err = executeCommand(t, "validate", strings.ToLower(ethAddress), "-c", "ETH", "--strict-checksum")
	require.NoError(t, err, "all-lowercase addresses carry no checksum")
}

func TestValidate_Invalid(t *testing.T) {
	_, err := executeCommand(t, "validate", "notanaddress")
	require.Error(t, err)
	assert.True(t, payerr.Is(err, payerr.ErrInvalidAddress))

	_, err = executeCommand(t, "validate", btcAddress, "-c", "XRP")
	require.Error(t, err)
	assert.True(t, payerr.Is(err, payerr.ErrInvalidAddress))
	assert.Equal(t, payerr.ExitInput, ExitCode(err))
}

func TestValidate_Stdin(t *testing.T) {
	stdout, _, err := runCLI(t, t.TempDir(), xrpAddress+"\n", "validate", "-")
	require.NoError(t, err)
	assert.Equal(t, []any{"XRP"}, decodeJSON(t, stdout)["currencies"])
}
