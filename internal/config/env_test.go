package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

func TestParseBool(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected bool
	}{
		{"1", true},
		{"true", true},
		{"YES", true},
		{"on", true},
		{"  true  ", true},
		{"0", false},
		{"false", false},
		{"no", false},
		{"", false},
		{"random", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, parseBool(tc.input))
		})
	}
}

func TestSanitizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"clean", "https://fio.greymass.com", "https://fio.greymass.com"},
		{"surrounding spaces", "  https://fio.greymass.com  ", "https://fio.greymass.com"},
		{"localhost", "http://localhost:8888", "http://localhost:8888"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, SanitizeURL(tc.input))
		})
	}
}

// Environment tests mutate process state and cannot run in parallel.

func TestApplyEnvironment(t *testing.T) {
	t.Setenv(EnvHome, "/tmp/payreq-home")
	t.Setenv(EnvFIOAPIURL, " https://fio.example.com ")
	t.Setenv(EnvPayIDScheme, "HTTP")
	t.Setenv(EnvTimeout, "30")
	t.Setenv(EnvCacheTTL, "0")
	t.Setenv(EnvOutputFormat, "JSON")
	t.Setenv(EnvVerbose, "yes")
	t.Setenv(EnvLogLevel, "DEBUG")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvNoColor, "")

	cfg := Defaults()
	require.NoError(t, ApplyEnvironment(cfg))

	assert.Equal(t, "/tmp/payreq-home", cfg.Home)
	assert.Equal(t, "https://fio.example.com", cfg.Resolver.FIOAPIURL)
	assert.Equal(t, "http", cfg.Resolver.PayIDScheme)
	assert.Equal(t, 30, cfg.Resolver.TimeoutSeconds)
	assert.Equal(t, 0, cfg.Resolver.CacheTTLSeconds)
	assert.Equal(t, "json", cfg.Output.DefaultFormat)
	assert.True(t, cfg.Output.Verbose)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "never", cfg.Output.Color)
	require.NoError(t, cfg.Validate())
}

func TestApplyEnvironment_Unset(t *testing.T) {
	t.Setenv(EnvHome, "")

	cfg := Defaults()
	require.NoError(t, ApplyEnvironment(cfg))
	assert.Equal(t, Defaults().Home, cfg.Home)
	assert.Equal(t, Defaults().Resolver.TimeoutSeconds, cfg.Resolver.TimeoutSeconds)
}

func TestApplyEnvironment_InvalidNumber(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")

	err := ApplyEnvironment(Defaults())
	require.ErrorIs(t, err, payerr.ErrConfigInvalid)
}

func TestApplyEnvironment_InvalidCacheTTLIgnored(t *testing.T) {
	t.Setenv(EnvCacheTTL, "-5")

	cfg := Defaults()
	require.NoError(t, ApplyEnvironment(cfg))
	assert.Equal(t, DefaultCacheTTLSeconds, cfg.Resolver.CacheTTLSeconds)
}
