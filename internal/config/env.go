package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"github.com/mrz1836/go-sanitize"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// Environment variable names.
const (
	EnvHome         = "PAYREQ_HOME"
	EnvFIOAPIURL    = "PAYREQ_FIO_API_URL"
	EnvPayIDScheme  = "PAYREQ_PAYID_SCHEME"
	EnvTimeout      = "PAYREQ_TIMEOUT"
	EnvCacheTTL     = "PAYREQ_CACHE_TTL"
	EnvOutputFormat = "PAYREQ_OUTPUT_FORMAT"
	EnvVerbose      = "PAYREQ_VERBOSE"
	EnvLogLevel     = "PAYREQ_LOG_LEVEL"
	EnvLogFormat    = "PAYREQ_LOG_FORMAT"
	EnvNoColor      = "NO_COLOR"
)

// envOverrides mirrors the PAYREQ_* variables. Empty values leave the
// configuration untouched. Keys are spelled out in full because envconfig
// falls back to the unprefixed tag (HOME, TIMEOUT) when a prefix is used.
type envOverrides struct {
	Home         string `envconfig:"PAYREQ_HOME"`
	FIOAPIURL    string `envconfig:"PAYREQ_FIO_API_URL"`
	PayIDScheme  string `envconfig:"PAYREQ_PAYID_SCHEME"`
	Timeout      int    `envconfig:"PAYREQ_TIMEOUT"`
	CacheTTL     string `envconfig:"PAYREQ_CACHE_TTL"`
	OutputFormat string `envconfig:"PAYREQ_OUTPUT_FORMAT"`
	Verbose      string `envconfig:"PAYREQ_VERBOSE"`
	LogLevel     string `envconfig:"PAYREQ_LOG_LEVEL"`
	LogFormat    string `envconfig:"PAYREQ_LOG_FORMAT"`
}

// ApplyEnvironment applies environment variable overrides to the configuration.
// A malformed numeric variable yields ErrConfigInvalid.
func ApplyEnvironment(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"source": "environment",
			"error":  err.Error(),
		})
	}

	if env.Home != "" {
		cfg.Home = env.Home
	}
	if env.FIOAPIURL != "" {
		cfg.Resolver.FIOAPIURL = SanitizeURL(env.FIOAPIURL)
	}
	if env.PayIDScheme != "" {
		cfg.Resolver.PayIDScheme = strings.ToLower(env.PayIDScheme)
	}
	if env.Timeout > 0 {
		cfg.Resolver.TimeoutSeconds = env.Timeout
	}
	if env.CacheTTL != "" {
		if ttl, err := strconv.Atoi(env.CacheTTL); err == nil && ttl >= 0 {
			cfg.Resolver.CacheTTLSeconds = ttl
		}
	}
	if env.OutputFormat != "" {
		cfg.Output.DefaultFormat = strings.ToLower(env.OutputFormat)
	}
	if env.Verbose != "" {
		cfg.Output.Verbose = parseBool(env.Verbose)
	}
	if env.LogLevel != "" {
		cfg.Logging.Level = strings.ToLower(env.LogLevel)
	}
	if env.LogFormat != "" {
		cfg.Logging.Format = strings.ToLower(env.LogFormat)
	}

	// NO_COLOR disables colored output
	if _, ok := os.LookupEnv(EnvNoColor); ok {
		cfg.Output.Color = "never"
	}

	return nil
}

// parseBool parses a boolean string value.
func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "1" || s == "true" || s == "yes" || s == "on" {
		return true
	}
	b, _ := strconv.ParseBool(s)
	return b
}

// SanitizeURL cleans a URL string by removing invalid characters and trimming whitespace.
// This is useful for cleaning user-provided API URLs that may contain copy-paste artifacts.
func SanitizeURL(url string) string {
	return sanitize.URL(strings.TrimSpace(url))
}
