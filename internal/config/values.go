package config

import (
	"slices"
	"strconv"
	"strings"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// setting reads and writes one dotted configuration key.
type setting struct {
	get func(*Config) string
	set func(*Config, string) error
}

func stringSetting(field func(*Config) *string) setting {
	return setting{
		get: func(c *Config) string { return *field(c) },
		set: func(c *Config, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func intSetting(key string, field func(*Config) *int) setting {
	return setting{
		get: func(c *Config) string { return strconv.Itoa(*field(c)) },
		set: func(c *Config, v string) error {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{"key": key, "value": v})
			}
			*field(c) = n
			return nil
		},
	}
}

//nolint:gochecknoglobals // Static key table
var settings = map[string]setting{
	"home":                       stringSetting(func(c *Config) *string { return &c.Home }),
	"resolver.fio_api_url":       stringSetting(func(c *Config) *string { return &c.Resolver.FIOAPIURL }),
	"resolver.payid_scheme":      stringSetting(func(c *Config) *string { return &c.Resolver.PayIDScheme }),
	"resolver.payid_environment": stringSetting(func(c *Config) *string { return &c.Resolver.PayIDEnvironment }),
	"resolver.timeout_seconds":   intSetting("resolver.timeout_seconds", func(c *Config) *int { return &c.Resolver.TimeoutSeconds }),
	"resolver.burst":             intSetting("resolver.burst", func(c *Config) *int { return &c.Resolver.Burst }),
	"resolver.cache_ttl_seconds": intSetting("resolver.cache_ttl_seconds", func(c *Config) *int { return &c.Resolver.CacheTTLSeconds }),
	"resolver.cache_file":        stringSetting(func(c *Config) *string { return &c.Resolver.CacheFile }),
	"resolver.rate_limit": {
		get: func(c *Config) string { return strconv.FormatFloat(c.Resolver.RateLimit, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{"key": "resolver.rate_limit", "value": v})
			}
			c.Resolver.RateLimit = f
			return nil
		},
	},
	"output.default_format": stringSetting(func(c *Config) *string { return &c.Output.DefaultFormat }),
	"output.color":          stringSetting(func(c *Config) *string { return &c.Output.Color }),
	"output.verbose": {
		get: func(c *Config) string { return strconv.FormatBool(c.Output.Verbose) },
		set: func(c *Config, v string) error {
			c.Output.Verbose = parseBool(v)
			return nil
		},
	},
	"logging.level":  stringSetting(func(c *Config) *string { return &c.Logging.Level }),
	"logging.file":   stringSetting(func(c *Config) *string { return &c.Logging.File }),
	"logging.format": stringSetting(func(c *Config) *string { return &c.Logging.Format }),
}

// Keys returns every settable configuration key, sorted.
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Get returns the value of a dotted key such as "resolver.fio_api_url".
func (c *Config) Get(key string) (string, error) {
	s, ok := settings[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return "", unknownKey(key)
	}
	return s.get(c), nil
}

// Set updates a dotted key and re-validates the whole configuration. On a
// validation failure the previous value is restored.
func (c *Config) Set(key, value string) error {
	s, ok := settings[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return unknownKey(key)
	}

	previous := s.get(c)
	if err := s.set(c, value); err != nil {
		return err
	}
	if err := c.Validate(); err != nil {
		_ = s.set(c, previous)
		return err
	}
	return nil
}

func unknownKey(key string) error {
	return payerr.WithSuggestion(
		payerr.WithDetails(payerr.ErrUnknownConfigKey, map[string]string{"key": key}),
		"Valid keys: "+strings.Join(Keys(), ", "),
	)
}
