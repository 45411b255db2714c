package config

import "github.com/mrz1836/payreq/internal/resolver/fio"

// DefaultCacheTTLSeconds is how long resolved handles are reused.
const DefaultCacheTTLSeconds = 600

// DefaultDeepLinkPrefixes are the prefixes the scanner treats as app deep links.
//
//nolint:gochecknoglobals // Configuration default, same pattern as the other defaults
var DefaultDeepLinkPrefixes = []string{
	"payreq://",
	"https://payreq.app/link/",
}

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.payreq",
		Resolver: ResolverConfig{
			FIOAPIURL:        fio.DefaultAPIURL,
			PayIDScheme:      "https",
			PayIDEnvironment: "mainnet",
			TimeoutSeconds:   15,
			RateLimit:        5,
			Burst:            10,
			CacheTTLSeconds:  DefaultCacheTTLSeconds,
			CacheFile:        "~/.payreq/cache/resolutions.json",
		},
		Tokens: []TokenConfig{
			{
				Symbol:   "USDC",
				Name:     "USD Coin",
				Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
				Decimals: 6,
			},
		},
		Scan: ScanConfig{
			DeepLinkPrefixes: append([]string(nil), DefaultDeepLinkPrefixes...),
		},
		Output: OutputConfig{
			DefaultFormat: "auto",
			Color:         "auto",
			Verbose:       false,
		},
		Logging: LoggingConfig{
			Level:  "error",
			File:   "~/.payreq/payreq.log",
			Format: "text",
		},
	}
}
