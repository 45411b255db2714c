// Package config provides configuration management for payreq.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/fileutil"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

const (
	configFilePermissions = 0o600
	configDirPermissions  = 0o750
)

//nolint:gochecknoglobals // Validator instances are safe for concurrent use and cache struct metadata
var validate = validator.New(validator.WithRequiredStructEnabled())

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version" json:"version" validate:"gte=1"`
	Home     string         `yaml:"home" json:"home"`
	Resolver ResolverConfig `yaml:"resolver" json:"resolver"`
	Tokens   []TokenConfig  `yaml:"tokens" json:"tokens" validate:"dive"`
	Scan     ScanConfig     `yaml:"scan" json:"scan"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Logging  LoggingConfig  `yaml:"logging" json:"logging"`
}

// ResolverConfig defines PayID and FIO resolution settings.
type ResolverConfig struct {
	FIOAPIURL        string  `yaml:"fio_api_url" json:"fio_api_url" validate:"required,url"`
	PayIDScheme      string  `yaml:"payid_scheme" json:"payid_scheme" validate:"oneof=https http"`
	PayIDEnvironment string  `yaml:"payid_environment" json:"payid_environment" validate:"required"`
	TimeoutSeconds   int     `yaml:"timeout_seconds" json:"timeout_seconds" validate:"gte=1,lte=300"`
	RateLimit        float64 `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`
	Burst            int     `yaml:"burst" json:"burst" validate:"gte=1"`
	CacheTTLSeconds  int     `yaml:"cache_ttl_seconds" json:"cache_ttl_seconds" validate:"gte=0"`
	CacheFile        string  `yaml:"cache_file" json:"cache_file"`
}

// TokenConfig defines an extra ERC-20 currency.
type TokenConfig struct {
	Symbol   string `yaml:"symbol" json:"symbol" validate:"required,uppercase,max=12"`
	Name     string `yaml:"name,omitempty" json:"name,omitempty"`
	Address  string `yaml:"address" json:"address" validate:"required,eth_addr"`
	Decimals int    `yaml:"decimals" json:"decimals" validate:"gte=0,lte=36"`
}

// ScanConfig defines content classification settings.
type ScanConfig struct {
	DeepLinkPrefixes []string `yaml:"deep_link_prefixes" json:"deep_link_prefixes" validate:"dive,required"`
}

// OutputConfig defines output formatting settings.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format" validate:"oneof=auto text json"`
	Color         string `yaml:"color" json:"color" validate:"oneof=auto always never"`
	Verbose       bool   `yaml:"verbose" json:"verbose"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level" validate:"oneof=off none error debug"`
	File   string `yaml:"file" json:"file"`
	Format string `yaml:"format" json:"format" validate:"oneof=text json"`
}

// Load reads configuration from the specified file on top of Defaults.
// A missing file yields ErrConfigNotFound.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, payerr.WithDetails(payerr.ErrConfigNotFound, map[string]string{"path": path})
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"path":  path,
			"error": err.Error(),
		})
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	if err := fileutil.EnsureDir(path, configDirPermissions); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return fileutil.WriteAtomic(path, data, configFilePermissions)
}

// Validate checks every field constraint and that the token list builds a
// valid currency registry.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			return payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
				"field": first.Namespace(),
				"rule":  first.Tag(),
				"value": fmt.Sprint(first.Value()),
			})
		}
		return payerr.Wrap(err, "validating config")
	}

	if err := ValidateAPIURL(c.Resolver.FIOAPIURL); err != nil {
		return err
	}

	if _, err := c.Registry(); err != nil {
		return err
	}
	return nil
}

// ValidateAPIURL accepts https URLs, and plain http only for loopback hosts.
func ValidateAPIURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"url":    raw,
			"reason": "not an absolute URL",
		})
	}

	switch u.Scheme {
	case "https":
		return nil
	case "http":
		if isLoopback(u.Hostname()) {
			return nil
		}
	}

	return payerr.WithSuggestion(
		payerr.WithDetails(payerr.ErrConfigInvalid, map[string]string{
			"url":    raw,
			"reason": "scheme must be https (http only for localhost)",
		}),
		"Use an https:// endpoint",
	)
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Registry builds the currency registry: the built-in currencies plus the configured tokens.
func (c *Config) Registry() (*currency.Registry, error) {
	if len(c.Tokens) == 0 {
		return currency.Default(), nil
	}

	tokens := make([]currency.Token, 0, len(c.Tokens))
	for _, t := range c.Tokens {
		tokens = append(tokens, currency.Token{
			Code:     t.Symbol,
			Name:     t.Name,
			Contract: t.Address,
			Decimals: t.Decimals,
		})
	}
	return currency.WithTokens(tokens...)
}

// Timeout returns the per-lookup resolver timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Resolver.TimeoutSeconds) * time.Second
}

// CacheTTL returns the resolution cache TTL. Zero disables the cache.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Resolver.CacheTTLSeconds) * time.Second
}

// CachePath returns the expanded cache file path, or "" when persistence is off.
func (c *Config) CachePath() string {
	if c.Resolver.CacheFile == "" {
		return ""
	}
	return ExpandPath(c.Resolver.CacheFile)
}

// LogPath returns the expanded log file path.
func (c *Config) LogPath() string {
	return ExpandPath(c.Logging.File)
}

// RebaseHome moves the home directory to home. Log and cache paths that still
// point inside the old home follow it; custom paths are left alone.
func (c *Config) RebaseHome(home string) {
	old := strings.TrimSuffix(c.Home, "/") + "/"
	c.Home = home
	if home == "" || old == home+"/" {
		return
	}
	if strings.HasPrefix(c.Logging.File, old) {
		c.Logging.File = filepath.Join(home, strings.TrimPrefix(c.Logging.File, old))
	}
	if strings.HasPrefix(c.Resolver.CacheFile, old) {
		c.Resolver.CacheFile = filepath.Join(home, strings.TrimPrefix(c.Resolver.CacheFile, old))
	}
}

// Path returns the config file path within home.
func Path(home string) string {
	return filepath.Join(ExpandPath(home), "config.yaml")
}

// ExpandPath replaces a leading "~/" with the user's home directory.
func ExpandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// DefaultHome returns the default payreq home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".payreq"
	}
	return filepath.Join(home, ".payreq")
}
