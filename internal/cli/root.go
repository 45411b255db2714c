// Package cli implements the payreq command-line interface.
//
// This package uses global variables to manage CLI state, which is the standard
// pattern for Cobra-based CLI applications. The globals are initialized in
// PersistentPreRunE and cleaned up in PersistentPostRun.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level state
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/config"
	"github.com/mrz1836/payreq/internal/output"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

var (
	// Global flags
	homeDir      string
	outputFormat string
	verbose      bool
	quiet        bool

	// Global state initialized in PersistentPreRunE
	cfg       *config.Config
	logger    *config.Logger
	formatter *output.Formatter
	cmdCtx    *CommandContext
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "payreq",
	Short: "Parse, build and resolve cryptocurrency payment requests",
	Long: `payreq turns payment URIs, bare addresses and human-readable handles
(PayID, FIO) into validated payment requests for BTC, ETH, ERC-20 tokens,
XRP, XLM and SOL.

Example:
  payreq parse "bitcoin:12A1MyfXbW6RhdRAZEqofac5jCQQjwEPBu?amount=1.2"
  payreq encode --currency ETH --address 0x... --amount 0.5 --qr
  payreq resolve alice$example.com --currency XRP
  payreq scan "$(cat qr.txt)"`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initGlobals(cmd)
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		cleanup()
	},
}

// Execute runs the root command and reports any error on stderr.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		formatErr(err)
		return err
	}
	return nil
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	return payerr.ExitCode(err)
}

func formatErr(err error) {
	format := output.FormatText
	if formatter != nil {
		format = formatter.Format()
	}
	_ = output.FormatError(rootCmd.ErrOrStderr(), err, format)
}

// initGlobals loads configuration, then applies environment and flag
// overrides, and builds the logger and formatter.
func initGlobals(cmd *cobra.Command) error {
	home := homeDir
	if home == "" {
		home = os.Getenv(config.EnvHome)
	}
	if home == "" {
		home = config.DefaultHome()
	}

	var err error
	cfg, err = config.Load(config.Path(home))
	switch {
	case payerr.Is(err, payerr.ErrConfigNotFound):
		cfg = config.Defaults()
	case err != nil:
		return err
	}

	// Home is already resolved (flag, then PAYREQ_HOME); rebase before the
	// environment is applied so it cannot move the paths a second time.
	cfg.RebaseHome(home)
	if err := config.ApplyEnvironment(cfg); err != nil {
		return err
	}
	cfg.Home = home
	if verbose {
		cfg.Output.Verbose = true
		cfg.Logging.Level = "debug"
	}
	if outputFormat != "" && outputFormat != string(output.FormatAuto) {
		cfg.Output.DefaultFormat = outputFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = newLogger(cfg)

	w := cmd.OutOrStdout()
	formatter = output.NewFormatter(output.ParseFormat(cfg.Output.DefaultFormat), w).
		WithColor(output.ColorEnabled(cfg.Output.Color, w))

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}

	cmdCtx = NewCommandContext(cfg, logger, formatter, registry).
		WithMessenger(output.NewMessenger(cmd.ErrOrStderr(), quiet))
	return nil
}

// newLogger opens the configured log file. Logging never blocks a command:
// an unwritable file falls back to the null logger.
func newLogger(c *config.Config) *config.Logger {
	level := config.ParseLogLevel(c.Logging.Level)

	var (
		l   *config.Logger
		err error
	)
	if c.Logging.Format == "json" {
		l, err = config.NewStructuredLogger(level, c.LogPath())
	} else {
		l, err = config.NewLogger(level, c.LogPath())
	}
	if err != nil {
		return config.NullLogger()
	}
	return l
}

// cleanup releases resources.
func cleanup() {
	if cmdCtx != nil {
		cmdCtx.Close()
	}
	if logger != nil {
		_ = logger.Close()
	}
}

// Config returns the global configuration.
func Config() *config.Config {
	return cfg
}

// Logger returns the global logger.
func Logger() *config.Logger {
	return logger
}

// Formatter returns the global output formatter.
func Formatter() *output.Formatter {
	return formatter
}

// Context returns the global command context.
func Context() *CommandContext {
	return cmdCtx
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for flag registration
func init() {
	rootCmd.PersistentFlags().StringVar(&homeDir, "home", "", "payreq data directory (default: ~/.payreq)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "auto", "output format: text, json, auto")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress status messages")
}
