package cli

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/payreq/internal/config"
	"github.com/mrz1836/payreq/internal/output"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// configCmd is the parent command for configuration operations.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long:  `View and modify payreq configuration settings.`,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Long: `Create a default configuration file at <home>/config.yaml.

An existing file is kept unless --force is given.

Example:
  payreq config init
  payreq config init --force`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long: `Display the configuration in effect: the config file merged with
defaults, PAYREQ_* environment variables and command-line flags.

Example:
  payreq config show
  payreq config show -o json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the configuration file path",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Get a configuration value",
	Long: `Print one effective configuration value by its dotted key.

Examples:
  payreq config get resolver.fio_api_url
  payreq config get logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigGet,
	ValidArgsFunction: func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return config.Keys(), cobra.ShellCompDirectiveNoFileComp
	},
}

//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Update one value in the configuration file. The whole configuration is
validated before it is written; environment overrides are not persisted.

Examples:
  payreq config set resolver.timeout_seconds 30
  payreq config set output.default_format json
  payreq config set logging.level debug`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	enrichParentLong(configCmd)

	configInitCmd.Flags().Bool("force", false, "overwrite an existing configuration file")
}

// configValue is the JSON form of config get and set.
type configValue struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Path  string `json:"path,omitempty"`
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	force, _ := cmd.Flags().GetBool("force")
	path := config.Path(cfg.Home)

	if _, err := os.Stat(path); err == nil && !force {
		return payerr.WithSuggestion(
			payerr.WithDetails(payerr.ErrGeneral, map[string]string{"path": path, "reason": "configuration already exists"}),
			"Use --force to overwrite it",
		)
	}

	defaults := config.Defaults()
	defaults.RebaseHome(cfg.Home)
	if err := config.Save(defaults, path); err != nil {
		return err
	}
	cmdCtx.Logger.Debug("config written path=%s", path)

	return output.FormatSuccess(formatter.Writer(), "Configuration initialized at "+path, formatter.Format())
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	if formatter.IsJSON() {
		return formatter.Print(cfg)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	out(formatter.Writer(), "# %s\n%s", config.Path(cfg.Home), data)
	return nil
}

func runConfigPath(_ *cobra.Command, _ []string) error {
	path := config.Path(cfg.Home)
	if formatter.IsJSON() {
		return formatter.Print(map[string]string{"path": path})
	}
	outln(formatter.Writer(), path)
	return nil
}

func runConfigGet(_ *cobra.Command, args []string) error {
	value, err := cfg.Get(args[0])
	if err != nil {
		return err
	}
	if formatter.IsJSON() {
		return formatter.Print(configValue{Key: args[0], Value: value})
	}
	outln(formatter.Writer(), value)
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]
	path := config.Path(cfg.Home)

	// Edit the file's own content so env and flag overrides stay out of it.
	fileCfg, err := config.Load(path)
	switch {
	case payerr.Is(err, payerr.ErrConfigNotFound):
		fileCfg = config.Defaults()
		fileCfg.RebaseHome(cfg.Home)
	case err != nil:
		return err
	}

	if err := fileCfg.Set(key, value); err != nil {
		return err
	}
	if err := config.Save(fileCfg, path); err != nil {
		return err
	}

	stored, _ := fileCfg.Get(key)
	cmdCtx.Logger.Debug("config set key=%s path=%s", key, path)
	if formatter.IsJSON() {
		return formatter.Print(configValue{Key: key, Value: stored, Path: path})
	}
	return formatter.Printf("%s = %s\n", key, stored)
}
