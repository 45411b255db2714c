package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/output"
	"github.com/mrz1836/payreq/internal/version"
)

// releaseBaseURL is the release feed used by version --check.
//
//nolint:gochecknoglobals // Overridden in tests
var releaseBaseURL = version.DefaultBaseURL

// versionCmd prints build information.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the payreq version, commit and build date.

With --check, also ask GitHub whether a newer release exists.

Example:
  payreq version
  payreq version --check -o json`,
	Args: cobra.NoArgs,
	RunE: runVersion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("check", false, "check GitHub for a newer release")
}

type versionResult struct {
	version.BuildInfo

	Check *version.Check `json:"check,omitempty"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	check, _ := cmd.Flags().GetBool("check")
	info := version.Current()
	result := versionResult{BuildInfo: info}

	if check {
		ctx, cancel := contextWithTimeout(cmd, version.DefaultTimeout)
		defer cancel()

		client := version.NewClient(version.WithBaseURL(releaseBaseURL))
		c, err := client.CheckLatest(ctx, info.Version)
		if err != nil {
			return err
		}
		cmdCtx.Logger.Debug("release check current=%s latest=%s", c.Current, c.Latest)
		result.Check = &c
	}

	fields := output.NewFields().
		Add("Version", info.String()).
		Add("Go", info.GoVersion).
		Add("Platform", info.Platform)
	if result.Check != nil {
		status := "up to date"
		if result.Check.Newer {
			status = "update available: " + result.Check.URL
		}
		fields.Add("Latest", result.Check.Latest).Add("Status", status)
	}
	return formatter.Result(result, fields)
}
