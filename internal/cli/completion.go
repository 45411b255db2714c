package cli

import (
	"github.com/spf13/cobra"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// completionCmd generates shell completion scripts.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `Generate a shell completion script for payreq and write it to stdout.

Bash:
  $ source <(payreq completion bash)
  $ payreq completion bash > /etc/bash_completion.d/payreq

Zsh:
  $ payreq completion zsh > "${fpath[1]}/_payreq"

Fish:
  $ payreq completion fish > ~/.config/fish/completions/payreq.fish

PowerShell:
  PS> payreq completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE:                  runCompletion,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	root := cmd.Root()

	switch args[0] {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{"shell": args[0]})
}
