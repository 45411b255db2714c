package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/output"
)

// walkCommands calls fn for cmd and each of its descendants, parents first.
func walkCommands(cmd *cobra.Command, fn func(*cobra.Command)) {
	fn(cmd)
	for _, child := range cmd.Commands() {
		walkCommands(child, fn)
	}
}

// enrichParentLong lists a group command's available subcommands at the end
// of its Long help. Commands without subcommands are left untouched.
func enrichParentLong(parent *cobra.Command) {
	if !parent.HasSubCommands() {
		return
	}

	table := output.NewTable()
	for _, sub := range parent.Commands() {
		if !sub.IsAvailableCommand() {
			continue
		}
		table.AddRow("  "+sub.Name(), sub.Short)
	}
	if table.Len() == 0 {
		return
	}

	parent.Long = strings.TrimRight(parent.Long, "\n") + "\n\nSubcommands:\n" + table.String()
}
