package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/output"
)

// currenciesCmd lists the currency registry.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var currenciesCmd = &cobra.Command{
	Use:     "currencies",
	Aliases: []string{"currency", "ls"},
	Short:   "List supported currencies",
	Long: `List every registered currency: the built-in set plus the ERC-20 tokens
configured under 'tokens' in config.yaml.

Example:
  payreq currencies
  payreq currencies -o json`,
	Args: cobra.NoArgs,
	RunE: runCurrencies,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(currenciesCmd)
}

func runCurrencies(_ *cobra.Command, _ []string) error {
	all := cmdCtx.Registry.All()
	if formatter.IsJSON() {
		return formatter.Print(all)
	}

	table := output.NewTable("CODE", "NAME", "SCHEME", "DECIMALS", "RESOLVERS", "TAG")
	for _, c := range all {
		var resolvers []string
		if c.SupportsPayID() {
			resolvers = append(resolvers, "payid")
		}
		if c.SupportsFIO() {
			resolvers = append(resolvers, "fio")
		}
		if len(resolvers) == 0 {
			resolvers = append(resolvers, "-")
		}

		tag := c.TagParam
		if tag == "" {
			tag = "-"
		}

		table.AddRow(c.Code, c.Name, c.URIScheme, strconv.Itoa(c.Decimals), strings.Join(resolvers, ","), tag)
	}
	return table.Render(formatter.Writer())
}
