package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/address"
	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/output"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// ethereumScheme marks currencies whose addresses carry an EIP-55 checksum.
const ethereumScheme = "ethereum"

// validateCmd checks an address.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var validateCmd = &cobra.Command{
	Use:   "validate <address|->",
	Short: "Check whether an address is valid",
	Long: `Check an address against one currency, or list every registered
currency that accepts it.

Ethereum addresses are accepted in any casing. With --strict-checksum a
mixed-case address must also carry a correct EIP-55 checksum.

Example:
  payreq validate 12A1MyfXbW6RhdRAZEqofac5jCQQjwEPBu
  payreq validate 0xbDFdAd139440D2Db9BA2aa3B7081C2dE39291508 --currency ETH --strict-checksum`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringP("currency", "c", "", "currency code to validate for (default: all)")
	validateCmd.Flags().Bool("strict-checksum", false, "require a correct EIP-55 checksum on mixed-case Ethereum addresses")
}

// validateResult is the outcome of validate.
type validateResult struct {
	Address    string   `json:"address"`
	Valid      bool     `json:"valid"`
	Currencies []string `json:"currencies"`
	Checksum   string   `json:"checksum_address,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	input, err := inputArg(cmd, args)
	if err != nil {
		return err
	}
	addr := strings.TrimSpace(input)

	code, _ := cmd.Flags().GetString("currency")
	strict, _ := cmd.Flags().GetBool("strict-checksum")

	cur, err := lookupCurrency(code)
	if err != nil {
		return err
	}

	candidates := cmdCtx.Registry.All()
	if cur != nil {
		candidates = []*currency.Currency{cur}
	}

	result := validateResult{Address: addr, Currencies: []string{}}
	var firstErr error
	for _, c := range candidates {
		err := validateFor(addr, c, strict)
		if err == nil {
			result.Currencies = append(result.Currencies, c.Code)
			if c.URIScheme == ethereumScheme {
				result.Checksum = address.ToChecksumAddress(addr)
			}
			continue
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	result.Valid = len(result.Currencies) > 0

	if !result.Valid {
		if cur != nil && firstErr != nil {
			return firstErr
		}
		return payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{
			"address": addr,
			"reason":  "not valid for any registered currency",
		})
	}

	fields := output.NewFields().
		Add("Address", result.Address).
		Add("Valid", "yes").
		Add("Currencies", strings.Join(result.Currencies, ", ")).
		Add("Checksum", result.Checksum)
	return formatter.Result(result, fields)
}

// validateFor returns the validator's own error so the reason reaches the user.
func validateFor(addr string, c *currency.Currency, strict bool) error {
	if addr == "" || c.Validator == nil {
		return payerr.WithDetails(payerr.ErrInvalidAddress, map[string]string{"currency": c.Code})
	}
	if err := c.Validator.ValidateAddress(addr); err != nil {
		return err
	}
	if strict && c.URIScheme == ethereumScheme {
		return address.ValidateChecksumAddress(addr)
	}
	return nil
}
