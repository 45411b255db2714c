package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/metrics"
	"github.com/mrz1836/payreq/internal/payment"
	"github.com/mrz1836/payreq/internal/resolver"
	"github.com/mrz1836/payreq/internal/scan"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// parseCmd decodes a payment URI or bare address.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var parseCmd = &cobra.Command{
	Use:   "parse <uri|address|->",
	Short: "Decode a payment URI or address",
	Long: `Decode a payment URI or bare address into a payment request.

Without --currency the input is matched against every registered currency:
URIs by scheme, bare addresses by the first currency whose validator accepts
them. Handles are not resolved; use 'payreq resolve' for those.

Pass "-" to read the input from stdin.

Example:
  payreq parse "bitcoin:12A1MyfXbW6RhdRAZEqofac5jCQQjwEPBu?amount=1.2&label=Coffee"
  payreq parse rAPERVgXZavGgiGv6xBgtiZurirW2yAmY --currency XRP
  payreq parse "ethereum:0x...?amount=5" --currency USDC -o json`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().StringP("currency", "c", "", "currency code to parse for (default: detect)")
}

func runParse(cmd *cobra.Command, args []string) error {
	input, err := inputArg(cmd, args)
	if err != nil {
		return err
	}

	code, _ := cmd.Flags().GetString("currency")
	cur, err := lookupCurrency(code)
	if err != nil {
		return err
	}

	var req *payment.Request
	if cur != nil {
		var ok bool
		req, ok = payment.MakeRequest(input, cur)
		if !ok {
			return notAPaymentRequest(input, cur.Code)
		}
	} else {
		result := scan.Classify(input, scan.Options{Registry: cmdCtx.Registry})
		if result.Kind != scan.KindPaymentRequest {
			return notAPaymentRequest(input, "")
		}
		req = result.Request
	}

	cmdCtx.Metrics.RecordRequest(requestPath(input, req))
	cmdCtx.Logger.Debug("parse ok currency=%s address=%s", req.Currency().Code, req.ToAddress())
	return formatter.Result(req, requestFields(req))
}

// requestPath reports whether a request came from a URI or a bare address.
func requestPath(input string, req *payment.Request) string {
	if strings.TrimSpace(input) == req.ToAddress() {
		return metrics.PathBare
	}
	return metrics.PathURI
}

// notAPaymentRequest builds the parse failure. Private keys are never echoed.
func notAPaymentRequest(input, currencyCode string) error {
	details := map[string]string{}
	if !scan.IsPrivateKey(strings.TrimSpace(input)) {
		details["input"] = input
	}
	if currencyCode != "" {
		details["currency"] = currencyCode
	}

	err := payerr.WithDetails(payerr.ErrInvalidInput, details)
	if resolver.NewDetector(cmdCtx.Registry).IsHandle(strings.TrimSpace(input)) {
		return payerr.WithSuggestion(err, "This looks like a payment handle; use 'payreq resolve'")
	}
	return payerr.WithSuggestion(err, "Expected a payment URI or an address of a registered currency")
}
