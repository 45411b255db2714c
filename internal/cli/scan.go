package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/output"
	"github.com/mrz1836/payreq/internal/scan"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// scanCmd classifies scanned content.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var scanCmd = &cobra.Command{
	Use:   "scan <content|->",
	Short: "Classify scanned QR content",
	Long: `Classify the content of a scanned QR code as a payment request, a
resolvable handle, a private key or an application deep link.

Private key material is recognized but never printed. With --currency only
payment requests for that currency are accepted; with --private-key-only only
private keys are.

Example:
  payreq scan "bitcoin:12A1MyfXbW6RhdRAZEqofac5jCQQjwEPBu?amount=1"
  payreq scan alice$example.com
  zbarimg -q --raw qr.png | payreq scan -`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().StringP("currency", "c", "", "accept only payment requests for this currency")
	scanCmd.Flags().Bool("private-key-only", false, "accept only private keys")
}

func runScan(cmd *cobra.Command, args []string) error {
	content, err := inputArg(cmd, args)
	if err != nil {
		return err
	}

	code, _ := cmd.Flags().GetString("currency")
	keyOnly, _ := cmd.Flags().GetBool("private-key-only")

	cur, err := lookupCurrency(code)
	if err != nil {
		return err
	}
	if cur != nil && keyOnly {
		return payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{
			"reason": "--currency and --private-key-only are mutually exclusive",
		})
	}

	result := scan.Classify(content, scan.Options{
		Registry:         cmdCtx.Registry,
		Currency:         cur,
		PrivateKeyOnly:   keyOnly,
		DeepLinkPrefixes: cmdCtx.Config.Scan.DeepLinkPrefixes,
	})
	cmdCtx.Logger.Debug("scan kind=%s", result.Kind)

	if result.Kind == scan.KindInvalid {
		details := map[string]string{"kind": result.Kind.String()}
		if cur != nil {
			details["currency"] = cur.Code
		}
		return payerr.WithDetails(payerr.ErrInvalidFormat, details)
	}

	fields := output.NewFields().Add("Kind", result.Kind.String())
	switch result.Kind {
	case scan.KindPaymentRequest:
		fields.Append(requestFields(result.Request))
	case scan.KindResolvable:
		fields.Add("Handle", result.Handle.Raw).Add("Via", result.Handle.Kind.String())
	case scan.KindPrivateKey:
		fields.Add("Note", "private key detected; contents not shown")
	case scan.KindDeepLink:
		fields.Add("Link", result.DeepLink)
	case scan.KindInvalid:
	}

	return formatter.Result(result, fields)
}
