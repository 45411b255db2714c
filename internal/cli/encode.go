package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/output"
	"github.com/mrz1836/payreq/internal/payment"
)

// encodeCmd builds a payment URI.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var encodeCmd = &cobra.Command{
	Use:   "encode",
	Short: "Build a payment URI",
	Long: `Build a payment URI from an address and optional amount, tag, message and label.

The address is validated for the currency and the amount may not carry more
fractional digits than the currency supports. On a terminal the URI is also
shown as a QR code; --png writes the QR code to a file.

Example:
  payreq encode --currency BTC --address 12A1MyfXbW6RhdRAZEqofac5jCQQjwEPBu --amount 0.001
  payreq encode -c XRP --address rAPERVgXZavGgiGv6xBgtiZurirW2yAmY --tag 12345
  payreq encode -c ETH --address 0x... --amount 0.5 --png request.png`,
	Args: cobra.NoArgs,
	RunE: runEncode,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(encodeCmd)

	encodeCmd.Flags().StringP("currency", "c", "", "currency code (required)")
	encodeCmd.Flags().StringP("address", "a", "", "destination address (required)")
	encodeCmd.Flags().String("amount", "", "amount in display units, e.g. 1.25")
	encodeCmd.Flags().String("tag", "", "destination tag or memo (XRP, XLM, SOL)")
	encodeCmd.Flags().String("message", "", "message for the payer")
	encodeCmd.Flags().String("label", "", "label for the payee")
	encodeCmd.Flags().Bool("qr", true, "show a QR code when writing to a terminal")
	encodeCmd.Flags().String("png", "", "write a PNG QR code to this path")
	encodeCmd.Flags().Int("size", output.DefaultPNGSize, "PNG edge length in pixels")
	_ = encodeCmd.MarkFlagRequired("currency")
	_ = encodeCmd.MarkFlagRequired("address")
}

// encodeResult is the JSON form of an encode run.
type encodeResult struct {
	Request *payment.Request `json:"request"`
	PNG     string           `json:"png,omitempty"`
}

func runEncode(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	code, _ := flags.GetString("currency")
	address, _ := flags.GetString("address")
	amountText, _ := flags.GetString("amount")
	tag, _ := flags.GetString("tag")
	message, _ := flags.GetString("message")
	label, _ := flags.GetString("label")
	showQR, _ := flags.GetBool("qr")
	pngPath, _ := flags.GetString("png")
	size, _ := flags.GetInt("size")

	cur, err := requireCurrency(code)
	if err != nil {
		return err
	}

	opts := []payment.RequestOption{
		payment.WithTag(tag),
		payment.WithMessage(message),
		payment.WithLabel(label),
	}
	if amountText != "" {
		amount, err := currency.ParseAmount(amountText, cur)
		if err != nil {
			return err
		}
		opts = append(opts, payment.WithAmount(amount))
	}

	req, err := payment.NewRequest(cur, address, opts...)
	if err != nil {
		return err
	}
	uri := payment.Encode(req)
	cmdCtx.Logger.Debug("encode currency=%s uri=%s", cur.Code, uri)

	if pngPath != "" {
		if err := output.WriteQRPNG(pngPath, uri, size, output.DefaultQRConfig().Level); err != nil {
			return err
		}
		cmdCtx.Messenger.Successf("QR code written to %s", pngPath)
	}

	if formatter.IsJSON() {
		return formatter.Print(encodeResult{Request: req, PNG: pngPath})
	}

	outln(formatter.Writer(), uri)
	if showQR {
		return output.RenderQR(formatter.Writer(), uri, output.DefaultQRConfig())
	}
	return nil
}
