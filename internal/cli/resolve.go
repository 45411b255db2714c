package cli

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/payment"
	"github.com/mrz1836/payreq/internal/resolver"
)

// resolveCmd turns any destination, including handles, into a payment request.
//
//nolint:gochecknoglobals // Cobra CLI pattern requires package-level command variables
var resolveCmd = &cobra.Command{
	Use:   "resolve <destination|->",
	Short: "Resolve a handle, URI or address into a payment request",
	Long: `Resolve a destination for one currency.

URIs and bare addresses are decoded locally. PayID (alice$example.com) and
FIO (alice@edge) handles are looked up over the network, and the returned
address is validated for the currency before it is accepted. Successful
lookups are cached (resolver.cache_ttl_seconds); --no-cache bypasses it.

Example:
  payreq resolve alice$example.com --currency XRP
  payreq resolve luke@stokes -c ETH -o json
  payreq resolve "ripple:rAPERVgXZavGgiGv6xBgtiZurirW2yAmY?dt=7" -c XRP`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringP("currency", "c", "", "currency code (required)")
	resolveCmd.Flags().Bool("no-cache", false, "bypass the resolution cache")
	resolveCmd.Flags().Duration("timeout", 0, "overall timeout (default: resolver.timeout_seconds)")
	_ = resolveCmd.MarkFlagRequired("currency")
}

// resolveResult is the JSON form of a resolve run.
type resolveResult struct {
	Request *payment.Request `json:"request"`
	Handle  *resolver.Handle `json:"handle,omitempty"`
	Elapsed string           `json:"elapsed"`
}

func runResolve(cmd *cobra.Command, args []string) error {
	input, err := inputArg(cmd, args)
	if err != nil {
		return err
	}

	code, _ := cmd.Flags().GetString("currency")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	cur, err := requireCurrency(code)
	if err != nil {
		return err
	}
	if timeout <= 0 {
		timeout = cmdCtx.Config.Timeout()
	}

	var handle *resolver.Handle
	if h, ok := resolver.NewDetector(cmdCtx.Registry).Detect(strings.TrimSpace(input)); ok {
		handle = &h
		cmdCtx.Messenger.Infof("Resolving %s handle %s for %s", h.Kind, h.Raw, cur.Code)
	}

	ctx, cancel := contextWithTimeout(cmd, timeout)
	defer cancel()

	start := time.Now()
	req, err := cmdCtx.Factory(!noCache, timeout).Resolve(ctx, input, cur)
	if err != nil {
		return err
	}
	elapsed := time.Since(start).Round(time.Millisecond)

	fields := requestFields(req)
	if handle != nil {
		fields.Add("Via", handle.Kind.String())
	}
	fields.Add("Elapsed", elapsed.String())

	return formatter.Result(resolveResult{Request: req, Handle: handle, Elapsed: elapsed.String()}, fields)
}
