package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/payreq/internal/currency"
	"github.com/mrz1836/payreq/internal/output"
	"github.com/mrz1836/payreq/internal/payment"
	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// maxInputSize bounds input read from stdin.
const maxInputSize = 64 * 1024

func out(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

func outln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}

// inputArg returns the single positional argument, reading stdin when it is "-".
func inputArg(cmd *cobra.Command, args []string) (string, error) {
	if args[0] != "-" {
		return args[0], nil
	}

	data, err := io.ReadAll(io.LimitReader(bufio.NewReader(cmd.InOrStdin()), maxInputSize))
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	s := strings.TrimSpace(string(data))
	if s == "" {
		return "", payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{"reason": "empty input on stdin"})
	}
	return s, nil
}

// lookupCurrency resolves a --currency flag. Empty means no restriction.
func lookupCurrency(code string) (*currency.Currency, error) {
	if strings.TrimSpace(code) == "" {
		return nil, nil //nolint:nilnil // no currency requested
	}
	return cmdCtx.Registry.Resolve(code)
}

// requireCurrency is lookupCurrency for commands that need one.
func requireCurrency(code string) (*currency.Currency, error) {
	if strings.TrimSpace(code) == "" {
		return nil, payerr.WithSuggestion(
			payerr.WithDetails(payerr.ErrInvalidInput, map[string]string{"flag": "currency"}),
			"Pass --currency, e.g. --currency BTC (see 'payreq currencies')",
		)
	}
	return cmdCtx.Registry.Resolve(code)
}

// requestFields lists a request for text output.
func requestFields(req *payment.Request) *output.Fields {
	f := output.NewFields().
		Add("Currency", req.Currency().Code).
		Add("Address", req.ToAddress())
	if amount, ok := req.Amount(); ok {
		f.Add("Amount", amount.String()+" "+req.Currency().Code).
			Add("Units", amount.Units().String())
	}
	return f.
		Add("Tag", req.Tag()).
		Add("Message", req.Message()).
		Add("Label", req.Label()).
		Add("Source", req.RawSource()).
		Add("URI", payment.Encode(req))
}
