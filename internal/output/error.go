package output

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	payerr "github.com/mrz1836/payreq/pkg/errors"
)

// ErrorOutput represents a structured error for JSON output.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Cause      string            `json:"cause,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// NewErrorDetail converts any error into its reportable form. Errors that are
// not *payerr.PayError are reported as GENERAL_ERROR.
func NewErrorDetail(err error) ErrorDetail {
	var pe *payerr.PayError
	if !errors.As(err, &pe) {
		return ErrorDetail{
			Code:     "GENERAL_ERROR",
			Message:  err.Error(),
			ExitCode: payerr.ExitGeneral,
		}
	}

	d := ErrorDetail{
		Code:       pe.Code,
		Message:    pe.Message,
		Details:    pe.Details,
		Suggestion: pe.Suggestion,
		ExitCode:   pe.ExitCode,
	}
	if pe.Cause != nil {
		d.Cause = pe.Cause.Error()
	}
	return d
}

// FormatError writes err in the given format. A nil error writes nothing.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	detail := NewErrorDetail(err)
	if format == FormatJSON {
		return writeJSON(w, ErrorOutput{Error: detail})
	}
	return formatErrorText(w, detail)
}

func formatErrorText(w io.Writer, d ErrorDetail) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Error: %s\n", d.Message)
	if d.Cause != "" {
		fmt.Fprintf(&sb, "Cause: %s\n", d.Cause)
	}

	if len(d.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		keys := make([]string, 0, len(d.Details))
		for k := range d.Details {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			fmt.Fprintf(&sb, "  %s: %s\n", k, d.Details[k])
		}
	}

	if d.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", d.Suggestion)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// FormatSuccess formats a success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}
