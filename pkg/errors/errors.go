// Package errors provides structured error handling for payreq.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the payreq CLI.
const (
	ExitSuccess  = 0 // Successful execution
	ExitGeneral  = 1 // General/unknown error
	ExitInput    = 2 // Invalid input
	ExitNotFound = 4 // Resource not found
)

// PayError is the structured error type for payreq.
type PayError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *PayError) Error() string {
	msg := e.Message

	// Details are sorted for deterministic output
	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *PayError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for PayError. Two errors match when their codes match.
func (e *PayError) Is(target error) bool {
	var t *PayError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &PayError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &PayError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &PayError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Address-specific errors.
	ErrInvalidAddress = &PayError{
		Code:     "INVALID_ADDRESS",
		Message:  "invalid address format",
		ExitCode: ExitInput,
	}

	ErrInvalidChecksum = &PayError{
		Code:     "INVALID_CHECKSUM",
		Message:  "invalid address checksum",
		ExitCode: ExitInput,
	}

	ErrUnsupportedVersion = &PayError{
		Code:     "UNSUPPORTED_VERSION",
		Message:  "unsupported address version",
		ExitCode: ExitInput,
	}

	// Amount and currency errors.
	ErrInvalidAmount = &PayError{
		Code:     "INVALID_AMOUNT",
		Message:  "invalid amount format",
		ExitCode: ExitInput,
	}

	ErrAmountPrecision = &PayError{
		Code:     "AMOUNT_PRECISION",
		Message:  "amount has more decimal places than the currency supports",
		ExitCode: ExitInput,
	}

	ErrUnknownCurrency = &PayError{
		Code:     "UNKNOWN_CURRENCY",
		Message:  "unknown currency",
		ExitCode: ExitInput,
	}

	// Network errors.
	ErrNetworkError = &PayError{
		Code:     "NETWORK_ERROR",
		Message:  "network communication failed",
		ExitCode: ExitGeneral,
	}

	ErrRateLimited = &PayError{
		Code:     "RATE_LIMITED",
		Message:  "rate limited",
		ExitCode: ExitGeneral,
	}

	// Config-specific errors.
	ErrConfigNotFound = &PayError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &PayError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &PayError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}

	ErrNotSupported = &PayError{
		Code:     "NOT_SUPPORTED",
		Message:  "operation not supported for this currency",
		ExitCode: ExitInput,
	}

	ErrInvalidFormat = &PayError{
		Code:     "INVALID_FORMAT",
		Message:  "invalid format",
		ExitCode: ExitInput,
	}
)

// New creates a new PayError with the given code and message.
func New(code, message string) *PayError {
	return &PayError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var pe *PayError
	if errors.As(err, &pe) {
		return &PayError{
			Code:       pe.Code,
			Message:    fmt.Sprintf("%s: %s", msg, pe.Message),
			Details:    pe.Details,
			Suggestion: pe.Suggestion,
			Cause:      err,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PayError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var pe *PayError
	if errors.As(err, &pe) {
		return &PayError{
			Code:       pe.Code,
			Message:    pe.Message,
			Details:    details,
			Suggestion: pe.Suggestion,
			Cause:      pe.Cause,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PayError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var pe *PayError
	if errors.As(err, &pe) {
		return &PayError{
			Code:       pe.Code,
			Message:    pe.Message,
			Details:    pe.Details,
			Suggestion: suggestion,
			Cause:      pe.Cause,
			ExitCode:   pe.ExitCode,
		}
	}

	return &PayError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var pe *PayError
	if errors.As(err, &pe) {
		return pe.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var pe *PayError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
