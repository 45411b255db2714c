package output

import (
	"fmt"
	"io"
)

// Messenger writes human-facing status lines, usually to stderr so they never
// mix with command results on stdout.
type Messenger struct {
	w     io.Writer
	quiet bool
}

// NewMessenger creates a Messenger writing to w. A quiet messenger only prints warnings.
func NewMessenger(w io.Writer, quiet bool) *Messenger {
	return &Messenger{w: w, quiet: quiet}
}

// Infof prints an informational line.
func (m *Messenger) Infof(format string, args ...any) {
	if m == nil || m.quiet {
		return
	}
	_, _ = fmt.Fprintln(m.w, "ℹ️  "+fmt.Sprintf(format, args...))
}

// Warnf prints a warning line.
func (m *Messenger) Warnf(format string, args ...any) {
	if m == nil {
		return
	}
	_, _ = fmt.Fprintln(m.w, "⚠️  "+fmt.Sprintf(format, args...))
}

// Successf prints a success line.
func (m *Messenger) Successf(format string, args ...any) {
	if m == nil || m.quiet {
		return
	}
	_, _ = fmt.Fprintln(m.w, "✅ "+fmt.Sprintf(format, args...))
}
