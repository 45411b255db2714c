package output

import (
	"fmt"
	"io"
	"strings"
)

const (
	ansiBold  = "\x1b[1m"
	ansiReset = "\x1b[0m"
)

// Table renders tabular data for text output.
type Table struct {
	headers   []string
	rows      [][]string
	separator string
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		separator: "  ",
	}
}

// AddRow adds a row. Short rows are padded with empty cells.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table with a dashed rule under the header.
func (t *Table) Render(w io.Writer) error {
	if len(t.headers) == 0 && len(t.rows) == 0 {
		return nil
	}

	widths := t.widths()
	if len(t.headers) > 0 {
		if err := t.renderRow(w, t.headers, widths); err != nil {
			return err
		}
		rule := make([]string, len(widths))
		for i, width := range widths {
			rule[i] = strings.Repeat("-", width)
		}
		if err := t.renderRow(w, rule, widths); err != nil {
			return err
		}
	}

	for _, row := range t.rows {
		if err := t.renderRow(w, row, widths); err != nil {
			return err
		}
	}
	return nil
}

// String returns the rendered table.
func (t *Table) String() string {
	var sb strings.Builder
	_ = t.Render(&sb)
	return sb.String()
}

func (t *Table) widths() []int {
	cols := len(t.headers)
	for _, row := range t.rows {
		cols = max(cols, len(row))
	}

	widths := make([]int, cols)
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}
	return widths
}

func (t *Table) renderRow(w io.Writer, cells []string, widths []int) error {
	parts := make([]string, len(widths))
	for i := range widths {
		var cell string
		if i < len(cells) {
			cell = cells[i]
		}
		if i == len(widths)-1 {
			parts[i] = cell
			continue
		}
		parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
	}
	_, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, t.separator), " "))
	return err
}

// Fields is an ordered list of labeled values rendered as "Label: value"
// lines with the values aligned.
type Fields struct {
	labels []string
	values []string
}

// NewFields creates an empty field list.
func NewFields() *Fields {
	return &Fields{}
}

// Add appends a field. Empty values are skipped.
func (f *Fields) Add(label, value string) *Fields {
	if value == "" {
		return f
	}
	f.labels = append(f.labels, label)
	f.values = append(f.values, value)
	return f
}

// Append adds every field of other.
func (f *Fields) Append(other *Fields) *Fields {
	if other == nil {
		return f
	}
	f.labels = append(f.labels, other.labels...)
	f.values = append(f.values, other.values...)
	return f
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.labels)
}

func (f *Fields) render(w io.Writer, color bool) error {
	if f == nil {
		return nil
	}

	width := 0
	for _, l := range f.labels {
		width = max(width, len(l)+1)
	}

	for i, l := range f.labels {
		label := fmt.Sprintf("%-*s", width, l+":")
		if color {
			label = ansiBold + label + ansiReset
		}
		if _, err := fmt.Fprintf(w, "%s %s\n", label, f.values[i]); err != nil {
			return err
		}
	}
	return nil
}
