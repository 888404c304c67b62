// Package table holds numeric tables with named columns, the shape in which
// relaxation results are handed to plotting and export collaborators.
package table

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
)

// ErrUnknownColumn is returned by Column for a name not in the table.
var ErrUnknownColumn = errors.New("table: unknown column")

// Table is a row-major numeric table.
type Table struct {
	Columns []string
	Rows    [][]float64
}

// New returns an empty table with the given columns.
func New(columns ...string) Table {
	return Table{Columns: columns}
}

// Append adds a row. Missing trailing cells are filled with NaN and extra
// cells are dropped.
func (t *Table) Append(values ...float64) {
	row := make([]float64, len(t.Columns))
	for i := range row {
		if i < len(values) {
			row[i] = values[i]
		} else {
			row[i] = math.NaN()
		}
	}
	t.Rows = append(t.Rows, row)
}

// Len returns the number of rows.
func (t Table) Len() int {
	return len(t.Rows)
}

// Column returns a copy of the named column.
func (t Table) Column(name string) ([]float64, error) {
	idx := -1
	for i, c := range t.Columns {
		if c == name {
			idx = i
			break
		}
	}

	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
	}

	out := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r[idx]
	}

	return out, nil
}

// WriteTo writes the table as aligned text. NaN cells print as "-".
func (t Table) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	tw := tabwriter.NewWriter(cw, 0, 0, 2, ' ', 0)

	if _, err := fmt.Fprintln(tw, strings.Join(t.Columns, "\t")); err != nil {
		return cw.n, err
	}

	cells := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, v := range r {
			cells[i] = formatCell(v)
		}

		if _, err := fmt.Fprintln(tw, strings.Join(cells, "\t")); err != nil {
			return cw.n, err
		}
	}

	err := tw.Flush()

	return cw.n, err
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "-"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
