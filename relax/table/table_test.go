package table

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
)

func TestAppendPadsAndTruncates(t *testing.T) {
	tb := New("a", "b", "c")
	tb.Append(1, 2)
	tb.Append(1, 2, 3, 4)

	if tb.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", tb.Len())
	}
	if !math.IsNaN(tb.Rows[0][2]) {
		t.Fatalf("missing cell = %v, want NaN", tb.Rows[0][2])
	}
	if len(tb.Rows[1]) != 3 {
		t.Fatalf("row width = %d, want 3", len(tb.Rows[1]))
	}
}

func TestColumn(t *testing.T) {
	tb := New("T", "tau")
	tb.Append(2, 10)
	tb.Append(3, 5)

	col, err := tb.Column("tau")
	if err != nil {
		t.Fatalf("Column: %v", err)
	}
	if col[0] != 10 || col[1] != 5 {
		t.Fatalf("Column(tau) = %v", col)
	}

	if _, err := tb.Column("beta"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("Column(beta) error = %v, want ErrUnknownColumn", err)
	}
}

func TestWriteTo(t *testing.T) {
	tb := New("T", "tau")
	tb.Append(2, math.NaN())

	var buf bytes.Buffer
	n, err := tb.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo: %v", err)
	}
	if n != int64(buf.Len()) {
		t.Fatalf("WriteTo returned %d, wrote %d", n, buf.Len())
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %q", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "T") || !strings.HasSuffix(strings.TrimSpace(lines[1]), "-") {
		t.Fatalf("unexpected output %q", buf.String())
	}
}
