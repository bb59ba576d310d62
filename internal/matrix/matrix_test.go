package matrix

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatTableRow(t *testing.T) {
	row := FormatTableRow("Bolt", decimal.NewFromInt(2), decimal.RequireFromString("1250.5"), decimal.RequireFromString("2501"))

	want := "Bolt" + strings.Repeat(" ", 36) + "     2.00   1,250.50   2,501.00"
	if row != want {
		t.Fatalf("expected %q, got %q", want, row)
	}
}

func TestFormatTableRow_TruncatesLongNames(t *testing.T) {
	long := strings.Repeat("x", 45)
	row := FormatTableRow(long, decimal.NewFromInt(1), decimal.NewFromInt(1), decimal.NewFromInt(1))

	name := row[:40]
	if name != strings.Repeat("x", 37)+"..." {
		t.Fatalf("unexpected name column %q", name)
	}
}

func TestEncoder(t *testing.T) {
	e := NewEncoder(0)

	if !bytes.Equal(e.Condensed(true), []byte{0x0F}) {
		t.Fatalf("unexpected condensed on")
	}
	if !bytes.Equal(e.Bold(false), []byte{0x1B, 0x46}) {
		t.Fatalf("unexpected bold off")
	}
	if !bytes.Equal(e.Text("ok"), []byte{'o', 'k', 0x0D, 0x0A}) {
		t.Fatalf("unexpected text encoding")
	}
	if !bytes.Equal(e.Feed(2), []byte{0x0D, 0x0A, 0x0D, 0x0A}) {
		t.Fatalf("unexpected feed")
	}
}
