// internal/template/format.go
package template

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// NumberFormat holds the locale used for numeric placeholders
type NumberFormat struct {
	Decimals           int
	DecimalSeparator   string
	ThousandsSeparator string
}

// Format renders d according to a .NET style spec: N<d> groups thousands,
// F<d> does not. An empty or unknown spec uses N with the configured decimals.
func (f NumberFormat) Format(d decimal.Decimal, spec string) string {
	digits := f.Decimals
	grouped := true

	if spec != "" {
		switch spec[0] {
		case 'N', 'n', 'F', 'f':
			grouped = spec[0] == 'N' || spec[0] == 'n'
			digits = 2
			if len(spec) > 1 {
				if n, err := strconv.Atoi(spec[1:]); err == nil && n >= 0 {
					digits = n
				}
			}
		}
	}

	fixed := d.StringFixed(int32(digits))
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, _ := strings.Cut(fixed, ".")

	if grouped && f.ThousandsSeparator != "" {
		intPart = group(intPart, f.ThousandsSeparator)
	}
	if digits > 0 {
		sep := f.DecimalSeparator
		if sep == "" {
			sep = "."
		}
		return sign + intPart + sep + frac
	}
	return sign + intPart
}

func group(digits, sep string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteString(sep)
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Date patterns accepted for document_date, tried in order
var dateInputLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006",
}

// FormatDate reformats a date string with a .NET style pattern such as dd/MM/yyyy.
// Unparsable input is returned unchanged.
func FormatDate(value, pattern string) string {
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(GoLayout(pattern))
		}
	}
	return value
}

// dotnet date tokens, longest first
var dateTokens = []struct {
	token  string
	layout string
}{
	{"yyyy", "2006"},
	{"MMMM", "January"},
	{"dddd", "Monday"},
	{"MMM", "Jan"},
	{"ddd", "Mon"},
	{"yy", "06"},
	{"MM", "01"},
	{"dd", "02"},
	{"HH", "15"},
	{"hh", "03"},
	{"mm", "04"},
	{"ss", "05"},
	{"tt", "PM"},
	{"M", "1"},
	{"d", "2"},
	{"H", "15"},
	{"h", "3"},
	{"m", "4"},
	{"s", "5"},
}

// GoLayout converts a .NET date pattern to a Go time layout
func GoLayout(pattern string) string {
	var b strings.Builder
	for i := 0; i < len(pattern); {
		matched := false
		for _, t := range dateTokens {
			if strings.HasPrefix(pattern[i:], t.token) {
				b.WriteString(t.layout)
				i += len(t.token)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte(pattern[i])
			i++
		}
	}
	return b.String()
}
