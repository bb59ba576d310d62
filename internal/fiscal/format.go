// internal/fiscal/format.go
package fiscal

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
)

// Scaled renders an amount as a zero-padded integer with an implied decimal
// point, rounding half up: Scaled(12.5, 10, 2) == "0000001250".
func Scaled(d decimal.Decimal, width, decimals int) string {
	n := d.Abs().Shift(int32(decimals)).Round(0).IntPart()
	return fmt.Sprintf("%0*d", width, n)
}

// Truncate cuts s to max runes
func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// encodeLatin1 maps the command text onto the printer's single-byte charset
func encodeLatin1(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.ISO8859_1.EncodeRune(r); ok {
			out = append(out, b)
		} else {
			out = append(out, '?')
		}
	}
	return out
}

// paymentCode normalizes a payment method to the two-digit device code
func paymentCode(method string) string {
	method = strings.TrimSpace(method)
	if len(method) == 1 {
		return "0" + method
	}
	if method == "" {
		return "01"
	}
	return method
}
