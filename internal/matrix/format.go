// internal/matrix/format.go
package matrix

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

const (
	nameColumn     = 40
	quantityColumn = 8
	amountColumn   = 10
)

// FormatTableRow lays out an item row as name(40) quantity(8) price(10) total(10).
// Names longer than the column are cut with an ellipsis.
func FormatTableRow(name string, quantity, price, total decimal.Decimal) string {
	if utf8.RuneCountInString(name) > nameColumn {
		name = string([]rune(name)[:nameColumn-3]) + "..."
	}

	return fmt.Sprintf("%s %*s %*s %*s",
		padRight(name, nameColumn),
		quantityColumn, GroupThousands(quantity.StringFixed(2)),
		amountColumn, GroupThousands(price.StringFixed(2)),
		amountColumn, GroupThousands(total.StringFixed(2)),
	)
}

// GroupThousands inserts ',' separators into a fixed-point number string
func GroupThousands(fixed string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	intPart, frac, hasFrac := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if hasFrac {
		b.WriteByte('.')
		b.WriteString(frac)
	}
	return sign + b.String()
}

func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
