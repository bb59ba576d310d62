// internal/template/condition.go
package template

import (
	"strings"

	"github.com/shopspring/decimal"

	"printer-server/internal/model"
)

// ShouldSkip evaluates a skip predicate against src. Supported forms are
// "field != literal" and "field > number". The line is skipped when the
// predicate is false. Empty or unrecognized conditions never skip.
func ShouldSkip(condition string, src model.FieldSource) bool {
	condition = strings.TrimSpace(condition)
	if condition == "" || src == nil {
		return false
	}

	if field, literal, ok := strings.Cut(condition, "!="); ok {
		value, found := src.Field(strings.TrimSpace(field))
		if !found || value == nil {
			return false
		}
		return equals(value, unquote(strings.TrimSpace(literal)))
	}

	if field, literal, ok := strings.Cut(condition, ">"); ok {
		value, found := src.Field(strings.TrimSpace(field))
		if !found {
			return false
		}
		number, isNumber := value.(decimal.Decimal)
		if !isNumber {
			return false
		}
		limit, err := decimal.NewFromString(strings.TrimSpace(literal))
		if err != nil {
			limit = decimal.Zero
		}
		return !number.GreaterThan(limit)
	}

	return false
}

func equals(value any, literal string) bool {
	switch v := value.(type) {
	case decimal.Decimal:
		if lit, err := decimal.NewFromString(literal); err == nil {
			return v.Equal(lit)
		}
		return v.String() == literal
	case model.Date:
		return string(v) == literal
	case string:
		return v == literal
	default:
		return false
	}
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '\'' && s[len(s)-1] == '\'') || (s[0] == '"' && s[len(s)-1] == '"') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
