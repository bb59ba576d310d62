// internal/template/placeholder.go
package template

import (
	"strings"

	"github.com/shopspring/decimal"

	"printer-server/internal/model"
)

// Substitute replaces {field} and {field:format} tokens left to right.
// Substituted text is never scanned again.
func (e *Engine) Substitute(text string, src model.FieldSource) string {
	var b strings.Builder
	rest := text

	for {
		start := strings.IndexByte(rest, '{')
		if start < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[start:], '}')
		if end < 0 {
			b.WriteString(rest)
			break
		}
		end += start

		b.WriteString(rest[:start])
		name, spec, _ := strings.Cut(rest[start+1:end], ":")
		b.WriteString(e.formatField(src, strings.TrimSpace(name), spec))
		rest = rest[end+1:]
	}

	return b.String()
}

func (e *Engine) formatField(src model.FieldSource, name, spec string) string {
	if src == nil {
		return ""
	}
	value, ok := src.Field(name)
	if !ok || value == nil {
		return ""
	}

	switch v := value.(type) {
	case decimal.Decimal:
		return e.opts.Number.Format(v, spec)
	case model.Date:
		if string(v) == "" {
			return ""
		}
		pattern := spec
		if pattern == "" {
			pattern = e.opts.DateFormat
		}
		if pattern == "" {
			return string(v)
		}
		return FormatDate(string(v), pattern)
	case string:
		return v
	default:
		return ""
	}
}
