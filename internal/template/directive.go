// internal/template/directive.go
package template

import (
	"fmt"
	"os"
	"strings"

	"printer-server/internal/matrix"
	"printer-server/internal/model"
)

// TextTemplate is a plain text layout with {{KEY}} variables and [directive] lines
type TextTemplate struct {
	Source string
}

// LoadText reads a text template from disk
func LoadText(path string) (*TextTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text template %s: %w", path, err)
	}
	return &TextTemplate{Source: string(data)}, nil
}

// TableSpacer is implemented by dialects with dedicated table line spacing
type TableSpacer interface {
	TableSpacing() []byte
	BodySpacing() []byte
}

// ItemLayout selects how {{ITEMS}} is expanded
type ItemLayout int

const (
	// ItemsTwoLine prints the name on one line and quantity x price = total below
	ItemsTwoLine ItemLayout = iota
	// ItemsTable prints one fixed-width table row per item
	ItemsTable
)

type mode int

const (
	modeAlign mode = iota
	modeCondensed
	modeTable
	modeBold
)

// RenderText interprets directive lines of the template and substitutes legacy
// variables in the remaining text lines, so document values never act as
// directives. Modes still open at the end are closed in reverse order.
func (e *Engine) RenderText(t *TextTemplate, doc *model.Document, layout ItemLayout) ([][]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("template is nil")
	}
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	vars := e.LegacyVariables(doc, layout)

	out := [][]byte{e.dialect.Init()}
	var open []mode

	closeMode := func(m mode) []byte {
		switch m {
		case modeAlign:
			return e.dialect.Align("left")
		case modeCondensed:
			return e.dialect.Condensed(false)
		case modeTable:
			if ts, ok := e.dialect.(TableSpacer); ok {
				return ts.BodySpacing()
			}
			return e.dialect.ResetLineSpacing()
		default:
			return e.dialect.Bold(false)
		}
	}

	// pop closes the most recent open mode of kind m
	pop := func(m mode) {
		for i := len(open) - 1; i >= 0; i-- {
			if open[i] == m {
				open = append(open[:i], open[i+1:]...)
				out = append(out, closeMode(m))
				return
			}
		}
	}

	// text emits a template line after substitution. A variable can expand to
	// several lines; indentation is kept and trailing blanks are dropped.
	text := func(line string) {
		for _, l := range strings.Split(ReplaceVariables(line, vars), "\n") {
			l = strings.TrimRight(l, " \t\r")
			if l != "" {
				out = append(out, e.dialect.Text(l))
			}
		}
	}

	for _, line := range strings.Split(t.Source, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			handled := true
			switch strings.ToLower(trimmed[1 : len(trimmed)-1]) {
			case "center", "right", "left":
				out = append(out, e.dialect.Align(strings.ToLower(trimmed[1:len(trimmed)-1])))
				open = append(open, modeAlign)
			case "/center", "/right", "/left":
				pop(modeAlign)
			case "condensed":
				out = append(out, e.dialect.Condensed(true))
				open = append(open, modeCondensed)
			case "/condensed":
				pop(modeCondensed)
			case "table":
				if ts, ok := e.dialect.(TableSpacer); ok {
					out = append(out, ts.TableSpacing())
				} else {
					out = append(out, e.dialect.ResetLineSpacing())
				}
				open = append(open, modeTable)
			case "/table":
				pop(modeTable)
			case "bold":
				out = append(out, e.dialect.Bold(true))
				open = append(open, modeBold)
			case "/bold":
				pop(modeBold)
			default:
				handled = false
			}
			if handled {
				continue
			}
		}

		if len(trimmed) > 4 && strings.HasPrefix(trimmed, "**") && strings.HasSuffix(trimmed, "**") {
			out = append(out, e.dialect.Bold(true))
			text(trimmed[2 : len(trimmed)-2])
			out = append(out, e.dialect.Bold(false))
			continue
		}
		text(line)
	}

	for i := len(open) - 1; i >= 0; i-- {
		out = append(out, closeMode(open[i]))
	}
	return out, nil
}

// ReplaceVariables substitutes every {{KEY}} occurrence
func ReplaceVariables(source string, vars map[string]string) string {
	pairs := make([]string, 0, len(vars)*2)
	for k, v := range vars {
		pairs = append(pairs, "{{"+k+"}}", v)
	}
	return strings.NewReplacer(pairs...).Replace(source)
}

// LegacyVariables builds the {{KEY}} map used by text templates
func (e *Engine) LegacyVariables(doc *model.Document, layout ItemLayout) map[string]string {
	format := func(field string, src model.FieldSource) string {
		return e.formatField(src, field, "N2")
	}

	var items strings.Builder
	for i := range doc.Items {
		item := &doc.Items[i]
		if layout == ItemsTable {
			items.WriteString(matrix.FormatTableRow(item.Name, item.Quantity, item.Price, item.Total()))
			items.WriteString("\n")
		} else {
			fmt.Fprintf(&items, "%-40s\n", item.Name)
			fmt.Fprintf(&items, "%6s x %10s = %10s\n",
				format("item_quantity", item), format("item_price", item), format("total", item))
		}
		if item.Comment != "" {
			fmt.Fprintf(&items, "  %s\n", item.Comment)
		}
	}

	var payments strings.Builder
	for i := range doc.Payments {
		p := &doc.Payments[i]
		fmt.Fprintf(&payments, "%-20s %10s\n", p.Name, format("payment_amount", p))
	}

	return map[string]string{
		"CUSTOMER_VAT":      doc.CustomerVAT,
		"CUSTOMER_NAME":     doc.CustomerName,
		"CUSTOMER_ADDRESS":  doc.CustomerAddress,
		"CUSTOMER_PHONE":    doc.CustomerPhone,
		"DOCUMENT_NAME":     doc.DocumentName,
		"DOCUMENT_NUMBER":   doc.DocumentNumber,
		"DOCUMENT_DATE":     doc.DocumentDate,
		"DOCUMENT_CURRENCY": doc.DocumentCurrency,
		"ITEMS":             items.String(),
		"TOTAL":             format("total", doc),
		"PAYMENTS":          payments.String(),
	}
}
