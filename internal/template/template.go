// internal/template/template.go
package template

import (
	"encoding/json"
	"fmt"
	"os"
)

// Section types understood by the engine
const (
	SectionInit     = "init"
	SectionHeader   = "header"
	SectionCustomer = "customer"
	SectionItems    = "items"
	SectionPayments = "payments"
	SectionTotals   = "totals"
	SectionFooter   = "footer"
	SectionBarcode  = "barcode"
	SectionQR       = "qr"
	SectionFinish   = "finish"
)

// Template is an ordered list of sections loaded from JSON
type Template struct {
	Sections []Section `json:"sections"`
}

// Section is one block of the printed document
type Section struct {
	Type       string     `json:"type"`
	Align      string     `json:"align,omitempty"`
	Header     *TextItem  `json:"header,omitempty"`
	Items      []TextItem `json:"items,omitempty"`
	ItemFormat []TextItem `json:"itemFormat,omitempty"`
	Commands   []string   `json:"commands,omitempty"`
	Text       *string    `json:"text,omitempty"` // barcode and qr data
}

// TextItem is a single output line. Text is a pointer so a missing field can be told apart from "".
type TextItem struct {
	Text      *string `json:"text,omitempty"`
	Style     string  `json:"style,omitempty"`
	Condition string  `json:"condition,omitempty"`
	Type      string  `json:"type,omitempty"`
}

// Load reads a JSON template from disk
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a JSON template
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}
	if len(t.Sections) == 0 {
		return nil, fmt.Errorf("template has no sections")
	}
	return &t, nil
}

// RenderError reports a malformed section found while rendering
type RenderError struct {
	Index  int
	Type   string
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("template section %d (%s): %s", e.Index, e.Type, e.Reason)
}
