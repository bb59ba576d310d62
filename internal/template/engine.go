// internal/template/engine.go
package template

import (
	"fmt"
	"strconv"
	"strings"

	"printer-server/internal/escpos"
	"printer-server/internal/model"
)

// Dialect is the set of primitives a printer command language must provide
type Dialect interface {
	Init() []byte
	Cut() []byte
	NewLine() []byte
	Feed(lines int) []byte
	LineSpacing(n int) []byte
	ResetLineSpacing() []byte
	Align(align string) []byte
	Bold(on bool) []byte
	Condensed(on bool) []byte
	Text(s string) []byte
	Separator() []byte
}

// Graphics is implemented by dialects that can print barcodes, QR codes and images
type Graphics interface {
	Barcode(data string, opts escpos.BarcodeOptions) ([]byte, error)
	QRCode(data string, opts escpos.QROptions) ([]byte, error)
	QRImage(data string, opts escpos.QROptions, maxWidth int) ([]byte, error)
	ImageFile(path string, maxWidth int) ([]byte, error)
}

// LogoOptions controls the optional header image
type LogoOptions struct {
	Enabled  bool
	Path     string
	MaxWidth int
}

// BarcodeOptions controls barcode sections
type BarcodeOptions struct {
	Enabled bool
	escpos.BarcodeOptions
}

// QROptions controls qr sections. Mode "image" rasterizes the code instead
// of sending the native command.
type QROptions struct {
	Enabled  bool
	Mode     string
	MaxWidth int
	escpos.QROptions
}

// Options carries the formatting and feature settings used while rendering
type Options struct {
	Number     NumberFormat
	DateFormat string
	Condensed  bool
	Logo       LogoOptions
	Barcode    BarcodeOptions
	QR         QROptions
}

// Engine renders templates against documents. It is safe for concurrent use.
type Engine struct {
	dialect Dialect
	opts    Options
}

// NewEngine creates an engine for the given command dialect
func NewEngine(dialect Dialect, opts Options) *Engine {
	return &Engine{dialect: dialect, opts: opts}
}

// Render walks the template sections in order and returns the command buffers.
// The output depends only on the template, the document and the options.
func (e *Engine) Render(t *Template, doc *model.Document) ([][]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("template is nil")
	}
	if doc == nil {
		return nil, fmt.Errorf("document is nil")
	}

	out := [][]byte{e.dialect.Init()}
	if e.opts.Condensed {
		out = append(out, e.dialect.Condensed(true))
	}

	if e.opts.Logo.Enabled && e.opts.Logo.Path != "" {
		g, ok := e.dialect.(Graphics)
		if ok {
			logo, err := g.ImageFile(e.opts.Logo.Path, e.opts.Logo.MaxWidth)
			if err != nil {
				return nil, fmt.Errorf("failed to load logo: %w", err)
			}
			out = append(out, e.dialect.Align("center"), logo, e.dialect.NewLine())
		}
	}

	for i, section := range t.Sections {
		buffers, err := e.renderSection(i, section, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, buffers...)
	}

	if e.opts.Condensed {
		out = append(out, e.dialect.Condensed(false))
	}
	return out, nil
}

func (e *Engine) renderSection(index int, s Section, doc *model.Document) ([][]byte, error) {
	switch s.Type {
	case SectionInit, SectionFinish:
		return e.renderCommands(index, s)

	case SectionHeader, SectionCustomer, SectionTotals, SectionFooter:
		out := [][]byte{e.dialect.Align(alignOr(s.Align, "left"))}
		if s.Header != nil {
			lines, err := e.renderLine(index, s, *s.Header, doc)
			if err != nil {
				return nil, err
			}
			out = append(out, lines...)
		}
		for _, item := range s.Items {
			lines, err := e.renderLine(index, s, item, doc)
			if err != nil {
				return nil, err
			}
			out = append(out, lines...)
		}
		return out, nil

	case SectionItems:
		sources := make([]model.FieldSource, len(doc.Items))
		for i := range doc.Items {
			sources[i] = &doc.Items[i]
		}
		return e.renderList(index, s, doc, sources)

	case SectionPayments:
		sources := make([]model.FieldSource, len(doc.Payments))
		for i := range doc.Payments {
			sources[i] = &doc.Payments[i]
		}
		return e.renderList(index, s, doc, sources)

	case SectionBarcode:
		if !e.opts.Barcode.Enabled {
			return nil, nil
		}
		return e.renderCode(index, s, doc)

	case SectionQR:
		if !e.opts.QR.Enabled {
			return nil, nil
		}
		return e.renderCode(index, s, doc)

	default:
		return nil, nil
	}
}

func (e *Engine) renderList(index int, s Section, doc *model.Document, sources []model.FieldSource) ([][]byte, error) {
	out := [][]byte{e.dialect.Align(alignOr(s.Align, "left"))}
	if s.Header != nil {
		lines, err := e.renderLine(index, s, *s.Header, doc)
		if err != nil {
			return nil, err
		}
		out = append(out, lines...)
	}

	for _, src := range sources {
		for _, format := range s.ItemFormat {
			lines, err := e.renderLine(index, s, format, src)
			if err != nil {
				return nil, err
			}
			out = append(out, lines...)
		}
	}
	return out, nil
}

func (e *Engine) renderLine(index int, s Section, item TextItem, src model.FieldSource) ([][]byte, error) {
	if item.Type == "line" {
		return [][]byte{e.dialect.Separator()}, nil
	}
	if item.Text == nil {
		return nil, &RenderError{Index: index, Type: s.Type, Reason: "text item has no text"}
	}
	if ShouldSkip(item.Condition, src) {
		return nil, nil
	}

	text := e.dialect.Text(e.Substitute(*item.Text, src))
	if item.Style == "bold" {
		return [][]byte{e.dialect.Bold(true), text, e.dialect.Bold(false)}, nil
	}
	return [][]byte{text}, nil
}

func (e *Engine) renderCode(index int, s Section, doc *model.Document) ([][]byte, error) {
	if s.Text == nil {
		return nil, &RenderError{Index: index, Type: s.Type, Reason: "section has no text"}
	}
	g, ok := e.dialect.(Graphics)
	if !ok {
		return nil, nil
	}

	data := e.Substitute(*s.Text, doc)
	if data == "" {
		return nil, nil
	}

	var code []byte
	var err error
	switch {
	case s.Type == SectionBarcode:
		code, err = g.Barcode(data, e.opts.Barcode.BarcodeOptions)
	case strings.EqualFold(e.opts.QR.Mode, "image"):
		code, err = g.QRImage(data, e.opts.QR.QROptions, e.opts.QR.MaxWidth)
	default:
		code, err = g.QRCode(data, e.opts.QR.QROptions)
	}
	if err != nil {
		return nil, &RenderError{Index: index, Type: s.Type, Reason: err.Error()}
	}

	return [][]byte{e.dialect.Align(alignOr(s.Align, "center")), code, e.dialect.NewLine()}, nil
}

func (e *Engine) renderCommands(index int, s Section) ([][]byte, error) {
	out := make([][]byte, 0, len(s.Commands))
	for _, raw := range s.Commands {
		name, param, hasParam := strings.Cut(strings.TrimSpace(raw), ":")

		numeric := func() (int, error) {
			if !hasParam {
				return 0, &RenderError{Index: index, Type: s.Type, Reason: fmt.Sprintf("command %s needs a parameter", name)}
			}
			n, err := strconv.Atoi(strings.TrimSpace(param))
			if err != nil || n < 0 || n > 255 {
				return 0, &RenderError{Index: index, Type: s.Type, Reason: fmt.Sprintf("invalid parameter for %s: %q", name, param)}
			}
			return n, nil
		}

		switch name {
		case "Init":
			out = append(out, e.dialect.Init())
		case "Cut":
			out = append(out, e.dialect.Cut())
		case "NewLine":
			out = append(out, e.dialect.NewLine())
		case "ResetLineSpacing":
			out = append(out, e.dialect.ResetLineSpacing())
		case "Feed":
			n, err := numeric()
			if err != nil {
				return nil, err
			}
			out = append(out, e.dialect.Feed(n))
		case "SetLineSpacing":
			n, err := numeric()
			if err != nil {
				return nil, err
			}
			out = append(out, e.dialect.LineSpacing(n))
		default:
			return nil, &RenderError{Index: index, Type: s.Type, Reason: fmt.Sprintf("unknown command %q", raw)}
		}
	}
	return out, nil
}

// Concat joins rendered buffers into a single device payload
func Concat(buffers [][]byte) []byte {
	n := 0
	for _, b := range buffers {
		n += len(b)
	}
	out := make([]byte, 0, n)
	for _, b := range buffers {
		out = append(out, b...)
	}
	return out
}

func alignOr(align, fallback string) string {
	if align == "" {
		return fallback
	}
	return align
}
