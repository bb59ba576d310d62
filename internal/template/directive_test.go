package template

import (
	"bytes"
	"strings"
	"testing"

	"printer-server/internal/escpos"
	"printer-server/internal/matrix"
)

func TestEngine_RenderText_Matrix(t *testing.T) {
	engine := NewEngine(matrix.NewEncoder(0), testOptions())
	tmpl := &TextTemplate{Source: strings.Join([]string{
		"[center]",
		"{{DOCUMENT_NAME}} {{DOCUMENT_NUMBER}}",
		"[/center]",
		"Customer: {{CUSTOMER_NAME}}",
		"",
		"[condensed]",
		"[table]",
		"{{ITEMS}}",
		"[/table]",
		"TOTAL {{TOTAL}}",
	}, "\n")}

	buffers, err := engine.RenderText(tmpl, testDocument(), ItemsTable)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := Concat(buffers)

	if !bytes.HasPrefix(out, []byte{0x1B, 0x40, 0x1B, 0x61, 0x01}) {
		t.Fatalf("expected init and center, got % X", out[:5])
	}
	if !bytes.Contains(out, []byte("INVOICE 0001\r\n")) {
		t.Fatalf("legacy variables not replaced")
	}
	if !bytes.Contains(out, []byte{0x0F, 0x1B, 0x32}) {
		t.Fatalf("expected condensed then 1/6 spacing")
	}
	if !bytes.Contains(out, []byte("Bolt")) || !bytes.Contains(out, []byte("25.00")) {
		t.Fatalf("table rows not rendered")
	}
	if !bytes.Contains(out, []byte("TOTAL 28.00\r\n")) {
		t.Fatalf("total not rendered")
	}
	// condensed was never closed explicitly
	if !bytes.HasSuffix(out, []byte("TOTAL 28.00\r\n\x12")) {
		t.Fatalf("expected condensed to be restored, tail % X", out[len(out)-4:])
	}
}

func TestEngine_RenderText_RestoresInReverseOrder(t *testing.T) {
	engine := NewEngine(escpos.NewEncoder(0), testOptions())
	tmpl := &TextTemplate{Source: "[center]\n[bold]\n[condensed]\nhello"}

	buffers, err := engine.RenderText(tmpl, testDocument(), ItemsTwoLine)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := Concat(buffers)

	tail := []byte{
		0x1B, 0x21, 0x00, // condensed off
		0x1B, 0x45, 0x00, // bold off
		0x1B, 0x61, 0x00, // align left
	}
	if !bytes.HasSuffix(out, tail) {
		t.Fatalf("unexpected restore sequence % X", out)
	}
}

func TestEngine_RenderText_Ticket(t *testing.T) {
	engine := NewEngine(escpos.NewEncoder(0), testOptions())
	tmpl := &TextTemplate{Source: "**{{CUSTOMER_NAME}}**\n[right]\n{{PAYMENTS}}\n[/right]\n[unknown]"}

	buffers, err := engine.RenderText(tmpl, testDocument(), ItemsTwoLine)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := Concat(buffers)

	bold := append(append([]byte{0x1B, 0x45, 0x01}, "ACME\n"...), 0x1B, 0x45, 0x00)
	if !bytes.Contains(out, bold) {
		t.Fatalf("bold line not found")
	}
	if !bytes.Contains(out, []byte("Cash")) {
		t.Fatalf("payments not rendered")
	}
	if !bytes.Contains(out, []byte("[unknown]\n")) {
		t.Fatalf("unknown directives print as text")
	}
}

func TestEngine_RenderText_DataIsNotDirective(t *testing.T) {
	engine := NewEngine(escpos.NewEncoder(0), testOptions())
	doc := testDocument()
	doc.CustomerName = "[condensed]"
	doc.Items[0].Name = "[bold]"
	tmpl := &TextTemplate{Source: "{{CUSTOMER_NAME}}\n    indented line   \n{{ITEMS}}"}

	buffers, err := engine.RenderText(tmpl, doc, ItemsTwoLine)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := Concat(buffers)

	if !bytes.Contains(out, []byte("[condensed]\n")) || !bytes.Contains(out, []byte("[bold]")) {
		t.Fatalf("document values must print as text, got %q", out)
	}
	if bytes.Contains(out, []byte{0x1B, 0x21, 0x01}) || bytes.Contains(out, []byte{0x1B, 0x45, 0x01}) {
		t.Fatalf("document values switched a mode on: %q", out)
	}
	if !bytes.Contains(out, []byte("\n    indented line\n")) {
		t.Fatalf("expected indentation kept and trailing blanks dropped, got %q", out)
	}
}

func TestReplaceVariables(t *testing.T) {
	got := ReplaceVariables("Hi {{NAME}}, {{NAME}}! {{OTHER}}", map[string]string{"NAME": "Ana"})
	if got != "Hi Ana, Ana! {{OTHER}}" {
		t.Fatalf("unexpected %q", got)
	}
}
