package template

import (
	"bytes"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"printer-server/internal/escpos"
	"printer-server/internal/model"
)

const ticketJSON = `{
  "sections": [
    {"type": "init", "commands": ["SetLineSpacing:30"]},
    {"type": "header", "align": "center", "header": {"text": "{document_name} {document_number}", "style": "bold"},
     "items": [{"text": "Date: {document_date}"}, {"type": "line"}]},
    {"type": "customer", "items": [{"text": "Customer: {customer_name}"}, {"text": "Phone: {customer_phone}", "condition": "customer_phone != ''"}]},
    {"type": "items", "header": {"text": "ITEMS"}, "itemFormat": [
      {"text": "{item_name}"},
      {"text": "{item_quantity:N0} x {item_price} = {total}"},
      {"text": "Discount {item_discount}%", "condition": "item_discount > 0"}
    ]},
    {"type": "payments", "itemFormat": [{"text": "{payment_name}: {payment_amount}"}]},
    {"type": "totals", "align": "right", "items": [{"text": "TOTAL {total_with_tax}", "style": "bold"}]},
    {"type": "signature", "items": [{"text": "ignored"}]},
    {"type": "barcode", "text": "{document_number}"},
    {"type": "qr", "text": "{customer_vat}-{document_number}"},
    {"type": "finish", "commands": ["Feed:3", "Cut"]}
  ]
}`

func testDocument() *model.Document {
	return &model.Document{
		CustomerVAT:    "J-123",
		CustomerName:   "ACME",
		DocumentName:   "INVOICE",
		DocumentNumber: "0001",
		DocumentDate:   "2024-05-01",
		Items: []model.LineItem{
			{Name: "Bolt", Quantity: decimal.NewFromInt(2), Price: decimal.RequireFromString("12.5"), Tax: decimal.NewFromInt(16)},
			{Name: "Nut", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(3), Discount: decimal.NewFromInt(5)},
		},
		Payments: []model.Payment{
			{Method: "01", Name: "Cash", Amount: decimal.NewFromInt(20)},
			{Method: "02", Name: "Card", Amount: decimal.NewFromInt(12)},
		},
	}
}

func testOptions() Options {
	return Options{
		Number:     NumberFormat{Decimals: 2, DecimalSeparator: ".", ThousandsSeparator: ","},
		DateFormat: "dd/MM/yyyy",
	}
}

func TestEngine_Render(t *testing.T) {
	tmpl, err := Parse([]byte(ticketJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	engine := NewEngine(escpos.NewEncoder(0), testOptions())

	first, err := engine.Render(tmpl, testDocument())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, err := engine.Render(tmpl, testDocument())
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	a, b := Concat(first), Concat(second)
	if len(a) == 0 {
		t.Fatalf("expected output")
	}
	if !bytes.Equal(a, b) {
		t.Fatalf("render is not deterministic")
	}

	t.Run("starts with init", func(t *testing.T) {
		if !bytes.HasPrefix(a, []byte{0x1B, 0x40}) {
			t.Fatalf("expected init, got % X", a[:2])
		}
	})

	t.Run("substitutes fields", func(t *testing.T) {
		for _, want := range []string{
			"INVOICE 0001\n",
			"Date: 01/05/2024\n",
			"2 x 12.50 = 25.00\n",
			"Cash: 20.00\n",
			"TOTAL 32.00\n",
		} {
			if !bytes.Contains(a, []byte(want)) {
				t.Fatalf("expected %q in output", want)
			}
		}
	})

	t.Run("applies skip predicates", func(t *testing.T) {
		if bytes.Contains(a, []byte("Phone:")) {
			t.Fatalf("empty phone line must be skipped")
		}
		if bytes.Count(a, []byte("Discount")) != 1 {
			t.Fatalf("expected exactly one discount line")
		}
	})

	t.Run("wraps bold lines", func(t *testing.T) {
		want := append(append([]byte{0x1B, 0x45, 0x01}, "TOTAL 32.00\n"...), 0x1B, 0x45, 0x00)
		if !bytes.Contains(a, want) {
			t.Fatalf("bold total not found")
		}
	})

	t.Run("skips disabled features and unknown sections", func(t *testing.T) {
		if bytes.Contains(a, []byte{0x1D, 0x6B}) {
			t.Fatalf("barcode must not render when disabled")
		}
		if bytes.Contains(a, []byte("ignored")) {
			t.Fatalf("unknown section must be a no-op")
		}
	})

	t.Run("ends with finish commands", func(t *testing.T) {
		if !bytes.HasSuffix(a, []byte{0x1B, 0x64, 0x03, 0x1D, 0x56, 0x41, 0x0A}) {
			t.Fatalf("unexpected tail % X", a[len(a)-7:])
		}
	})
}

func TestEngine_RenderFeatures(t *testing.T) {
	tmpl, err := Parse([]byte(ticketJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	opts := testOptions()
	opts.Condensed = true
	opts.Barcode = BarcodeOptions{Enabled: true, BarcodeOptions: escpos.BarcodeOptions{Symbology: "CODE128", Height: 64, Width: 2, HRI: true}}
	opts.QR = QROptions{Enabled: true, QROptions: escpos.QROptions{Size: 4, ErrorCorrection: "M"}}

	buffers, err := NewEngine(escpos.NewEncoder(0), opts).Render(tmpl, testDocument())
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := Concat(buffers)

	if !bytes.Contains(out, []byte{0x1D, 0x6B, 73, 4, '0', '0', '0', '1'}) {
		t.Fatalf("barcode not rendered")
	}
	if !bytes.Contains(out, []byte("J-123-0001")) {
		t.Fatalf("qr data not rendered")
	}
	if !bytes.Equal(buffers[1], []byte{0x1B, 0x21, 0x01}) {
		t.Fatalf("expected condensed mode after init")
	}
	if !bytes.Equal(buffers[len(buffers)-1], []byte{0x1B, 0x21, 0x00}) {
		t.Fatalf("expected normal mode at the end")
	}
}

func TestEngine_RenderErrors(t *testing.T) {
	engine := NewEngine(escpos.NewEncoder(0), testOptions())

	t.Run("missing text", func(t *testing.T) {
		tmpl, err := Parse([]byte(`{"sections":[{"type":"header","items":[{"style":"bold"}]}]}`))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		_, err = engine.Render(tmpl, testDocument())
		var rerr *RenderError
		if !errors.As(err, &rerr) {
			t.Fatalf("expected RenderError, got %v", err)
		}
		if rerr.Type != "header" {
			t.Fatalf("unexpected section type %s", rerr.Type)
		}
	})

	t.Run("bad command parameter", func(t *testing.T) {
		tmpl, err := Parse([]byte(`{"sections":[{"type":"finish","commands":["Feed:x"]}]}`))
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if _, err := engine.Render(tmpl, testDocument()); err == nil {
			t.Fatalf("expected error")
		}
	})

	t.Run("logo read failure", func(t *testing.T) {
		opts := testOptions()
		opts.Logo = LogoOptions{Enabled: true, Path: "does-not-exist.png", MaxWidth: 380}
		tmpl, _ := Parse([]byte(`{"sections":[{"type":"finish","commands":["Cut"]}]}`))
		if _, err := NewEngine(escpos.NewEncoder(0), opts).Render(tmpl, testDocument()); err == nil {
			t.Fatalf("expected logo error")
		}
	})

	t.Run("empty template", func(t *testing.T) {
		if _, err := Parse([]byte(`{"sections":[]}`)); err == nil {
			t.Fatalf("expected error")
		}
	})
}
