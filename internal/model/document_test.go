package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestDocument_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		doc := &Document{
			CustomerName: "ACME",
			CustomerVAT:  "J-12345678",
			Items:        []LineItem{{Name: "Bolt", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(2)}},
		}
		if err := doc.Validate(); err != nil {
			t.Fatalf("expected nil, got %v", err)
		}
	})

	t.Run("missing customer and items", func(t *testing.T) {
		doc := &Document{}
		err := doc.Validate()
		if err == nil {
			t.Fatalf("expected error")
		}
		if !errors.Is(err, ErrInvalidDocument) {
			t.Fatalf("expected ErrInvalidDocument, got %v", err)
		}
		var verr *ValidationError
		if !errors.As(err, &verr) || len(verr.Fields) != 3 {
			t.Fatalf("expected 3 field errors, got %v", err)
		}
	})
}

func TestDocument_UnmarshalDefaults(t *testing.T) {
	payload := `{
		"customer_vat": "V-1",
		"customer_name": "Jane",
		"unknown_field": true,
		"items": [{"item_name": "Bolt", "item_quantity": 2, "item_price": "3.25"}],
		"payments": [{"payment_method": "01", "payment_amount": 6.5}]
	}`

	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	item := doc.Items[0]
	if !item.Tax.IsZero() {
		t.Fatalf("expected zero tax, got %s", item.Tax)
	}
	if !item.Total().Equal(decimal.RequireFromString("6.5")) {
		t.Fatalf("expected total 6.5, got %s", item.Total())
	}
	if !doc.PaymentTotal().Equal(decimal.RequireFromString("6.5")) {
		t.Fatalf("expected payment total 6.5, got %s", doc.PaymentTotal())
	}
}

func TestLineItem_TaxAmount(t *testing.T) {
	item := LineItem{
		Quantity: decimal.NewFromInt(2),
		Price:    decimal.NewFromInt(50),
		Tax:      decimal.NewFromInt(16),
	}

	if !item.TaxAmount().Equal(decimal.NewFromInt(16)) {
		t.Fatalf("expected tax 16, got %s", item.TaxAmount())
	}
	if !item.TotalWithTax().Equal(decimal.NewFromInt(116)) {
		t.Fatalf("expected 116, got %s", item.TotalWithTax())
	}
}

func TestFieldLookup(t *testing.T) {
	item := &LineItem{Name: "Bolt"}

	v, ok := item.Field("item_name")
	if !ok || v != "Bolt" {
		t.Fatalf("expected Bolt, got %v (%v)", v, ok)
	}
	if _, ok := item.Field("Item_Name"); ok {
		t.Fatalf("lookup must be case-sensitive")
	}

	doc := &Document{DocumentDate: "2024-05-01"}
	v, _ = doc.Field("document_date")
	if _, isDate := v.(Date); !isDate {
		t.Fatalf("expected Date value, got %T", v)
	}
}

func TestDocument_OperationType(t *testing.T) {
	base := func() *Document {
		return &Document{
			CustomerName: "ACME",
			CustomerVAT:  "J-12345678",
			Items:        []LineItem{{Name: "Bolt", Quantity: decimal.NewFromInt(1), Price: decimal.NewFromInt(2)}},
		}
	}

	tests := []struct {
		name     string
		op       OperationType
		affected *AffectedDocument
		want     OperationType
		valid    bool
	}{
		{"empty is invoice", "", nil, OperationInvoice, true},
		{"mixed case debit", "Debit", nil, OperationDebit, true},
		{"note", "note", nil, OperationNote, true},
		{"credit with affected", "credit", &AffectedDocument{Number: "00000123"}, OperationCredit, true},
		{"credit without affected", "credit", nil, OperationCredit, false},
		{"unknown", "receipt", nil, OperationInvoice, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := base()
			doc.OperationType = tt.op
			doc.AffectedDocument = tt.affected

			if got := doc.Operation(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
			if err := doc.Validate(); (err == nil) != tt.valid {
				t.Fatalf("expected valid=%v, got %v", tt.valid, err)
			}
		})
	}
}

func TestDocument_KeepsRawBody(t *testing.T) {
	payload := `{"odoo_id":7,"customer_name":"Jane","items":[{"item_price":10.50}]}`

	var doc Document
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(doc.Raw()) != payload {
		t.Fatalf("expected raw body %s, got %s", payload, doc.Raw())
	}
	if doc.CustomerName != "Jane" || !doc.Items[0].Price.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("fields not decoded: %+v", doc)
	}

	if (&Document{}).Raw() != nil {
		t.Fatalf("expected nil raw body for a document built in code")
	}
}
