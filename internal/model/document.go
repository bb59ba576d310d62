// internal/model/document.go
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// OperationType selects the fiscal document kind. Empty means invoice.
type OperationType string

const (
	OperationInvoice OperationType = "invoice"
	OperationCredit  OperationType = "credit"
	OperationDebit   OperationType = "debit"
	OperationNote    OperationType = "note"
)

// ParseOperationType accepts the four kinds case-insensitively
func ParseOperationType(s string) (OperationType, bool) {
	switch op := OperationType(strings.ToLower(strings.TrimSpace(s))); op {
	case "":
		return OperationInvoice, true
	case OperationInvoice, OperationCredit, OperationDebit, OperationNote:
		return op, true
	}
	return "", false
}

// AffectedDocument identifies the invoice a credit note refers to
type AffectedDocument struct {
	Number string `json:"affected_number"`
	Date   string `json:"affected_date"`
	Serial string `json:"affected_serial"`
}

// Document is the generic payload submitted for printing
type Document struct {
	OperationType    OperationType     `json:"operation_type,omitempty"`
	AffectedDocument *AffectedDocument `json:"affected_document,omitempty"`

	CustomerVAT      string `json:"customer_vat"`
	CustomerName     string `json:"customer_name"`
	CustomerAddress  string `json:"customer_address"`
	CustomerPhone    string `json:"customer_phone"`
	DocumentName     string `json:"document_name"`
	DocumentNumber   string `json:"document_number"`
	DocumentDate     string `json:"document_date"`
	DocumentCurrency string `json:"document_currency"`

	Items    []LineItem `json:"items"`
	Payments []Payment  `json:"payments"`

	DeliveryComments []string `json:"delivery_comments,omitempty"`
	DeliveryBarcode  string   `json:"delivery_barcode,omitempty"`

	raw json.RawMessage
}

// UnmarshalJSON keeps the request body so it can be forwarded untouched
func (d *Document) UnmarshalJSON(data []byte) error {
	type plain Document
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*d = Document(p)
	d.raw = append(json.RawMessage(nil), data...)
	return nil
}

// Raw returns the JSON the document was decoded from, nil when it was built in code
func (d *Document) Raw() json.RawMessage {
	return d.raw
}

// LineItem is a single document line. Tax and discount are zero when absent.
type LineItem struct {
	Reference    string          `json:"item_ref"`
	Name         string          `json:"item_name"`
	Quantity     decimal.Decimal `json:"item_quantity"`
	Price        decimal.Decimal `json:"item_price"`
	Tax          decimal.Decimal `json:"item_tax"`
	Discount     decimal.Decimal `json:"item_discount"`
	DiscountType string          `json:"item_discount_type"`
	Comment      string          `json:"item_comment"`
}

// Payment is a single tender applied to the document
type Payment struct {
	Method string          `json:"payment_method"`
	Name   string          `json:"payment_name"`
	Amount decimal.Decimal `json:"payment_amount"`
}

// Operation returns the normalized operation type, invoice when unset or unknown
func (d *Document) Operation() OperationType {
	if op, ok := ParseOperationType(string(d.OperationType)); ok {
		return op
	}
	return OperationInvoice
}

// Total returns quantity × price
func (i LineItem) Total() decimal.Decimal {
	return i.Quantity.Mul(i.Price)
}

// TaxAmount returns the tax charged on the line total
func (i LineItem) TaxAmount() decimal.Decimal {
	return i.Total().Mul(i.Tax).Div(hundred)
}

// TotalWithTax returns the line total plus its tax
func (i LineItem) TotalWithTax() decimal.Decimal {
	return i.Total().Add(i.TaxAmount())
}

// Total returns the sum of all line totals before tax
func (d *Document) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range d.Items {
		sum = sum.Add(item.Total())
	}
	return sum
}

// TaxTotal returns the sum of all line taxes
func (d *Document) TaxTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, item := range d.Items {
		sum = sum.Add(item.TaxAmount())
	}
	return sum
}

// TotalWithTax returns the grand total
func (d *Document) TotalWithTax() decimal.Decimal {
	return d.Total().Add(d.TaxTotal())
}

// PaymentTotal returns the sum of all payment amounts
func (d *Document) PaymentTotal() decimal.Decimal {
	sum := decimal.Zero
	for _, p := range d.Payments {
		sum = sum.Add(p.Amount)
	}
	return sum
}

// ErrInvalidDocument is wrapped by every validation failure
var ErrInvalidDocument = errors.New("invalid document")

// ValidationError lists the fields that failed validation
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document: %s", strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidDocument
}

// Validate checks the fields required before any device interaction
func (d *Document) Validate() error {
	var fields []string

	if strings.TrimSpace(d.CustomerName) == "" {
		fields = append(fields, "customer_name is required")
	}
	if strings.TrimSpace(d.CustomerVAT) == "" {
		fields = append(fields, "customer_vat is required")
	}
	if len(d.Items) == 0 {
		fields = append(fields, "at least one item is required")
	}
	op, ok := ParseOperationType(string(d.OperationType))
	if !ok {
		fields = append(fields, "operation_type must be one of invoice, credit, debit, note")
	}
	if op == OperationCredit && (d.AffectedDocument == nil || strings.TrimSpace(d.AffectedDocument.Number) == "") {
		fields = append(fields, "affected_document.affected_number is required for credit notes")
	}
	for i, item := range d.Items {
		if item.Quantity.IsNegative() {
			fields = append(fields, fmt.Sprintf("items[%d].item_quantity must not be negative", i))
		}
		if item.Price.IsNegative() {
			fields = append(fields, fmt.Sprintf("items[%d].item_price must not be negative", i))
		}
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
