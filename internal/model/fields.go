// internal/model/fields.go
package model

import "github.com/shopspring/decimal"

// Date marks a field value that should be rendered with the configured date pattern
type Date string

// FieldSource resolves a field by its case-sensitive name. The returned value is
// a string, a Date or a decimal.Decimal. Missing fields report ok=false.
type FieldSource interface {
	Field(name string) (value any, ok bool)
}

// DocumentFields maps template field names to document getters
var DocumentFields = map[string]func(*Document) any{
	"customer_vat":      func(d *Document) any { return d.CustomerVAT },
	"customer_name":     func(d *Document) any { return d.CustomerName },
	"customer_address":  func(d *Document) any { return d.CustomerAddress },
	"customer_phone":    func(d *Document) any { return d.CustomerPhone },
	"document_name":     func(d *Document) any { return d.DocumentName },
	"document_number":   func(d *Document) any { return d.DocumentNumber },
	"document_date":     func(d *Document) any { return Date(d.DocumentDate) },
	"document_currency": func(d *Document) any { return d.DocumentCurrency },
	"delivery_barcode":  func(d *Document) any { return d.DeliveryBarcode },
	"item_count":        func(d *Document) any { return decimal.NewFromInt(int64(len(d.Items))) },
	"total":             func(d *Document) any { return d.Total() },
	"tax_total":         func(d *Document) any { return d.TaxTotal() },
	"total_with_tax":    func(d *Document) any { return d.TotalWithTax() },
	"payment_total":     func(d *Document) any { return d.PaymentTotal() },
}

// ItemFields maps template field names to line item getters
var ItemFields = map[string]func(*LineItem) any{
	"item_ref":           func(i *LineItem) any { return i.Reference },
	"item_name":          func(i *LineItem) any { return i.Name },
	"item_quantity":      func(i *LineItem) any { return i.Quantity },
	"item_price":         func(i *LineItem) any { return i.Price },
	"item_tax":           func(i *LineItem) any { return i.Tax },
	"item_discount":      func(i *LineItem) any { return i.Discount },
	"item_discount_type": func(i *LineItem) any { return i.DiscountType },
	"item_comment":       func(i *LineItem) any { return i.Comment },
	"total":              func(i *LineItem) any { return i.Total() },
	"tax_amount":         func(i *LineItem) any { return i.TaxAmount() },
	"total_with_tax":     func(i *LineItem) any { return i.TotalWithTax() },
}

// PaymentFields maps template field names to payment getters
var PaymentFields = map[string]func(*Payment) any{
	"payment_method": func(p *Payment) any { return p.Method },
	"payment_name":   func(p *Payment) any { return p.Name },
	"payment_amount": func(p *Payment) any { return p.Amount },
}

func (d *Document) Field(name string) (any, bool) {
	get, ok := DocumentFields[name]
	if !ok {
		return nil, false
	}
	return get(d), true
}

func (i *LineItem) Field(name string) (any, bool) {
	get, ok := ItemFields[name]
	if !ok {
		return nil, false
	}
	return get(i), true
}

func (p *Payment) Field(name string) (any, bool) {
	get, ok := PaymentFields[name]
	if !ok {
		return nil, false
	}
	return get(p), true
}
