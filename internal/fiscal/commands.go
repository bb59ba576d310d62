// internal/fiscal/commands.go
package fiscal

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"printer-server/internal/model"
)

// Commands builds the command strings for one fiscal protocol. Each step
// may expand into several device commands. Steps branch on the document's
// operation type; a non-fiscal note takes no payments.
type Commands interface {
	OpenDocument(doc *model.Document) []string
	AddItem(op model.OperationType, item model.LineItem) []string
	Footer(doc *model.Document) []string
	AddPayment(payment model.Payment, last bool) []string
	CloseDocument(doc *model.Document) []string
	ReportX() string
	ReportZ() string
	Cancel() string
}

// TFHKA command set
const (
	tfhkaReportX  = "I0X"
	tfhkaReportZ  = "I0Z"
	tfhkaSubtotal = "3"
	tfhkaCancel   = "7"
	tfhkaIGTF     = "199"
	tfhkaPayCash  = "101"

	tfhkaNoteOpen     = "800"
	tfhkaNoteBold     = "80*"
	tfhkaNoteCentered = "80!"
	tfhkaNoteComment  = "80¡"
	tfhkaNoteClose    = "810"
)

const defaultNoteTitle = "Nota"

// tfhkaRateGroups maps a tax rate to its rate group; the selector prefix
// depends on the document kind.
var tfhkaRateGroups = map[string]int{
	"0":  0,
	"12": 1,
	"16": 1,
	"8":  2,
	"22": 3,
	"31": 3,
}

var tfhkaInvoiceSelectors = [4]string{" ", "!", "\"", "#"}

// TFHKACommands builds commands for The Factory HKA printers
type TFHKACommands struct {
	TextWidth       int
	IncludeComments bool
	IncludeRef      bool
	Subtotal        bool
	IGTF            bool
	NoteTitle       string
}

func (c TFHKACommands) width() int {
	if c.TextWidth <= 0 {
		return 37
	}
	return c.TextWidth
}

func (c TFHKACommands) OpenDocument(doc *model.Document) []string {
	w := c.width()
	op := doc.Operation()
	if op == model.OperationNote {
		return c.openNote(doc)
	}

	var cmds []string
	if op == model.OperationCredit && doc.AffectedDocument != nil {
		a := doc.AffectedDocument
		cmds = append(cmds,
			"iF*"+digits(a.Number, 11),
			"iD*"+Truncate(a.Date, 10),
			"iI*"+Truncate(a.Serial, w),
		)
	}

	cmds = append(cmds,
		"iR*"+Truncate(doc.CustomerVAT, w),
		"iS*"+Truncate(doc.CustomerName, w),
	)
	if doc.CustomerAddress != "" {
		cmds = append(cmds, "i00DIR:"+Truncate(doc.CustomerAddress, w))
	}
	if doc.CustomerPhone != "" {
		cmds = append(cmds, "i01TEL:"+Truncate(doc.CustomerPhone, w))
	}
	if doc.DocumentNumber != "" {
		cmds = append(cmds, "i04REF:"+Truncate(doc.DocumentNumber, w))
	}
	if doc.DocumentDate != "" {
		cmds = append(cmds, "i05FECHA:"+Truncate(doc.DocumentDate, w))
	}
	if doc.DocumentName != "" {
		cmds = append(cmds, "i06DOC:"+Truncate(doc.DocumentName, w))
	}
	return cmds
}

// openNote opens a non-fiscal document and prints the customer block in bold
func (c TFHKACommands) openNote(doc *model.Document) []string {
	cmds := []string{tfhkaNoteOpen + Truncate(noteTitle(c.NoteTitle), c.width())}
	for _, line := range noteHeader(doc) {
		cmds = append(cmds, tfhkaNoteBold+Truncate(line, c.width()))
	}
	return cmds
}

// TaxChar maps a tax rate to the TFHKA invoice rate selector. Unknown rates are exempt.
func TaxChar(rate decimal.Decimal) string {
	return TaxSelector(model.OperationInvoice, rate)
}

// TaxSelector maps a tax rate to the item prefix for the document kind:
// invoices use " !\"#", credit notes d0-d3 and debit notes `0-`3.
func TaxSelector(op model.OperationType, rate decimal.Decimal) string {
	group := tfhkaRateGroups[rate.String()]
	switch op {
	case model.OperationCredit:
		return fmt.Sprintf("d%d", group)
	case model.OperationDebit:
		return fmt.Sprintf("`%d", group)
	}
	return tfhkaInvoiceSelectors[group]
}

func (c TFHKACommands) AddItem(op model.OperationType, item model.LineItem) []string {
	if op == model.OperationNote {
		cmds := []string{tfhkaNoteCentered + Truncate(noteItemLine("-"+item.Name, item), c.width())}
		if c.IncludeComments && item.Comment != "" {
			cmds = append(cmds, tfhkaNoteComment+Truncate(item.Comment, c.width()))
		}
		return cmds
	}

	name := item.Name
	if c.IncludeRef && item.Reference != "" {
		name = fmt.Sprintf("[%s] %s", item.Reference, item.Name)
	}

	cmds := []string{
		TaxSelector(op, item.Tax) + Scaled(item.Price, 10, 2) + Scaled(item.Quantity, 8, 3) + Truncate(name, c.width()),
	}

	if item.Discount.IsPositive() {
		sign := "-"
		if strings.Contains(item.DiscountType, "surcharge") {
			sign = "+"
		}
		if strings.Contains(item.DiscountType, "amount") {
			cmds = append(cmds, "q"+sign+Scaled(item.Discount, 9, 2))
		} else {
			cmds = append(cmds, "p"+sign+Scaled(item.Discount, 4, 2))
		}
	}

	if c.IncludeComments && item.Comment != "" {
		cmds = append(cmds, "@"+Truncate(item.Comment, c.width()))
	}
	return cmds
}

func (c TFHKACommands) Footer(doc *model.Document) []string {
	if doc.Operation() == model.OperationNote {
		return nil
	}
	var cmds []string
	for _, comment := range doc.DeliveryComments {
		cmds = append(cmds, "@"+Truncate(comment, c.width()))
	}
	if doc.DeliveryBarcode != "" {
		cmds = append(cmds, "y"+doc.DeliveryBarcode)
	}
	if c.Subtotal && len(doc.Payments) > 0 {
		cmds = append(cmds, tfhkaSubtotal)
	}
	return cmds
}

// AddPayment sends partial payments until the last one, which pays the
// remaining balance in full and closes the document on the printer.
func (c TFHKACommands) AddPayment(payment model.Payment, last bool) []string {
	code := paymentCode(payment.Method)
	if last {
		return []string{"1" + code}
	}
	return []string{"2" + code + Scaled(payment.Amount, 12, 2)}
}

func (c TFHKACommands) CloseDocument(doc *model.Document) []string {
	if doc.Operation() == model.OperationNote {
		return []string{tfhkaNoteClose + noteTotal(doc)}
	}
	var cmds []string
	if len(doc.Payments) == 0 {
		cmds = append(cmds, tfhkaPayCash)
	}
	if c.IGTF {
		cmds = append(cmds, tfhkaIGTF)
	}
	return cmds
}

func (c TFHKACommands) ReportX() string { return tfhkaReportX }
func (c TFHKACommands) ReportZ() string { return tfhkaReportZ }
func (c TFHKACommands) Cancel() string  { return tfhkaCancel }

// PnPCommands builds commands for PnP printers. Fields are separated by '|'
// and framed by PnPDevice.
type PnPCommands struct {
	IncludeComments bool
	NoteTitle       string

	// Now stamps the credit note opening; time.Now when nil
	Now func() time.Time
}

func (c PnPCommands) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c PnPCommands) OpenDocument(doc *model.Document) []string {
	name, vat := Truncate(doc.CustomerName, 38), Truncate(doc.CustomerVAT, 12)

	var cmds []string
	switch doc.Operation() {
	case model.OperationNote:
		return c.openNote(doc)
	case model.OperationCredit:
		var a model.AffectedDocument
		if doc.AffectedDocument != nil {
			a = *doc.AffectedDocument
		}
		cmds = append(cmds, fmt.Sprintf("@|%s|%s|%s|%s|%s|%s|D",
			name, vat, digits(a.Number, 10), Truncate(a.Serial, 10), Truncate(a.Date, 10), c.now().Format("1504")))
	default:
		cmds = append(cmds, fmt.Sprintf("@|%s|%s|||||T", name, vat))
	}

	if doc.CustomerAddress != "" {
		cmds = append(cmds, "A|DIR:"+Truncate(doc.CustomerAddress, 36))
	}
	if doc.CustomerPhone != "" {
		cmds = append(cmds, "A|TEL:"+Truncate(doc.CustomerPhone, 36))
	}
	if doc.DocumentNumber != "" {
		cmds = append(cmds, "A|REF:"+Truncate(doc.DocumentNumber, 36))
	}
	return cmds
}

func (c PnPCommands) openNote(doc *model.Document) []string {
	cmds := []string{"H", "I|" + Truncate(noteTitle(c.NoteTitle), 40), "I|" + noteRule}
	for _, line := range noteHeader(doc) {
		cmds = append(cmds, "I|"+Truncate(line, 40))
	}
	return append(cmds, "I|"+noteRule)
}

func (c PnPCommands) AddItem(op model.OperationType, item model.LineItem) []string {
	if op == model.OperationNote {
		cmds := []string{"I|" + Truncate(noteItemLine(item.Name, item), 40)}
		if c.IncludeComments && item.Comment != "" {
			cmds = append(cmds, "I|"+Truncate(item.Comment, 40))
		}
		return cmds
	}

	price := item.Price
	if item.Discount.IsPositive() {
		price = discounted(item)
	}

	cmds := []string{fmt.Sprintf("B|%s|%s|%s|%s|M",
		Truncate(item.Name, 20),
		item.Quantity.Shift(3).Round(0).String(),
		price.Shift(2).Round(0).String(),
		Scaled(item.Tax, 4, 2),
	)}

	if c.IncludeComments && item.Comment != "" {
		cmds = append(cmds, "A|"+Truncate(item.Comment, 40))
	}
	return cmds
}

// discounted folds a line discount into the unit price; PnP has no
// per-line discount command.
func discounted(item model.LineItem) decimal.Decimal {
	var off decimal.Decimal
	if strings.Contains(item.DiscountType, "amount") {
		if item.Quantity.IsZero() {
			return item.Price
		}
		off = item.Discount.Div(item.Quantity)
	} else {
		off = item.Price.Mul(item.Discount).Div(decimal.NewFromInt(100))
	}
	if strings.Contains(item.DiscountType, "surcharge") {
		return item.Price.Add(off)
	}
	return item.Price.Sub(off)
}

func (c PnPCommands) Footer(doc *model.Document) []string {
	prefix := "A|"
	if doc.Operation() == model.OperationNote {
		prefix = "I|"
	}
	var cmds []string
	for _, comment := range doc.DeliveryComments {
		cmds = append(cmds, prefix+Truncate(comment, 40))
	}
	return cmds
}

// AddPayment sends a partial close; methods 20-24 are foreign currency
// payments subject to IGTF.
func (c PnPCommands) AddPayment(payment model.Payment, last bool) []string {
	amount := payment.Amount.Abs().Shift(2).Round(0).String()
	if isIGTFMethod(payment.Method) {
		return []string{"E|B|" + amount}
	}
	return []string{"E|A|" + amount}
}

func isIGTFMethod(method string) bool {
	switch paymentCode(method) {
	case "20", "21", "22", "23", "24":
		return true
	}
	return false
}

func (c PnPCommands) CloseDocument(doc *model.Document) []string {
	if doc.Operation() == model.OperationNote {
		return []string{"I|" + noteTotal(doc), "J"}
	}
	return []string{"E|T"}
}

func (c PnPCommands) ReportX() string { return "9|X|T" }
func (c PnPCommands) ReportZ() string { return "9|Z|T" }
func (c PnPCommands) Cancel() string  { return "C|0" }

var noteRule = strings.Repeat("-", 40)

func noteTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return defaultNoteTitle
	}
	return title
}

// noteHeader lists the customer and document lines of a non-fiscal note,
// skipping empty values
func noteHeader(doc *model.Document) []string {
	fields := []struct{ label, value string }{
		{"RIF/CI", doc.CustomerVAT},
		{"Nombre", doc.CustomerName},
		{"Direccion", doc.CustomerAddress},
		{"Telefono", doc.CustomerPhone},
		{"Numero", doc.DocumentNumber},
		{"Fecha", doc.DocumentDate},
		{"Referencia", doc.DocumentName},
	}
	var lines []string
	for _, f := range fields {
		if v := strings.TrimSpace(f.value); v != "" {
			lines = append(lines, f.label+": "+v)
		}
	}
	return lines
}

func noteItemLine(name string, item model.LineItem) string {
	return fmt.Sprintf("%s x%s x%s Iva:%s", name, item.Quantity.String(), item.Price.StringFixed(2), item.Tax.String())
}

func noteTotal(doc *model.Document) string {
	return "Monto Total: " + doc.PaymentTotal().StringFixed(2)
}

// digits keeps the digits of s, left-padded with zeros to width
func digits(s string, width int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	n := b.String()
	if len(n) > width {
		return n[len(n)-width:]
	}
	return strings.Repeat("0", width-len(n)) + n
}
