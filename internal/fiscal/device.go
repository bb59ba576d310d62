// internal/fiscal/device.go
package fiscal

//go:generate mockgen -source=device.go -destination=mocks/mock_device.go -package=mocks

import (
	"errors"

	"printer-server/internal/model"
)

var (
	// ErrPortClosed is returned by operations issued before OpenPort
	ErrPortClosed = errors.New("fiscal port is not open")
	// ErrBadChecksum is returned when a reply fails its LRC/BCC check
	ErrBadChecksum = errors.New("fiscal reply checksum mismatch")
)

// Device is the blocking call surface of a fiscal printer
type Device interface {
	OpenPort(name string) bool
	ClosePort()
	CheckPrinter() bool
	SendCommand(cmd string) bool
	ReadStatus() (model.PrinterStatus, error)
	UploadS1() (S1Data, error)
}

// S1Data holds the fiscal counters reported after a document
type S1Data struct {
	CashierStatus       string `json:"cashier_status"`
	TotalDailySales     string `json:"total_daily_sales"`
	LastInvoiceNumber   string `json:"last_invoice_number"`
	InvoicesToday       string `json:"invoices_today"`
	LastDebitNote       string `json:"last_debit_note_number"`
	DebitNotesToday     string `json:"debit_notes_today"`
	LastCreditNote      string `json:"last_credit_note_number"`
	CreditNotesToday    string `json:"credit_notes_today"`
	LastNonFiscal       string `json:"last_non_fiscal_number"`
	NonFiscalToday      string `json:"non_fiscal_today"`
	DailyClosureCounter string `json:"daily_closure_counter"`
	FiscalReportCounter string `json:"fiscal_report_counter"`
	RIF                 string `json:"rif"`
	RegisteredSerial    string `json:"registered_serial"`
	PrinterTime         string `json:"printer_time"`
	PrinterDate         string `json:"printer_date"`
}

// ToMap returns the fields surfaced in status envelopes
func (s S1Data) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"last_invoice_number":     s.LastInvoiceNumber,
		"last_credit_note_number": s.LastCreditNote,
		"registered_serial":       s.RegisteredSerial,
		"daily_closure_counter":   s.DailyClosureCounter,
		"total_daily_sales":       s.TotalDailySales,
	}
}

// Ready reports whether the printer can open a new fiscal document
func Ready(status model.PrinterStatus) bool {
	if status.ErrorCode != ErrorNone {
		return false
	}
	switch status.StatusCode {
	case StatusTestStandby, StatusFiscalStandby, StatusNearFullStandby:
		return true
	}
	return false
}

// DocumentOpen reports whether a fiscal document is still being issued
func DocumentOpen(status model.PrinterStatus) bool {
	switch status.StatusCode {
	case StatusTestFiscal, StatusFiscalFiscal, StatusNearFullFiscal, StatusFullFiscal:
		return true
	}
	return false
}
