// internal/printer/fiscal_handler.go
package printer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/fiscal"
	"printer-server/internal/model"
	"printer-server/internal/utils"
)

type fiscalSettings struct {
	Port            string `mapstructure:"port"`
	Model           string `mapstructure:"model"`
	BaudRate        int    `mapstructure:"baud_rate"`
	Parity          string `mapstructure:"parity"`
	Timeout         int    `mapstructure:"timeout"` // seconds
	Retries         int    `mapstructure:"retries"`
	TextWidth       int    `mapstructure:"text_width"`
	IncludeComments bool   `mapstructure:"include_comments"`
	IncludeRef      bool   `mapstructure:"include_ref"`
	Subtotal        bool   `mapstructure:"subtotal"`
	IGTF            bool   `mapstructure:"igtf"`
	NoteTitle       string `mapstructure:"note_title"`
}

// documentLabels names each operation type in response messages
var documentLabels = map[model.OperationType]string{
	model.OperationInvoice: "invoice",
	model.OperationCredit:  "credit note",
	model.OperationDebit:   "debit note",
	model.OperationNote:    "non-fiscal note",
}

// FiscalHandler drives a TFHKA or PnP fiscal printer over a serial port.
// Every device sequence runs under the handler mutex.
type FiscalHandler struct {
	baseHandler
	settings fiscalSettings
	device   fiscal.Device
	commands fiscal.Commands
	printer  *utils.PrinterLogger
	mutex    sync.Mutex
}

// NewFiscalHandler creates a handler for FISCAL_TFHKA or FISCAL_PNP
func NewFiscalHandler(kind model.HandlerType, logger *zap.Logger) *FiscalHandler {
	h := &FiscalHandler{}
	h.bind(h, kind, logger)
	return h
}

// WithDevice injects the device instead of opening a serial one
func (h *FiscalHandler) WithDevice(device fiscal.Device) *FiscalHandler {
	h.device = device
	return h
}

func (h *FiscalHandler) Initialize(ctx context.Context, settings Settings) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.initialized() {
		return true
	}

	var s fiscalSettings
	if err := settings.decode(&s); err != nil {
		h.logger.Error("Failed to read fiscal settings", zap.Error(err))
		return false
	}
	if s.Port == "" {
		h.logger.Error("Fiscal port is not configured")
		return false
	}
	if s.Model == "" {
		s.Model = string(h.kind)
	}

	h.printer = utils.NewPrinterLogger(h.logger, string(h.kind), s.Port)

	if h.device == nil {
		h.device = h.newDevice(s)
	}
	h.commands = h.newCommands(s)

	if !h.device.OpenPort(s.Port) {
		h.printer.LogConnection("open", false, fmt.Errorf("cannot open port %s", s.Port))
		return false
	}
	if !h.device.CheckPrinter() {
		h.device.ClosePort()
		h.printer.LogConnection("check", false, errors.New("printer did not answer"))
		return false
	}

	h.settings = s
	h.ready.Store(true)
	h.printer.LogConnection("open", true, nil)
	return true
}

func (h *FiscalHandler) newDevice(s fiscalSettings) fiscal.Device {
	serial := fiscal.SerialSettings{
		BaudRate: s.BaudRate,
		Parity:   s.Parity,
		Timeout:  time.Duration(s.Timeout) * time.Second,
		Retries:  s.Retries,
	}
	if h.kind == model.HandlerFiscalPNP {
		return fiscal.NewPnPDevice(serial, h.logger)
	}
	return fiscal.NewTFHKADevice(serial, h.logger)
}

func (h *FiscalHandler) newCommands(s fiscalSettings) fiscal.Commands {
	if h.kind == model.HandlerFiscalPNP {
		return fiscal.PnPCommands{IncludeComments: s.IncludeComments, NoteTitle: s.NoteTitle}
	}
	return fiscal.TFHKACommands{
		TextWidth:       s.TextWidth,
		IncludeComments: s.IncludeComments,
		IncludeRef:      s.IncludeRef,
		Subtotal:        s.Subtotal,
		IGTF:            s.IGTF,
		NoteTitle:       s.NoteTitle,
	}
}

// ProcessDocument issues the document: open, items, footer, payments, close.
// operation_type picks an invoice, a credit or debit note, or a non-fiscal
// note, which takes no payments. The first failing command aborts the
// sequence; nothing is rolled back.
func (h *FiscalHandler) ProcessDocument(ctx context.Context, doc *model.Document) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	if doc == nil {
		return model.Failure(msgMissingDocument)
	}
	if err := doc.Validate(); err != nil {
		return invalidDocument(err)
	}
	if err := ctx.Err(); err != nil {
		return model.Failure(fmt.Sprintf("Request cancelled: %v", err))
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	kind := doc.Operation()
	label := documentLabels[kind]

	op := utils.NewOperationLogger(h.logger, "fiscal_"+string(kind), doc.DocumentNumber)
	op.Start(zap.Int("items", len(doc.Items)), zap.Int("payments", len(doc.Payments)))

	fail := func(message string) model.Response {
		op.Error(errors.New(message))
		return model.Failure(message)
	}

	if !h.device.CheckPrinter() {
		return fail("Printer not responding")
	}
	status, err := h.device.ReadStatus()
	if err != nil {
		return fail(fmt.Sprintf("Failed to read printer status: %v", err))
	}
	if !fiscal.Ready(status) {
		op.Error(errors.New("printer not ready"), zap.Int("status_code", status.StatusCode), zap.Int("error_code", status.ErrorCode))
		return model.NewResponse(false,
			fmt.Sprintf("Printer not ready: %s. %s", status.StatusDescription, status.ErrorDescription),
			status.ToMap())
	}

	for _, cmd := range h.commands.OpenDocument(doc) {
		if !h.device.SendCommand(cmd) {
			return fail(fmt.Sprintf("Failed to open %s. Error code: %d", label, h.lastErrorCode()))
		}
	}

	for i, item := range doc.Items {
		for _, cmd := range h.commands.AddItem(kind, item) {
			if !h.device.SendCommand(cmd) {
				return fail(fmt.Sprintf("Failed to add item %d", i+1))
			}
		}
	}

	for _, cmd := range h.commands.Footer(doc) {
		if !h.device.SendCommand(cmd) {
			return fail("Failed to add footer")
		}
	}

	payments := doc.Payments
	if kind == model.OperationNote {
		payments = nil
	}
	for i, payment := range payments {
		last := i == len(payments)-1
		for _, cmd := range h.commands.AddPayment(payment, last) {
			if !h.device.SendCommand(cmd) {
				return fail(fmt.Sprintf("Failed to add payment %d", i+1))
			}
		}
	}

	for _, cmd := range h.commands.CloseDocument(doc) {
		if !h.device.SendCommand(cmd) {
			return fail("Failed to close " + label)
		}
	}

	status, err = h.device.ReadStatus()
	if err != nil || fiscal.DocumentOpen(status) {
		return fail("Failed to close " + label)
	}

	data := merge(h.info(), map[string]interface{}{
		"document_number": doc.DocumentNumber,
		"operation_type":  string(kind),
	}, h.counters())

	op.Success()
	return model.Success(strings.ToUpper(label[:1])+label[1:]+" closed successfully", data)
}

// lastErrorCode polls the device for the error behind a rejected command
func (h *FiscalHandler) lastErrorCode() int {
	status, err := h.device.ReadStatus()
	if err != nil {
		return fiscal.ErrorNoResponse
	}
	return status.ErrorCode
}

// counters returns the S1 block on TFHKA printers, nil elsewhere
func (h *FiscalHandler) counters() map[string]interface{} {
	if h.kind != model.HandlerFiscalTFHKA {
		return nil
	}
	s1, err := h.device.UploadS1()
	if err != nil {
		h.logger.Warn("Failed to read S1 counters", zap.Error(err))
		return nil
	}
	return s1.ToMap()
}

func (h *FiscalHandler) info() map[string]interface{} {
	return map[string]interface{}{
		"printer_model": h.settings.Model,
		"port":          h.settings.Port,
	}
}

func (h *FiscalHandler) PrintReportX(ctx context.Context) model.Response {
	return h.printReport("X")
}

func (h *FiscalHandler) PrintReportZ(ctx context.Context) model.Response {
	return h.printReport("Z")
}

func (h *FiscalHandler) printReport(name string) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	command := h.commands.ReportX()
	if name == "Z" {
		command = h.commands.ReportZ()
	}

	start := time.Now()
	if !h.device.SendCommand(command) {
		h.printer.LogOperation("report_"+name, time.Since(start), false, fmt.Errorf("%s report rejected", name))
		return model.Failure(fmt.Sprintf("Failed to print %s report", name))
	}

	h.printer.LogOperation("report_"+name, time.Since(start), true, nil)
	return model.Success(fmt.Sprintf("%s report printed successfully", name), h.info())
}

// ProcessRequest adds CANCEL, which voids a document left open on the device.
// It is only issued on request, never after a failed sequence.
func (h *FiscalHandler) ProcessRequest(ctx context.Context, method string, params map[string]interface{}) model.Response {
	if !strings.EqualFold(strings.TrimSpace(method), "CANCEL") {
		return h.baseHandler.ProcessRequest(ctx, method, params)
	}
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	start := time.Now()
	if !h.device.SendCommand(h.commands.Cancel()) {
		h.printer.LogOperation("cancel", time.Since(start), false, errors.New("cancel rejected"))
		return model.Failure(fmt.Sprintf("Failed to cancel document. Error code: %d", h.lastErrorCode()))
	}

	h.printer.LogOperation("cancel", time.Since(start), true, nil)
	return model.Success("Document cancelled", h.info())
}

// CheckStatus decodes the status and error codes through the Annex tables
func (h *FiscalHandler) CheckStatus(ctx context.Context) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	status, err := h.device.ReadStatus()
	if err != nil {
		h.logger.Warn("Failed to read printer status", zap.Error(err))
		return model.NewResponse(false, "Failed to read printer status", merge(h.info(), status.ToMap()))
	}

	return model.Success(status.StatusDescription, merge(h.info(), status.ToMap(), h.counters()))
}

// Shutdown closes the port. Calling it again is a no-op.
func (h *FiscalHandler) Shutdown() error {
	if !h.ready.CompareAndSwap(true, false) {
		return nil
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.device.ClosePort()
	h.printer.LogConnection("close", true, nil)
	return nil
}
