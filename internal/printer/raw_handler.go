// internal/printer/raw_handler.go
package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/discovery"
	"printer-server/internal/model"
	"printer-server/internal/spool"
	"printer-server/internal/utils"
)

// Spooler is the raw print-queue writer used by template handlers
type Spooler interface {
	Send(ctx context.Context, name string, data []byte) error
	Reachable(ctx context.Context, name string) bool
	Has(name string) bool
	Register(q spool.Queue)
}

// PrinterFinder resolves printer names through discovery
type PrinterFinder interface {
	Lookup(ctx context.Context, name string) (*discovery.DiscoveredPrinter, error)
	PrinterNames(ctx context.Context) ([]string, error)
}

// rawHandler renders a document to bytes and sends them to a named queue.
// MATRIZ and TICKET differ only in how they render.
type rawHandler struct {
	baseHandler
	spooler     Spooler
	finder      PrinterFinder
	printerName string
	render      func(doc *model.Document) ([]byte, error)
	printer     *utils.PrinterLogger
	mutex       sync.Mutex
}

// attach resolves the configured printer and registers a queue for it when
// discovery found it outside the configured queues.
func (h *rawHandler) attach(ctx context.Context, name string) bool {
	if name == "" {
		h.logger.Error("printer_name is not configured")
		return false
	}

	found, err := h.finder.Lookup(ctx, name)
	if err != nil {
		h.logger.Error("Printer not found", zap.String("printer_name", name), zap.Error(err))
		return false
	}

	if !h.spooler.Has(name) {
		h.spooler.Register(spool.Queue{
			Name:           found.Name,
			ConnectionType: found.ConnectionType,
			Settings:       found.ConnectionInfo,
		})
	}

	h.printerName = name
	h.printer = utils.NewPrinterLogger(h.logger, string(h.kind), name)
	h.ready.Store(true)
	h.printer.LogConnection("attach", true, nil)
	return true
}

func (h *rawHandler) ProcessDocument(ctx context.Context, doc *model.Document) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	if doc == nil {
		return model.Failure(msgMissingDocument)
	}
	if err := doc.Validate(); err != nil {
		return invalidDocument(err)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	start := time.Now()
	data, err := h.render(doc)
	if err != nil {
		h.printer.LogOperation("render", time.Since(start), false, err)
		return model.Failure(fmt.Sprintf("Failed to render document: %v", err))
	}

	if err := h.spooler.Send(ctx, h.printerName, data); err != nil {
		h.printer.LogOperation("print", time.Since(start), false, err)
		if errors.Is(err, spool.ErrUnknownQueue) {
			return model.Failure(fmt.Sprintf("Printer not found: %s", h.printerName))
		}
		return model.Failure(fmt.Sprintf("Failed to print document: %v", err))
	}

	h.printer.LogOperation("print", time.Since(start), true, nil)
	return model.Success("Document printed successfully", map[string]interface{}{
		"printer_name":    h.printerName,
		"document_number": doc.DocumentNumber,
		"bytes":           len(data),
	})
}

// CheckStatus reports whether the queue behind the printer answers
func (h *rawHandler) CheckStatus(ctx context.Context) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	data := map[string]interface{}{
		"printer_name": h.printerName,
		"handler":      string(h.kind),
	}

	if !h.spooler.Reachable(ctx, h.printerName) {
		data["online"] = false
		return model.NewResponse(false, "Printer is not reachable", data)
	}
	data["online"] = true
	return model.Success("Printer is online", data)
}

func (h *rawHandler) Shutdown() error {
	if h.ready.CompareAndSwap(true, false) {
		h.printer.LogConnection("detach", true, nil)
	}
	return nil
}
