// internal/printer/manager.go
package printer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/config"
	"printer-server/internal/model"
)

const msgNoHandler = "No handler configured"

// EventPublisher receives the events emitted by manager operations
type EventPublisher interface {
	Publish(event model.PrinterEvent)
}

// HistoryHandler is implemented by handlers that keep a document history
type HistoryHandler interface {
	History() []HistoryEntry
	ClearHistory() int
}

// Manager owns the single active handler. Every operation is shielded so a
// panic in a handler becomes a failed envelope instead of a dead request.
type Manager struct {
	handler   Handler
	settings  Settings
	finder    PrinterFinder
	publisher EventPublisher
	startTime time.Time
	logger    *zap.Logger
	closeOnce sync.Once
}

// NewManager builds the handler selected by the configuration
func NewManager(registry *Registry, finder PrinterFinder, cfg *config.Config, logger *zap.Logger) (*Manager, error) {
	m := &Manager{
		finder:    finder,
		startTime: time.Now(),
		logger:    logger.With(zap.String("component", "printer_manager")),
	}

	handlerType := cfg.HandlerType()
	handler, err := registry.Create(handlerType)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s handler: %w", handlerType, err)
	}

	m.handler = handler
	m.settings = Settings(cfg.HandlerSettings(handlerType))
	return m, nil
}

// WithPublisher sets the event sink
func (m *Manager) WithPublisher(publisher EventPublisher) *Manager {
	m.publisher = publisher
	return m
}

// Initialize connects the handler. A failed initialization leaves the
// manager serving "not initialized" envelopes.
func (m *Manager) Initialize(ctx context.Context) error {
	if m.handler == nil {
		return errors.New(msgNoHandler)
	}

	handlerType := m.handler.Type()
	if !m.handler.Initialize(ctx, m.settings) {
		return fmt.Errorf("%s handler failed to initialize: %w", handlerType, ErrNotInitialized)
	}

	m.logger.Info("Printer handler initialized", zap.String("handler", string(handlerType)))
	m.publish(model.EventHandlerReady, nil)
	return nil
}

// run executes one handler operation with panic recovery
func (m *Manager) run(operation string, fn func(Handler) model.Response) (response model.Response) {
	if m.handler == nil {
		return model.Failure(msgNoHandler)
	}

	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Printer operation panicked",
				zap.String("operation", operation),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			response = model.Failure(fmt.Sprintf("Unexpected error during %s", operation))
		}
	}()

	return fn(m.handler)
}

func (m *Manager) ProcessDocument(ctx context.Context, doc *model.Document) model.Response {
	response := m.run("document", func(h Handler) model.Response {
		return h.ProcessDocument(ctx, doc)
	})

	eventType := model.EventDocumentProcessed
	if !response.Success {
		eventType = model.EventDocumentFailed
	}
	data := map[string]interface{}{"message": response.Message}
	if doc != nil {
		data["document_number"] = doc.DocumentNumber
	}
	m.publish(eventType, data)
	return response
}

func (m *Manager) PrintReportX(ctx context.Context) model.Response {
	response := m.run("report_x", func(h Handler) model.Response {
		return h.PrintReportX(ctx)
	})
	m.publishReport("X", response)
	return response
}

func (m *Manager) PrintReportZ(ctx context.Context) model.Response {
	response := m.run("report_z", func(h Handler) model.Response {
		return h.PrintReportZ(ctx)
	})
	m.publishReport("Z", response)
	return response
}

func (m *Manager) CheckStatus(ctx context.Context) model.Response {
	response := m.run("status", func(h Handler) model.Response {
		return h.CheckStatus(ctx)
	})
	m.publish(model.EventStatusChecked, map[string]interface{}{
		"success": response.Success,
		"message": response.Message,
	})
	return response
}

func (m *Manager) ProcessRequest(ctx context.Context, method string, params map[string]interface{}) model.Response {
	response := m.run("request", func(h Handler) model.Response {
		return h.ProcessRequest(ctx, method, params)
	})

	eventType := model.EventRequestProcessed
	if !response.Success {
		eventType = model.EventRequestFailed
	}
	m.publish(eventType, map[string]interface{}{
		"method":  method,
		"message": response.Message,
	})
	return response
}

// History returns the test printer history
func (m *Manager) History() model.Response {
	return m.run("history", func(h Handler) model.Response {
		history, ok := h.(HistoryHandler)
		if !ok {
			return model.Failure(fmt.Sprintf("History is not available for %s handler", h.Type()))
		}
		entries := history.History()
		return model.Success("History retrieved", map[string]interface{}{
			"count":   len(entries),
			"history": entries,
		})
	})
}

// ClearHistory empties the test printer history
func (m *Manager) ClearHistory() model.Response {
	return m.run("clear_history", func(h Handler) model.Response {
		history, ok := h.(HistoryHandler)
		if !ok {
			return model.Failure(fmt.Sprintf("History is not available for %s handler", h.Type()))
		}
		return model.Success("History cleared", map[string]interface{}{
			"cleared": history.ClearHistory(),
		})
	})
}

// GetPrinters lists the printer names visible to discovery
func (m *Manager) GetPrinters(ctx context.Context) ([]string, error) {
	if m.finder == nil {
		return []string{}, nil
	}
	return m.finder.PrinterNames(ctx)
}

func (m *Manager) StartTime() time.Time {
	return m.startTime
}

func (m *Manager) Uptime() time.Duration {
	return time.Since(m.startTime)
}

// CurrentHandler returns the active handler type, empty when none is set
func (m *Manager) CurrentHandler() model.HandlerType {
	if m.handler == nil {
		return ""
	}
	return m.handler.Type()
}

// Shutdown stops the handler once. Later calls are no-ops.
func (m *Manager) Shutdown() error {
	var err error
	m.closeOnce.Do(func() {
		if m.handler == nil {
			return
		}
		func() {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("handler shutdown panicked: %v", r)
				}
			}()
			err = m.handler.Shutdown()
		}()
		if err != nil {
			m.logger.Error("Failed to shut down printer handler", zap.Error(err))
		}
		m.publish(model.EventHandlerStopped, nil)
	})
	return err
}

func (m *Manager) publishReport(name string, response model.Response) {
	eventType := model.EventReportPrinted
	if !response.Success {
		eventType = model.EventReportFailed
	}
	m.publish(eventType, map[string]interface{}{
		"report":  name,
		"message": response.Message,
	})
}

func (m *Manager) publish(eventType model.EventType, data map[string]interface{}) {
	if m.publisher == nil || m.handler == nil {
		return
	}
	m.publisher.Publish(model.NewPrinterEvent(eventType, m.handler.Type(), data))
}
