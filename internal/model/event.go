// internal/model/event.go
package model

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of event
type EventType string

const (
	EventDocumentProcessed EventType = "DOCUMENT_PROCESSED"
	EventDocumentFailed    EventType = "DOCUMENT_FAILED"
	EventReportPrinted     EventType = "REPORT_PRINTED"
	EventReportFailed      EventType = "REPORT_FAILED"
	EventStatusChecked     EventType = "STATUS_CHECKED"
	EventRequestProcessed  EventType = "REQUEST_PROCESSED"
	EventRequestFailed     EventType = "REQUEST_FAILED"
	EventHandlerReady      EventType = "HANDLER_READY"
	EventHandlerStopped    EventType = "HANDLER_STOPPED"
)

// PrinterEvent represents an event in the system
type PrinterEvent struct {
	ID        uuid.UUID              `json:"id"`
	EventType EventType              `json:"event_type"`
	Handler   HandlerType            `json:"handler"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Severity  string                 `json:"severity"` // INFO, WARNING, ERROR
}

// NewPrinterEvent stamps a new event with a fresh id
func NewPrinterEvent(eventType EventType, handler HandlerType, data map[string]interface{}) PrinterEvent {
	severity := "INFO"
	switch eventType {
	case EventDocumentFailed, EventReportFailed, EventRequestFailed:
		severity = "ERROR"
	case EventHandlerStopped:
		severity = "WARNING"
	}

	return PrinterEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Handler:   handler,
		Data:      data,
		Timestamp: time.Now(),
		Severity:  severity,
	}
}
