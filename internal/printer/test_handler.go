// internal/printer/test_handler.go
package printer

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"printer-server/internal/model"
)

// Simulated failure kinds
var simulatedErrors = []string{
	"PRINTER_OFFLINE",
	"PAPER_JAM",
	"OUT_OF_PAPER",
	"COVER_OPEN",
	"MECHANICAL_ERROR",
}

type testSettings struct {
	SimulateErrors bool `mapstructure:"simulate_errors"`
	ErrorFrequency *int `mapstructure:"error_frequency"` // percent
	MinLatencyMs   *int `mapstructure:"min_latency_ms"`
	MaxLatencyMs   *int `mapstructure:"max_latency_ms"`
}

// HistoryEntry is one document accepted by the test printer
type HistoryEntry struct {
	ID          string          `json:"id"`
	Document    *model.Document `json:"document"`
	ProcessedAt time.Time       `json:"processed_at"`
	LatencyMs   int64           `json:"latency_ms"`
}

// TestHandler simulates a printer. It keeps an in-memory history of the
// documents it accepted.
type TestHandler struct {
	baseHandler
	simulateErrors bool
	errorFrequency int
	minLatency     time.Duration
	maxLatency     time.Duration

	random  *rand.Rand
	history []HistoryEntry
	lastDoc time.Time
	mutex   sync.Mutex
}

func NewTestHandler(logger *zap.Logger) *TestHandler {
	h := &TestHandler{random: rand.New(rand.NewSource(time.Now().UnixNano()))}
	h.bind(h, model.HandlerTest, logger)
	return h
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func (h *TestHandler) Initialize(ctx context.Context, settings Settings) bool {
	var s testSettings
	if err := settings.decode(&s); err != nil {
		h.logger.Error("Failed to read test settings", zap.Error(err))
		return false
	}

	minMs := intOr(s.MinLatencyMs, 100)
	maxMs := intOr(s.MaxLatencyMs, 500)
	if minMs < 0 {
		minMs = 0
	}
	if maxMs < minMs {
		maxMs = minMs
	}

	h.mutex.Lock()
	h.simulateErrors = s.SimulateErrors
	h.errorFrequency = intOr(s.ErrorFrequency, 10)
	h.minLatency = time.Duration(minMs) * time.Millisecond
	h.maxLatency = time.Duration(maxMs) * time.Millisecond
	h.mutex.Unlock()

	h.ready.Store(true)
	h.logger.Info("Test printer initialized",
		zap.Bool("simulate_errors", s.SimulateErrors),
		zap.Int("error_frequency", h.errorFrequency),
	)
	return true
}

// latency and roll share the generator, which is not safe for concurrent use
func (h *TestHandler) latency() time.Duration {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	spread := h.maxLatency - h.minLatency
	if spread <= 0 {
		return h.minLatency
	}
	return h.minLatency + time.Duration(h.random.Int63n(int64(spread)+1))
}

func (h *TestHandler) roll() (string, bool) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.simulateErrors || h.random.Intn(100) >= h.errorFrequency {
		return "", false
	}
	return simulatedErrors[h.random.Intn(len(simulatedErrors))], true
}

func (h *TestHandler) ProcessDocument(ctx context.Context, doc *model.Document) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	if doc == nil {
		return model.Failure(msgMissingDocument)
	}
	if err := doc.Validate(); err != nil {
		return invalidDocument(err)
	}

	delay := h.latency()
	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return model.Failure(fmt.Sprintf("Request cancelled: %v", ctx.Err()))
	case <-timer.C:
	}

	if kind, failed := h.roll(); failed {
		h.logger.Warn("Simulated printer error", zap.String("error", kind), zap.String("document_number", doc.DocumentNumber))
		return model.NewResponse(false, fmt.Sprintf("Simulated error: %s", kind), map[string]interface{}{
			"error_type": kind,
		})
	}

	entry := HistoryEntry{
		ID:          uuid.New().String(),
		Document:    doc,
		ProcessedAt: time.Now(),
		LatencyMs:   delay.Milliseconds(),
	}

	h.mutex.Lock()
	h.history = append(h.history, entry)
	h.lastDoc = entry.ProcessedAt
	count := len(h.history)
	h.mutex.Unlock()

	return model.Success("Document processed successfully", map[string]interface{}{
		"test_metadata": map[string]interface{}{
			"id":                  entry.ID,
			"latency_ms":          entry.LatencyMs,
			"documents_processed": count,
			"items":               len(doc.Items),
			"total":               doc.TotalWithTax().StringFixed(2),
		},
	})
}

func (h *TestHandler) PrintReportX(ctx context.Context) model.Response {
	return h.report("X")
}

func (h *TestHandler) PrintReportZ(ctx context.Context) model.Response {
	return h.report("Z")
}

func (h *TestHandler) report(name string) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}
	h.mutex.Lock()
	count := len(h.history)
	h.mutex.Unlock()

	return model.Success(fmt.Sprintf("%s report printed successfully", name), map[string]interface{}{
		"documents_processed": count,
	})
}

func (h *TestHandler) CheckStatus(ctx context.Context) model.Response {
	if !h.initialized() {
		return model.Failure(msgNotInitialized)
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	var last interface{}
	if !h.lastDoc.IsZero() {
		last = h.lastDoc.Format(model.TimestampLayout)
	}

	return model.Success("Test printer is online", map[string]interface{}{
		"online":              true,
		"paper_level":         100 - h.random.Intn(30),
		"temperature":         35 + h.random.Intn(10),
		"documents_processed": len(h.history),
		"last_document_time":  last,
	})
}

// History returns a copy of the accepted documents, oldest first
func (h *TestHandler) History() []HistoryEntry {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	out := make([]HistoryEntry, len(h.history))
	copy(out, h.history)
	return out
}

// ClearHistory drops the history and returns how many entries it held
func (h *TestHandler) ClearHistory() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	n := len(h.history)
	h.history = nil
	h.lastDoc = time.Time{}
	return n
}

func (h *TestHandler) Shutdown() error {
	h.ready.Store(false)
	return nil
}
