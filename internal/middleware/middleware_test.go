package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"printer-server/internal/utils"
)

func newTestEngine(core zapcore.Core) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.New(core)

	engine := gin.New()
	engine.Use(RecoveryMiddleware(logger))
	engine.Use(RequestIDMiddleware())
	engine.Use(LoggingMiddleware(utils.NewServiceLogger(logger, "http-server"), "/health/live"))

	engine.GET("/health/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/api/status", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/api/report/x", func(c *gin.Context) { panic("serial port vanished") })
	return engine
}

// take drains the observed logs and returns the entries with the given message
func take(logs *observer.ObservedLogs, message string) []observer.LoggedEntry {
	var matched []observer.LoggedEntry
	for _, entry := range logs.TakeAll() {
		if entry.Message == message {
			matched = append(matched, entry)
		}
	}
	return matched
}

func TestMiddlewareChain(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	engine := newTestEngine(core)

	t.Run("request id is kept", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
		req.Header.Set(RequestIDHeader, "pos-42")
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		if got := w.Header().Get(RequestIDHeader); got != "pos-42" {
			t.Fatalf("expected the caller's request id, got %q", got)
		}
		entries := take(logs, "API request")
		if len(entries) != 1 || entries[0].ContextMap()["request_id"] != "pos-42" {
			t.Fatalf("unexpected request log %+v", entries)
		}
	})

	t.Run("liveness is quiet", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/live", nil))

		if w.Header().Get(RequestIDHeader) == "" {
			t.Fatalf("expected a generated request id")
		}
		if n := len(take(logs, "API request")); n != 0 {
			t.Fatalf("expected no request log for liveness, got %d", n)
		}
	})

	t.Run("panic becomes 500", func(t *testing.T) {
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report/x", nil))

		if w.Code != http.StatusInternalServerError || w.Body.String() != `{"error":"Internal server error"}` {
			t.Fatalf("unexpected response %d %s", w.Code, w.Body.String())
		}
		entries := take(logs, "Request handler panicked")
		if len(entries) != 1 || entries[0].Level != zapcore.ErrorLevel {
			t.Fatalf("expected the panic to be logged once, got %+v", entries)
		}
		if entries[0].ContextMap()["route"] != "/api/report/x" {
			t.Fatalf("unexpected panic fields %v", entries[0].ContextMap())
		}
	})
}
