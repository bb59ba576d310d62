package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-server/internal/config"
	"printer-server/internal/model"
)

type fixedConnections int

func (n fixedConnections) GetConnectionStats() *ConnectionStats {
	return &ConnectionStats{TotalConnections: int(n)}
}

func TestHealthHandler(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Name: "printer-server", Version: "1.0.0"}}

	tests := []struct {
		name   string
		status model.Response
		code   int
		health string
	}{
		{"printer online", model.Success("Printer is online", map[string]interface{}{"online": true}), http.StatusOK, "healthy"},
		{"printer offline", model.Failure("Handler not initialized"), http.StatusServiceUnavailable, "unhealthy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			printers := newFakePrinters()
			printers.status = tt.status

			gin.SetMode(gin.TestMode)
			engine := gin.New()
			NewHealthHandler(printers, fixedConnections(3), cfg, zap.NewNop()).RegisterRoutes(engine.Group(""))

			w := perform(engine, http.MethodGet, "/health", "")
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d", tt.code, w.Code)
			}

			var health HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &health); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if health.Status != tt.health || health.Handler != "TEST" || health.Service != "printer-server" {
				t.Fatalf("unexpected health %+v", health)
			}
			if health.Checks["printer"].Message != tt.status.Message {
				t.Fatalf("unexpected printer check %+v", health.Checks["printer"])
			}
			if health.Checks["websocket"].Data["connections"] != float64(3) {
				t.Fatalf("unexpected websocket check %+v", health.Checks["websocket"])
			}

			w = perform(engine, http.MethodGet, "/health/live", "")
			if w.Code != http.StatusOK {
				t.Fatalf("liveness must not depend on the printer, got %d", w.Code)
			}
		})
	}
}
