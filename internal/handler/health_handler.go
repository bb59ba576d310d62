// internal/handler/health_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-server/internal/config"
	"printer-server/internal/utils"
)

// ConnectionCounter reports the number of open WebSocket clients
type ConnectionCounter interface {
	GetConnectionStats() *ConnectionStats
}

// HealthHandler handles health check requests
type HealthHandler struct {
	printers    PrinterService
	connections ConnectionCounter
	config      *config.Config
	logger      *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. connections may be nil.
func NewHealthHandler(printers PrinterService, connections ConnectionCounter, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		printers:    printers,
		connections: connections,
		config:      config,
		logger:      utils.NewServiceLogger(logger, "health-handler"),
	}
}

// RegisterRoutes registers health check routes
func (h *HealthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/health", h.HealthCheck)
	router.GET("/health/live", h.LivenessCheck)
}

// HealthCheck performs general health check
// @Summary Health check
// @Description Get overall service health including the printer status
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse "Service is healthy"
// @Failure 503 {object} HealthResponse "Printer is not ready"
// @Router /health [get]
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    h.printers.Uptime().Truncate(time.Second).String(),
		Handler:   string(h.printers.CurrentHandler()),
		Checks:    make(map[string]CheckResult),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	status := h.printers.CheckStatus(ctx)
	if status.Success {
		health.Checks["printer"] = CheckResult{
			Status:  "healthy",
			Message: status.Message,
			Data:    status.Data,
		}
	} else {
		health.Status = "unhealthy"
		health.Checks["printer"] = CheckResult{
			Status:  "unhealthy",
			Message: status.Message,
			Data:    status.Data,
		}
		h.logger.Warn("Printer health check failed", zap.String("message", status.Message))
	}

	if h.connections != nil {
		stats := h.connections.GetConnectionStats()
		health.Checks["websocket"] = CheckResult{
			Status: "healthy",
			Data: map[string]interface{}{
				"connections": stats.TotalConnections,
			},
		}
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// LivenessCheck for Kubernetes liveness probe
// @Summary Liveness check
// @Description Check if service is alive
// @Tags Health
// @Produce json
// @Success 200 {object} object{status=string,timestamp=string} "Service is alive"
// @Router /health/live [get]
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Handler   string                 `json:"handler"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
