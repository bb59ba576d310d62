// internal/handler/legacy_handler.go
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-server/internal/model"
	"printer-server/internal/utils"
)

// LegacyHandler keeps the old report endpoints. They always answer 200 and
// carry the result code inside the body.
type LegacyHandler struct {
	printers PrinterService
	logger   *utils.ServiceLogger
}

// LegacyResponse is the {status, code} body of the old endpoints. Status is
// the handler envelope, or the string "Error" when nothing is configured.
type LegacyResponse struct {
	Status interface{} `json:"status"`
	Code   int         `json:"code"`
}

// NewLegacyHandler creates a new legacy handler
func NewLegacyHandler(printers PrinterService, logger *zap.Logger) *LegacyHandler {
	return &LegacyHandler{
		printers: printers,
		logger:   utils.NewServiceLogger(logger, "legacy-handler"),
	}
}

// RegisterRoutes registers legacy routes
func (h *LegacyHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/printer_x", h.PrinterX)
	router.GET("/printer_z", h.PrinterZ)
	router.GET("/printer_status", h.PrinterStatus)
}

// PrinterX prints the X report
// @Summary X report (legacy)
// @Tags Legacy
// @Produce json
// @Success 200 {object} LegacyResponse "Result with embedded code"
// @Router /api/printer_x [get]
func (h *LegacyHandler) PrinterX(c *gin.Context) {
	h.respond(c, "printer_x", h.printers.PrintReportX(c.Request.Context()))
}

// PrinterZ prints the Z report
// @Summary Z report (legacy)
// @Tags Legacy
// @Produce json
// @Success 200 {object} LegacyResponse "Result with embedded code"
// @Router /api/printer_z [get]
func (h *LegacyHandler) PrinterZ(c *gin.Context) {
	h.respond(c, "printer_z", h.printers.PrintReportZ(c.Request.Context()))
}

// PrinterStatus queries the device
// @Summary Printer status (legacy)
// @Tags Legacy
// @Produce json
// @Success 200 {object} LegacyResponse "Result with embedded code"
// @Router /api/printer_status [get]
func (h *LegacyHandler) PrinterStatus(c *gin.Context) {
	h.respond(c, "printer_status", h.printers.CheckStatus(c.Request.Context()))
}

func (h *LegacyHandler) respond(c *gin.Context, operation string, response model.Response) {
	if h.printers.CurrentHandler() == "" {
		c.JSON(http.StatusOK, LegacyResponse{Status: "Error", Code: http.StatusBadRequest})
		return
	}

	code := http.StatusOK
	if !response.Success {
		code = http.StatusBadRequest
		h.logger.Warn("Legacy operation failed",
			zap.String("operation", operation),
			zap.String("message", response.Message),
		)
	}
	c.JSON(http.StatusOK, LegacyResponse{Status: response, Code: code})
}
