// internal/handler/printer_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-server/internal/model"
	"printer-server/internal/utils"
)

// PrinterService is the printer manager as seen by the HTTP layer
type PrinterService interface {
	ProcessDocument(ctx context.Context, doc *model.Document) model.Response
	PrintReportX(ctx context.Context) model.Response
	PrintReportZ(ctx context.Context) model.Response
	CheckStatus(ctx context.Context) model.Response
	ProcessRequest(ctx context.Context, method string, params map[string]interface{}) model.Response
	History() model.Response
	ClearHistory() model.Response
	GetPrinters(ctx context.Context) ([]string, error)
	StartTime() time.Time
	Uptime() time.Duration
	CurrentHandler() model.HandlerType
}

// PrinterHandler serves the document, report and status endpoints
type PrinterHandler struct {
	printers PrinterService
	logger   *utils.ServiceLogger
}

// NewPrinterHandler creates a new printer handler
func NewPrinterHandler(printers PrinterService, logger *zap.Logger) *PrinterHandler {
	return &PrinterHandler{
		printers: printers,
		logger:   utils.NewServiceLogger(logger, "printer-handler"),
	}
}

// RegisterRoutes registers printer routes
func (h *PrinterHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/status", h.GetStatus)
	router.GET("/ping", h.Ping)
	router.POST("/document", h.ProcessDocument)
	router.GET("/report/x", h.PrintReportX)
	router.GET("/report/z", h.PrintReportZ)
	router.POST("/request", h.ProcessRequest)
	router.GET("/printers", h.GetPrinters)
	router.GET("/printer/status", h.CheckStatus)
	router.GET("/history", h.GetHistory)
	router.DELETE("/history", h.ClearHistory)
}

// ServerStatus is the /api/status body
type ServerStatus struct {
	Status         string            `json:"status"`
	Uptime         int64             `json:"uptime"`
	StartTime      string            `json:"start_time"`
	CurrentHandler model.HandlerType `json:"current_handler"`
}

// RequestBody is a generic handler request
type RequestBody struct {
	Method string                 `json:"method" binding:"required"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// GetStatus reports server uptime and the active handler
// @Summary Server status
// @Description Get uptime, start time and the configured handler type
// @Tags Printer
// @Produce json
// @Success 200 {object} ServerStatus "Server status"
// @Router /api/status [get]
func (h *PrinterHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, ServerStatus{
		Status:         "running",
		Uptime:         int64(h.printers.Uptime().Seconds()),
		StartTime:      h.printers.StartTime().Format(model.TimestampLayout),
		CurrentHandler: h.printers.CurrentHandler(),
	})
}

// Ping answers connectivity probes
// @Summary Ping
// @Tags Printer
// @Produce json
// @Success 200 {object} object{connect=bool} "Server reachable"
// @Router /api/ping [get]
func (h *PrinterHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"connect": true})
}

// ProcessDocument prints a document on the active handler
// @Summary Print document
// @Description Validate a document and send it to the configured printer
// @Tags Printer
// @Accept json
// @Produce json
// @Param document body model.Document true "Document to print"
// @Success 200 {object} model.Response "Handler result, success may be false"
// @Failure 400 {object} model.Response "Invalid document"
// @Router /api/document [post]
func (h *PrinterHandler) ProcessDocument(c *gin.Context) {
	var doc model.Document
	if err := c.ShouldBindJSON(&doc); err != nil {
		h.logger.Warn("Invalid document body",
			zap.Error(err),
			zap.String("request_id", utils.GetRequestID(c)),
		)
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid JSON document")
		return
	}

	if err := doc.Validate(); err != nil {
		utils.ValidationErrorResponse(c, err)
		return
	}

	response := h.printers.ProcessDocument(c.Request.Context(), &doc)
	if !response.Success {
		h.logger.Warn("Document failed",
			zap.String("document_number", doc.DocumentNumber),
			zap.String("message", response.Message),
			zap.String("request_id", utils.GetRequestID(c)),
		)
	}
	utils.EnvelopeResponse(c, http.StatusOK, response)
}

// PrintReportX prints the X report
// @Summary X report
// @Tags Printer
// @Produce json
// @Success 200 {object} model.Response "Handler result, success may be false"
// @Router /api/report/x [get]
func (h *PrinterHandler) PrintReportX(c *gin.Context) {
	utils.EnvelopeResponse(c, http.StatusOK, h.printers.PrintReportX(c.Request.Context()))
}

// PrintReportZ prints the Z report
// @Summary Z report
// @Tags Printer
// @Produce json
// @Success 200 {object} model.Response "Handler result, success may be false"
// @Router /api/report/z [get]
func (h *PrinterHandler) PrintReportZ(c *gin.Context) {
	utils.EnvelopeResponse(c, http.StatusOK, h.printers.PrintReportZ(c.Request.Context()))
}

// ProcessRequest dispatches a generic method call
// @Summary Generic request
// @Description Run X, Z or DOCUMENT through the active handler
// @Tags Printer
// @Accept json
// @Produce json
// @Param request body RequestBody true "Method and parameters"
// @Success 200 {object} model.Response "Handler result, success may be false"
// @Failure 400 {object} model.Response "Invalid request"
// @Router /api/request [post]
func (h *PrinterHandler) ProcessRequest(c *gin.Context) {
	var req RequestBody
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	utils.EnvelopeResponse(c, http.StatusOK, h.printers.ProcessRequest(c.Request.Context(), req.Method, req.Params))
}

// GetPrinters lists the printers visible to discovery
// @Summary List printers
// @Tags Printer
// @Produce json
// @Success 200 {object} model.Response{data=object{printers=[]string,count=int}} "Printers retrieved"
// @Failure 500 {object} model.Response "Discovery failed"
// @Router /api/printers [get]
func (h *PrinterHandler) GetPrinters(c *gin.Context) {
	names, err := h.printers.GetPrinters(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to list printers", zap.Error(err))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to list printers")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printers retrieved", map[string]interface{}{
		"printers": names,
		"count":    len(names),
	})
}

// CheckStatus queries the device
// @Summary Printer status
// @Tags Printer
// @Produce json
// @Success 200 {object} model.Response "Handler result, success may be false"
// @Router /api/printer/status [get]
func (h *PrinterHandler) CheckStatus(c *gin.Context) {
	utils.EnvelopeResponse(c, http.StatusOK, h.printers.CheckStatus(c.Request.Context()))
}

// GetHistory returns the documents seen by the test printer
// @Summary Test printer history
// @Tags Printer
// @Produce json
// @Success 200 {object} model.Response "History, or a failure for other handlers"
// @Router /api/history [get]
func (h *PrinterHandler) GetHistory(c *gin.Context) {
	utils.EnvelopeResponse(c, http.StatusOK, h.printers.History())
}

// ClearHistory empties the test printer history
// @Summary Clear test printer history
// @Tags Printer
// @Produce json
// @Success 200 {object} model.Response "History cleared"
// @Router /api/history [delete]
func (h *PrinterHandler) ClearHistory(c *gin.Context) {
	utils.EnvelopeResponse(c, http.StatusOK, h.printers.ClearHistory())
}
