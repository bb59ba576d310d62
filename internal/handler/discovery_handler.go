// internal/handler/discovery_handler.go
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-server/internal/discovery"
	"printer-server/internal/utils"
)

// PrinterDiscovery runs the registered printer scanners
type PrinterDiscovery interface {
	ScanAll(ctx context.Context) ([]*discovery.DiscoveredPrinter, error)
	ScanByType(ctx context.Context, scannerType string) ([]*discovery.DiscoveredPrinter, error)
	GetAvailableScanners() []string
}

// DiscoveryHandler handles printer discovery requests
type DiscoveryHandler struct {
	discovery PrinterDiscovery
	logger    *utils.ServiceLogger
}

// NewDiscoveryHandler creates a new discovery handler
func NewDiscoveryHandler(discovery PrinterDiscovery, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{
		discovery: discovery,
		logger:    utils.NewServiceLogger(logger, "discovery-handler"),
	}
}

// RegisterRoutes registers discovery routes
func (h *DiscoveryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/scan", h.ScanPrinters)
	router.GET("/scanners", h.GetScanners)
}

// ScanPrinters scans for printers
// @Summary Scan for printers
// @Description Scan configured queues, serial ports, USB and network printers
// @Tags Discovery
// @Produce json
// @Param type query string false "Scan type" Enums(all, queue, serial, usb, tcp) default(all)
// @Param timeout query string false "Scan timeout" default(30s)
// @Success 200 {object} model.Response{data=object{printers_found=int,printers=[]discovery.DiscoveredPrinter}} "Printer scan completed"
// @Failure 400 {object} model.Response "Invalid scan parameters"
// @Failure 500 {object} model.Response "Scan failed"
// @Router /api/discovery/scan [get]
func (h *DiscoveryHandler) ScanPrinters(c *gin.Context) {
	scanType := c.DefaultQuery("type", "all")
	timeout, err := time.ParseDuration(c.DefaultQuery("timeout", "30s"))
	if err != nil || timeout <= 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid timeout")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	var printers []*discovery.DiscoveredPrinter
	if scanType == "all" {
		printers, err = h.discovery.ScanAll(ctx)
	} else {
		printers, err = h.discovery.ScanByType(ctx, scanType)
	}
	if errors.Is(err, discovery.ErrUnknownScanner) {
		utils.ErrorResponse(c, http.StatusBadRequest, "Unknown scan type: "+scanType)
		return
	}
	if err != nil {
		h.logger.Error("Failed to scan printers", zap.Error(err), zap.String("type", scanType))
		utils.ErrorResponse(c, http.StatusInternalServerError, "Failed to scan printers")
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Printer scan completed", map[string]interface{}{
		"printers_found": len(printers),
		"printers":       printers,
	})
}

// GetScanners lists the scanners usable on this host
// @Summary Available scanners
// @Tags Discovery
// @Produce json
// @Success 200 {object} model.Response{data=object{scanners=[]string}} "Scanners retrieved"
// @Router /api/discovery/scanners [get]
func (h *DiscoveryHandler) GetScanners(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Scanners retrieved", map[string]interface{}{
		"scanners": h.discovery.GetAvailableScanners(),
	})
}
