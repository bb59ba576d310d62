// 📁 internal/discovery/usb/scanner.go - USB Printer-Class Scanner
package usb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"printer-server/internal/discovery"
	"printer-server/internal/model"
)

// Scanner finds USB printer-class devices and known POS vendors
type Scanner struct {
	logger  *zap.Logger
	vendors *VendorDatabase
	timeout time.Duration
}

// NewScanner creates a new USB scanner
func NewScanner(logger *zap.Logger, timeout time.Duration) *Scanner {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Scanner{
		logger:  logger.With(zap.String("scanner", "usb")),
		vendors: NewVendorDatabase(),
		timeout: timeout,
	}
}

// GetScannerType returns scanner type identifier
func (s *Scanner) GetScannerType() string {
	return "usb"
}

// IsAvailable checks that libusb can enumerate devices
func (s *Scanner) IsAvailable() bool {
	usbCtx := gousb.NewContext()
	defer usbCtx.Close()

	_, err := usbCtx.OpenDevices(func(*gousb.DeviceDesc) bool { return false })
	if err != nil {
		s.logger.Debug("USB subsystem not accessible", zap.Error(err))
		return false
	}
	return true
}

// Scan performs USB printer discovery
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPrinter, error) {
	scanCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	usbCtx := gousb.NewContext()
	defer func() {
		if err := usbCtx.Close(); err != nil {
			s.logger.Warn("Failed to close USB context", zap.Error(err))
		}
	}()

	devices, err := usbCtx.OpenDevices(s.isPrinter)
	defer func() {
		for _, d := range devices {
			d.Close()
		}
	}()
	if err != nil && len(devices) == 0 {
		return nil, fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var discovered []*discovery.DiscoveredPrinter
	for _, device := range devices {
		if scanCtx.Err() != nil {
			return discovered, scanCtx.Err()
		}
		discovered = append(discovered, s.describe(device))
	}

	s.logger.Debug("USB scan completed", zap.Int("printers_found", len(discovered)))
	return discovered, nil
}

// isPrinter matches a printer-class interface or a known POS vendor
func (s *Scanner) isPrinter(desc *gousb.DeviceDesc) bool {
	if s.vendors.IsKnownVendor(desc.Vendor) {
		return true
	}
	return hasPrinterInterface(desc)
}

func hasPrinterInterface(desc *gousb.DeviceDesc) bool {
	if desc.Class == gousb.ClassPrinter {
		return true
	}
	for _, cfg := range desc.Configs {
		for _, intf := range cfg.Interfaces {
			for _, alt := range intf.AltSettings {
				if alt.Class == gousb.ClassPrinter {
					return true
				}
			}
		}
	}
	return false
}

func (s *Scanner) describe(device *gousb.Device) *discovery.DiscoveredPrinter {
	desc := device.Desc
	vendor, product := s.vendors.Identify(desc.Vendor, desc.Product)

	if product == "" {
		if name, err := device.Product(); err == nil {
			product = strings.TrimSpace(name)
		}
	}
	if vendor == "" {
		if manufacturer, err := device.Manufacturer(); err == nil {
			vendor = strings.TrimSpace(manufacturer)
		}
	}

	serialNumber, err := device.SerialNumber()
	if err != nil {
		serialNumber = ""
	}

	return &discovery.DiscoveredPrinter{
		Name:           printerName(vendor, product, desc),
		ConnectionType: model.ConnectionTypeUSB,
		ConnectionInfo: map[string]interface{}{
			"vendor_id":     fmt.Sprintf("%04x", uint16(desc.Vendor)),
			"product_id":    fmt.Sprintf("%04x", uint16(desc.Product)),
			"serial_number": serialNumber,
		},
		Vendor:       vendor,
		Model:        product,
		SerialNumber: serialNumber,
		Location:     fmt.Sprintf("USB-Bus%d-Port%d", desc.Bus, desc.Address),
	}
}

// printerName prefers "VENDOR MODEL", falling back to VID:PID
func printerName(vendor, product string, desc *gousb.DeviceDesc) string {
	switch {
	case vendor != "" && product != "":
		return vendor + " " + product
	case product != "":
		return product
	default:
		return fmt.Sprintf("USB-%04X:%04X", uint16(desc.Vendor), uint16(desc.Product))
	}
}
