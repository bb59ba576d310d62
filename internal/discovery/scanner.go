// 📁 internal/discovery/scanner.go - Main Scanner Interface
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

// ErrPrinterNotFound is returned when a printer name is not visible to any scanner
var ErrPrinterNotFound = errors.New("printer not found")

// ErrUnknownScanner is returned by ScanByType for an unregistered scanner type
var ErrUnknownScanner = errors.New("scanner type not found")

// PrinterScanner interface - Strategy Pattern
type PrinterScanner interface {
	Scan(ctx context.Context) ([]*DiscoveredPrinter, error)
	GetScannerType() string
	IsAvailable() bool
}

// DiscoveredPrinter represents a printer a scanner can see
type DiscoveredPrinter struct {
	Name           string                 `json:"name"`
	ConnectionType model.ConnectionType   `json:"connection_type"`
	ConnectionInfo map[string]interface{} `json:"connection_info"`
	Vendor         string                 `json:"vendor,omitempty"`
	Model          string                 `json:"model,omitempty"`
	SerialNumber   string                 `json:"serial_number,omitempty"`
	Location       string                 `json:"location,omitempty"`
	Source         string                 `json:"source"`
}

// ScannerManager manages all printer scanners - Facade Pattern
type ScannerManager struct {
	scanners map[string]PrinterScanner
	order    []string
	logger   *zap.Logger
	mutex    sync.RWMutex
}

// NewScannerManager creates a new scanner manager
func NewScannerManager(logger *zap.Logger) *ScannerManager {
	return &ScannerManager{
		scanners: make(map[string]PrinterScanner),
		logger:   logger.With(zap.String("component", "discovery")),
	}
}

// RegisterScanner registers a scanner. Earlier registrations win name clashes.
func (sm *ScannerManager) RegisterScanner(scanner PrinterScanner) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	scannerType := scanner.GetScannerType()
	if _, exists := sm.scanners[scannerType]; !exists {
		sm.order = append(sm.order, scannerType)
	}
	sm.scanners[scannerType] = scanner
	sm.logger.Info("Scanner registered", zap.String("type", scannerType))
}

// ScanAll runs every available scanner. A failing scanner is logged and skipped.
func (sm *ScannerManager) ScanAll(ctx context.Context) ([]*DiscoveredPrinter, error) {
	sm.mutex.RLock()
	order := append([]string(nil), sm.order...)
	sm.mutex.RUnlock()

	seen := make(map[string]bool)
	var all []*DiscoveredPrinter

	for _, scannerType := range order {
		if err := ctx.Err(); err != nil {
			return all, err
		}

		sm.mutex.RLock()
		scanner := sm.scanners[scannerType]
		sm.mutex.RUnlock()

		if !scanner.IsAvailable() {
			sm.logger.Debug("Scanner not available, skipping", zap.String("type", scannerType))
			continue
		}

		printers, err := scanner.Scan(ctx)
		if err != nil {
			sm.logger.Error("Scanner failed", zap.String("type", scannerType), zap.Error(err))
			continue
		}

		for _, p := range printers {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			p.Source = scannerType
			all = append(all, p)
		}

		sm.logger.Debug("Scanner completed",
			zap.String("type", scannerType),
			zap.Int("printers_found", len(printers)),
		)
	}

	return all, nil
}

// ScanByType scans specific scanner type
func (sm *ScannerManager) ScanByType(ctx context.Context, scannerType string) ([]*DiscoveredPrinter, error) {
	sm.mutex.RLock()
	scanner, exists := sm.scanners[scannerType]
	sm.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownScanner, scannerType)
	}
	if !scanner.IsAvailable() {
		return nil, fmt.Errorf("scanner not available: %s", scannerType)
	}

	return scanner.Scan(ctx)
}

// GetAvailableScanners returns list of available scanner types
func (sm *ScannerManager) GetAvailableScanners() []string {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	var available []string
	for _, scannerType := range sm.order {
		if sm.scanners[scannerType].IsAvailable() {
			available = append(available, scannerType)
		}
	}
	return available
}

// PrinterNames lists every discovered printer name, sorted
func (sm *ScannerManager) PrinterNames(ctx context.Context) ([]string, error) {
	printers, err := sm.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(printers))
	for _, p := range printers {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return names, nil
}

// Lookup finds a printer by exact name
func (sm *ScannerManager) Lookup(ctx context.Context, name string) (*DiscoveredPrinter, error) {
	printers, err := sm.ScanAll(ctx)
	if err != nil {
		return nil, err
	}

	for _, p := range printers {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPrinterNotFound, name)
}
