// 📁 internal/discovery/serial/scanner.go - Serial Scanner Implementation
package serial

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"go.bug.st/serial/enumerator"
	"go.uber.org/zap"

	"printer-server/internal/discovery"
	"printer-server/internal/model"
)

// Scanner lists the OS serial ports. Fiscal printers and many matrix
// printers hang off RS-232 or USB-serial adapters.
type Scanner struct {
	logger *zap.Logger
	config *Config
	list   func() ([]*enumerator.PortDetails, error)
}

// Config for serial scanner
type Config struct {
	PortPatterns []string `json:"port_patterns"`
	BaudRate     int      `json:"baud_rate"`
}

// NewScanner creates a new serial scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{}
	}
	if len(config.PortPatterns) == 0 {
		config.PortPatterns = getDefaultPortPatterns()
	}
	if config.BaudRate == 0 {
		config.BaudRate = 9600
	}

	return &Scanner{
		logger: logger.With(zap.String("scanner", "serial")),
		config: config,
		list:   enumerator.GetDetailedPortsList,
	}
}

func getDefaultPortPatterns() []string {
	switch runtime.GOOS {
	case "windows":
		return []string{"COM*"}
	case "darwin":
		return []string{"/dev/tty.*", "/dev/cu.*"}
	default:
		return []string{"/dev/ttyS*", "/dev/ttyUSB*", "/dev/ttyACM*"}
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "serial"
}

// IsAvailable checks if serial scanning is available
func (s *Scanner) IsAvailable() bool {
	return true
}

// Scan lists the serial ports matching the configured patterns
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPrinter, error) {
	ports, err := s.list()
	if err != nil {
		return nil, fmt.Errorf("failed to get serial ports: %w", err)
	}

	var discovered []*discovery.DiscoveredPrinter
	for _, port := range ports {
		if !s.matches(port.Name) {
			continue
		}

		printer := &discovery.DiscoveredPrinter{
			Name:           port.Name,
			ConnectionType: model.ConnectionTypeSerial,
			ConnectionInfo: map[string]interface{}{
				"port":      port.Name,
				"baud_rate": s.config.BaudRate,
			},
			Location: port.Name,
		}
		if port.IsUSB {
			printer.Vendor = strings.ToUpper(port.VID)
			printer.Model = port.Product
			printer.SerialNumber = port.SerialNumber
		}
		discovered = append(discovered, printer)
	}

	s.logger.Debug("Serial scan completed", zap.Int("ports_found", len(discovered)))
	return discovered, nil
}

func (s *Scanner) matches(name string) bool {
	for _, pattern := range s.config.PortPatterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
