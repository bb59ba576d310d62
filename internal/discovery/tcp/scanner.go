// 📁 internal/discovery/tcp/scanner.go - TCP Network Printer Probe
package tcp

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/discovery"
	"printer-server/internal/model"
	"printer-server/internal/protocol"
)

// Scanner probes a configured list of network printers on their raw port
type Scanner struct {
	logger *zap.Logger
	config *Config
}

// Config for TCP scanner
type Config struct {
	Hosts       []string      `json:"hosts"`
	ConnTimeout time.Duration `json:"connection_timeout"`
}

// NewScanner creates a new TCP scanner
func NewScanner(logger *zap.Logger, config *Config) *Scanner {
	if config == nil {
		config = &Config{}
	}
	if config.ConnTimeout <= 0 {
		config.ConnTimeout = 2 * time.Second
	}

	return &Scanner{
		logger: logger.With(zap.String("scanner", "tcp")),
		config: config,
	}
}

// GetScannerType returns scanner type
func (s *Scanner) GetScannerType() string {
	return "tcp"
}

// IsAvailable reports whether any hosts are configured
func (s *Scanner) IsAvailable() bool {
	return len(s.config.Hosts) > 0
}

// Scan dials every host concurrently and reports the ones that accept
func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPrinter, error) {
	results := make([]*discovery.DiscoveredPrinter, len(s.config.Hosts))

	var wg sync.WaitGroup
	for i, entry := range s.config.Hosts {
		wg.Add(1)
		go func(i int, entry string) {
			defer wg.Done()
			results[i] = s.probe(ctx, entry)
		}(i, entry)
	}
	wg.Wait()

	var discovered []*discovery.DiscoveredPrinter
	for _, p := range results {
		if p != nil {
			discovered = append(discovered, p)
		}
	}

	s.logger.Debug("TCP scan completed",
		zap.Int("hosts", len(s.config.Hosts)),
		zap.Int("printers_found", len(discovered)),
	)
	return discovered, nil
}

func (s *Scanner) probe(ctx context.Context, entry string) *discovery.DiscoveredPrinter {
	host, port := splitHostPort(entry)
	address := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: s.config.ConnTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		s.logger.Debug("Host did not answer", zap.String("address", address), zap.Error(err))
		return nil
	}
	conn.Close()

	return &discovery.DiscoveredPrinter{
		Name:           address,
		ConnectionType: model.ConnectionTypeTCP,
		ConnectionInfo: map[string]interface{}{
			"host": host,
			"port": port,
		},
		Location: address,
	}
}

// splitHostPort accepts "host" or "host:port", defaulting to the raw print port
func splitHostPort(entry string) (string, int) {
	host, portText, err := net.SplitHostPort(entry)
	if err != nil {
		return entry, protocol.DefaultTCPPort
	}
	port, err := strconv.Atoi(portText)
	if err != nil {
		return host, protocol.DefaultTCPPort
	}
	return host, port
}
