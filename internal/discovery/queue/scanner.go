// 📁 internal/discovery/queue/scanner.go - Configured Queue Scanner
package queue

import (
	"context"

	"go.uber.org/zap"

	"printer-server/internal/discovery"
	"printer-server/internal/spool"
)

// Scanner reports the print queues declared in configuration
type Scanner struct {
	writer *spool.Writer
	logger *zap.Logger
}

func NewScanner(writer *spool.Writer, logger *zap.Logger) *Scanner {
	return &Scanner{
		writer: writer,
		logger: logger.With(zap.String("scanner", "queue")),
	}
}

func (s *Scanner) GetScannerType() string {
	return "queue"
}

func (s *Scanner) IsAvailable() bool {
	return true
}

func (s *Scanner) Scan(ctx context.Context) ([]*discovery.DiscoveredPrinter, error) {
	queues := s.writer.Queues()

	printers := make([]*discovery.DiscoveredPrinter, 0, len(queues))
	for _, q := range queues {
		printers = append(printers, &discovery.DiscoveredPrinter{
			Name:           q.Name,
			ConnectionType: q.ConnectionType,
			ConnectionInfo: q.Settings,
		})
	}
	return printers, nil
}
