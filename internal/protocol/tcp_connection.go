// internal/protocol/tcp_connection.go
package protocol

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

// DefaultTCPPort is the raw printing (JetDirect) port
const DefaultTCPPort = 9100

// TCPChannel implements Channel over a raw TCP socket
type TCPChannel struct {
	config *TCPConfig
	conn   net.Conn
	logger *zap.Logger
	mutex  sync.RWMutex
	stats  statsRecorder
}

func NewTCPChannel(config *TCPConfig, logger *zap.Logger) *TCPChannel {
	if config.Port == 0 {
		config.Port = DefaultTCPPort
	}
	return &TCPChannel{
		config: config,
		logger: logger.With(
			zap.String("protocol", "tcp"),
			zap.String("address", config.address()),
		),
	}
}

func (c *TCPConfig) address() string {
	return net.JoinHostPort(c.Host, fmt.Sprintf("%d", c.Port))
}

// Open dials the printer
func (tc *TCPChannel) Open(ctx context.Context) error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.conn != nil {
		return nil
	}

	dialer := &net.Dialer{Timeout: tc.config.Timeout}
	if tc.config.KeepAlive {
		dialer.KeepAlive = 30 * time.Second
	}

	var (
		conn net.Conn
		err  error
	)
	if tc.config.SSL {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: tc.config.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", tc.config.address())
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", tc.config.address())
	}
	if err != nil {
		tc.logger.Error("TCP connection failed", zap.Error(err))
		return fmt.Errorf("failed to connect to %s: %w", tc.config.address(), err)
	}

	tc.conn = conn
	tc.stats.connected(true)
	tc.logger.Info("TCP connection established")
	return nil
}

func (tc *TCPChannel) Close() error {
	tc.mutex.Lock()
	defer tc.mutex.Unlock()

	if tc.conn == nil {
		return nil
	}

	err := tc.conn.Close()
	tc.conn = nil
	tc.stats.connected(false)
	if err != nil {
		return fmt.Errorf("failed to close TCP connection: %w", err)
	}
	return nil
}

func (tc *TCPChannel) IsOpen() bool {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()
	return tc.conn != nil
}

func (tc *TCPChannel) Write(ctx context.Context, data []byte) error {
	tc.mutex.RLock()
	defer tc.mutex.RUnlock()

	if tc.conn == nil {
		return ErrNotOpen
	}

	deadline := time.Time{}
	if tc.config.WriteTimeout > 0 {
		deadline = time.Now().Add(tc.config.WriteTimeout)
	}
	if d, ok := ctx.Deadline(); ok && (deadline.IsZero() || d.Before(deadline)) {
		deadline = d
	}
	if err := tc.conn.SetWriteDeadline(deadline); err != nil {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	start := time.Now()
	written := 0
	for written < len(data) {
		n, err := tc.conn.Write(data[written:])
		if err != nil {
			tc.stats.failed()
			tc.logger.Error("TCP write failed", zap.Error(err), zap.Int("written", written))
			return fmt.Errorf("failed to write to TCP connection: %w", err)
		}
		written += n
	}

	tc.stats.wrote(written, time.Since(start))
	return nil
}

func (tc *TCPChannel) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	tc.mutex.RLock()
	conn := tc.conn
	tc.mutex.RUnlock()

	if conn == nil {
		return nil, ErrNotOpen
	}

	if tc.config.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(tc.config.ReadTimeout)); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	data, err := readAsync(ctx, conn.Read, maxBytes)
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return data, nil
		}
		if !errors.Is(err, io.EOF) {
			tc.stats.failed()
			return nil, fmt.Errorf("failed to read from TCP connection: %w", err)
		}
	}

	tc.stats.read(len(data))
	return data, nil
}

func (tc *TCPChannel) Type() model.ConnectionType {
	return model.ConnectionTypeTCP
}

func (tc *TCPChannel) Stats() ProtocolStats {
	return tc.stats.snapshot()
}

// Ping dials a fresh connection to confirm the printer still accepts sockets
func (tc *TCPChannel) Ping(ctx context.Context) error {
	dialer := &net.Dialer{Timeout: 2 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", tc.config.address())
	if err != nil {
		return fmt.Errorf("printer unreachable: %w", err)
	}
	return conn.Close()
}
