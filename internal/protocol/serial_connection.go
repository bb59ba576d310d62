// internal/protocol/serial_connection.go
package protocol

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"printer-server/internal/model"
)

// SerialChannel implements Channel over an RS-232 port
type SerialChannel struct {
	config *SerialConfig
	port   serial.Port
	logger *zap.Logger
	mutex  sync.RWMutex
	stats  statsRecorder
}

// NewSerialChannel creates a serial channel. The port is not opened until Open.
func NewSerialChannel(config *SerialConfig, logger *zap.Logger) *SerialChannel {
	return &SerialChannel{
		config: config,
		logger: logger.With(
			zap.String("protocol", "serial"),
			zap.String("port", config.Port),
		),
	}
}

func parityOf(name string) serial.Parity {
	switch name {
	case "odd":
		return serial.OddParity
	case "even":
		return serial.EvenParity
	case "mark":
		return serial.MarkParity
	case "space":
		return serial.SpaceParity
	default:
		return serial.NoParity
	}
}

func stopBitsOf(n int) serial.StopBits {
	if n == 2 {
		return serial.TwoStopBits
	}
	return serial.OneStopBit
}

// Open opens the serial port
func (sc *SerialChannel) Open(ctx context.Context) error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.port != nil {
		return nil
	}

	sc.logger.Info("Opening serial port",
		zap.Int("baud_rate", sc.config.BaudRate),
		zap.String("parity", sc.config.Parity),
	)

	mode := &serial.Mode{
		BaudRate: sc.config.BaudRate,
		DataBits: sc.config.DataBits,
		StopBits: stopBitsOf(sc.config.StopBits),
		Parity:   parityOf(sc.config.Parity),
	}

	port, err := serial.Open(sc.config.Port, mode)
	if err != nil {
		sc.logger.Error("Failed to open serial port", zap.Error(err))
		return fmt.Errorf("failed to open serial port %s: %w", sc.config.Port, err)
	}

	if sc.config.Timeout > 0 {
		if err := port.SetReadTimeout(sc.config.Timeout); err != nil {
			port.Close()
			return fmt.Errorf("failed to set read timeout: %w", err)
		}
	}

	sc.port = port
	sc.stats.connected(true)

	sc.logger.Info("Serial port opened")
	return nil
}

// Close closes the serial port. Closing a closed port is a no-op.
func (sc *SerialChannel) Close() error {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()

	if sc.port == nil {
		return nil
	}

	err := sc.port.Close()
	sc.port = nil
	sc.stats.connected(false)

	if err != nil {
		sc.logger.Error("Failed to close serial port", zap.Error(err))
		return fmt.Errorf("failed to close serial port: %w", err)
	}

	sc.logger.Info("Serial port closed")
	return nil
}

func (sc *SerialChannel) IsOpen() bool {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()
	return sc.port != nil
}

// Write writes data to the serial port
func (sc *SerialChannel) Write(ctx context.Context, data []byte) error {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if sc.port == nil {
		return ErrNotOpen
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	start := time.Now()
	n, err := sc.port.Write(data)
	if err != nil {
		sc.stats.failed()
		sc.logger.Error("Serial write failed", zap.Error(err))
		return fmt.Errorf("failed to write to serial port: %w", err)
	}
	if n != len(data) {
		sc.stats.failed()
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	sc.stats.wrote(n, time.Since(start))
	sc.logger.Debug("Serial write completed", zap.Int("bytes", n))
	return nil
}

// Read reads up to maxBytes. A read timeout returns an empty slice.
func (sc *SerialChannel) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	sc.mutex.RLock()
	port := sc.port
	sc.mutex.RUnlock()

	if port == nil {
		return nil, ErrNotOpen
	}

	data, err := readAsync(ctx, port.Read, maxBytes)
	if err != nil && !errors.Is(err, io.EOF) {
		sc.stats.failed()
		return nil, fmt.Errorf("failed to read from serial port: %w", err)
	}

	sc.stats.read(len(data))
	return data, nil
}

// ResetInput discards any unread bytes in the receive buffer
func (sc *SerialChannel) ResetInput() error {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if sc.port == nil {
		return ErrNotOpen
	}
	return sc.port.ResetInputBuffer()
}

func (sc *SerialChannel) Type() model.ConnectionType {
	return model.ConnectionTypeSerial
}

func (sc *SerialChannel) Stats() ProtocolStats {
	return sc.stats.snapshot()
}

// Ping queries the modem status lines, which fails once the device is unplugged
func (sc *SerialChannel) Ping(ctx context.Context) error {
	sc.mutex.RLock()
	defer sc.mutex.RUnlock()

	if sc.port == nil {
		return ErrNotOpen
	}
	if _, err := sc.port.GetModemStatusBits(); err != nil {
		return fmt.Errorf("serial port not responding: %w", err)
	}
	return nil
}
