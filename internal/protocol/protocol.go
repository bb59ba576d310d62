// internal/protocol/protocol.go
package protocol

import (
	"context"
	"sync"
	"time"

	"printer-server/internal/model"
)

// Channel is a byte stream to a printer or fiscal device
type Channel interface {
	// Connection lifecycle
	Open(ctx context.Context) error
	Close() error
	IsOpen() bool

	// Data communication
	Write(ctx context.Context, data []byte) error
	Read(ctx context.Context, maxBytes int) ([]byte, error)

	// Channel information
	Type() model.ConnectionType
	Stats() ProtocolStats

	// Health and diagnostics
	Ping(ctx context.Context) error
}

// ProtocolStats provides channel-level statistics
type ProtocolStats struct {
	BytesWritten   int64         `json:"bytes_written"`
	BytesRead      int64         `json:"bytes_read"`
	OperationCount int64         `json:"operation_count"`
	ErrorCount     int64         `json:"error_count"`
	LastActivity   time.Time     `json:"last_activity"`
	AverageLatency time.Duration `json:"average_latency"`
	IsConnected    bool          `json:"is_connected"`
}

// statsRecorder guards ProtocolStats for concurrent readers and writers
type statsRecorder struct {
	mu    sync.Mutex
	stats ProtocolStats
}

func (r *statsRecorder) connected(on bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.IsConnected = on
	r.stats.LastActivity = time.Now()
}

func (r *statsRecorder) wrote(n int, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.BytesWritten += int64(n)
	r.stats.OperationCount++
	r.stats.LastActivity = time.Now()
	if r.stats.AverageLatency == 0 {
		r.stats.AverageLatency = latency
	} else {
		r.stats.AverageLatency = (r.stats.AverageLatency + latency) / 2
	}
}

func (r *statsRecorder) read(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.BytesRead += int64(n)
	r.stats.OperationCount++
	r.stats.LastActivity = time.Now()
}

func (r *statsRecorder) failed() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stats.ErrorCount++
}

func (r *statsRecorder) snapshot() ProtocolStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

type readResult struct {
	data []byte
	err  error
}

// readAsync runs a blocking read in a goroutine so the caller can honor ctx
func readAsync(ctx context.Context, read func([]byte) (int, error), maxBytes int) ([]byte, error) {
	done := make(chan readResult, 1)

	go func() {
		buffer := make([]byte, maxBytes)
		n, err := read(buffer)
		data := make([]byte, n)
		copy(data, buffer[:n])
		done <- readResult{data: data, err: err}
	}()

	select {
	case result := <-done:
		return result.data, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
