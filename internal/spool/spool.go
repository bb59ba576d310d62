// internal/spool/spool.go
package spool

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/model"
	"printer-server/internal/protocol"
)

// ErrUnknownQueue is returned when a printer name has no queue behind it
var ErrUnknownQueue = errors.New("unknown print queue")

// Queue is a named raw print destination
type Queue struct {
	Name           string                 `json:"name" mapstructure:"name"`
	ConnectionType model.ConnectionType   `json:"connection_type" mapstructure:"connection_type"`
	Settings       map[string]interface{} `json:"settings" mapstructure:"settings"`
}

// ChannelFactory builds the channel a queue writes through
type ChannelFactory func(model.ConnectionType, map[string]interface{}, *zap.Logger) (protocol.Channel, error)

// Writer sends raw command bytes to named queues. Each job opens the
// channel, writes everything and closes it again.
type Writer struct {
	queues  map[string]Queue
	factory ChannelFactory
	logger  *zap.Logger
	mutex   sync.RWMutex
}

func NewWriter(queues []Queue, logger *zap.Logger) *Writer {
	w := &Writer{
		queues:  make(map[string]Queue, len(queues)),
		factory: protocol.New,
		logger:  logger.With(zap.String("component", "spool")),
	}
	for _, q := range queues {
		w.Register(q)
	}
	return w
}

// WithFactory swaps the channel factory, mainly for tests
func (w *Writer) WithFactory(factory ChannelFactory) *Writer {
	w.factory = factory
	return w
}

// Register adds or replaces a queue
func (w *Writer) Register(q Queue) {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if q.Settings == nil {
		q.Settings = map[string]interface{}{}
	}
	w.queues[q.Name] = q
	w.logger.Debug("Queue registered",
		zap.String("queue", q.Name),
		zap.String("connection_type", string(q.ConnectionType)),
	)
}

func (w *Writer) Has(name string) bool {
	w.mutex.RLock()
	defer w.mutex.RUnlock()
	_, ok := w.queues[name]
	return ok
}

// Queues returns the registered queues sorted by name
func (w *Writer) Queues() []Queue {
	w.mutex.RLock()
	defer w.mutex.RUnlock()

	out := make([]Queue, 0, len(w.queues))
	for _, q := range w.queues {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (w *Writer) lookup(name string) (Queue, error) {
	w.mutex.RLock()
	defer w.mutex.RUnlock()

	q, ok := w.queues[name]
	if !ok {
		return Queue{}, fmt.Errorf("%w: %s", ErrUnknownQueue, name)
	}
	return q, nil
}

// Send writes one print job to the named queue
func (w *Writer) Send(ctx context.Context, name string, data []byte) error {
	q, err := w.lookup(name)
	if err != nil {
		return err
	}

	start := time.Now()
	ch, err := w.factory(q.ConnectionType, q.Settings, w.logger)
	if err != nil {
		return fmt.Errorf("queue %s: %w", name, err)
	}

	if err := ch.Open(ctx); err != nil {
		return fmt.Errorf("queue %s: %w", name, err)
	}
	defer func() {
		if err := ch.Close(); err != nil {
			w.logger.Warn("Failed to close queue channel", zap.String("queue", name), zap.Error(err))
		}
	}()

	if err := ch.Write(ctx, data); err != nil {
		return fmt.Errorf("queue %s: %w", name, err)
	}

	w.logger.Info("Print job sent",
		zap.String("queue", name),
		zap.Int("bytes", len(data)),
		zap.Duration("duration", time.Since(start)),
	)
	return nil
}

// Reachable reports whether the queue's device answers a ping
func (w *Writer) Reachable(ctx context.Context, name string) bool {
	q, err := w.lookup(name)
	if err != nil {
		return false
	}

	ch, err := w.factory(q.ConnectionType, q.Settings, w.logger)
	if err != nil {
		return false
	}
	return ch.Ping(ctx) == nil
}
