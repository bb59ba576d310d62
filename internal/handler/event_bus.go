// internal/handler/event_bus.go
package handler

import (
	"sync"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

// allEvents is the subscription key that receives every event type
const allEvents model.EventType = ""

// EventBus fans printer events out to subscribers. Publishing never blocks
// the request that produced the event.
type EventBus struct {
	subscribers map[model.EventType][]chan model.PrinterEvent
	events      chan model.PrinterEvent
	done        chan struct{}
	stopOnce    sync.Once
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[model.EventType][]chan model.PrinterEvent),
		events:      make(chan model.PrinterEvent, 1000),
		done:        make(chan struct{}),
		logger:      logger.With(zap.String("component", "event_bus")),
	}
}

// Start distributes events until Stop is called
func (eb *EventBus) Start() {
	for {
		select {
		case event := <-eb.events:
			eb.distributeEvent(event)
		case <-eb.done:
			return
		}
	}
}

// Stop ends distribution and closes every subscriber channel
func (eb *EventBus) Stop() {
	eb.stopOnce.Do(func() {
		close(eb.done)

		eb.mutex.Lock()
		defer eb.mutex.Unlock()
		for eventType, subscribers := range eb.subscribers {
			for _, subscriber := range subscribers {
				close(subscriber)
			}
			delete(eb.subscribers, eventType)
		}
	})
}

// Publish queues an event. Events are dropped when the bus is full or stopped.
func (eb *EventBus) Publish(event model.PrinterEvent) {
	select {
	case <-eb.done:
		return
	default:
	}

	select {
	case eb.events <- event:
	default:
		eb.logger.Warn("Event bus full, dropping event",
			zap.String("event_type", string(event.EventType)),
		)
	}
}

// Subscribe returns a channel for one event type, or for every event when
// eventType is empty. The channel is closed by Stop.
func (eb *EventBus) Subscribe(eventType model.EventType) <-chan model.PrinterEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan model.PrinterEvent, 100)
	select {
	case <-eb.done:
		close(subscriber)
		return subscriber
	default:
	}

	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

func (eb *EventBus) distributeEvent(event model.PrinterEvent) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	for _, key := range []model.EventType{event.EventType, allEvents} {
		for _, subscriber := range eb.subscribers[key] {
			select {
			case subscriber <- event:
			default:
				// slow subscriber
			}
		}
	}
}
