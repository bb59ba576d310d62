// internal/printer/registry.go
package printer

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"printer-server/internal/model"
	"printer-server/internal/template"
)

// Dependencies are the shared services a handler factory may need
type Dependencies struct {
	Spooler Spooler
	Finder  PrinterFinder
	Options template.Options
}

// HandlerFactory creates a handler of one type
type HandlerFactory func(deps Dependencies, logger *zap.Logger) Handler

// Registry manages handler registration and creation
type Registry struct {
	factories map[model.HandlerType]HandlerFactory
	deps      Dependencies
	mu        sync.RWMutex
	logger    *zap.Logger
}

// NewRegistry creates a new handler registry
func NewRegistry(deps Dependencies, logger *zap.Logger) *Registry {
	return &Registry{
		factories: make(map[model.HandlerType]HandlerFactory),
		deps:      deps,
		logger:    logger,
	}
}

// Register registers a handler factory, replacing any earlier one for the type
func (r *Registry) Register(handlerType model.HandlerType, factory HandlerFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[handlerType] = factory
	r.logger.Debug("Handler registered", zap.String("handler", string(handlerType)))
}

// Create builds a handler instance
func (r *Registry) Create(handlerType model.HandlerType) (Handler, error) {
	r.mu.RLock()
	factory, exists := r.factories[handlerType]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("no handler registered for type %s", handlerType)
	}
	return factory(r.deps, r.logger), nil
}

// IsSupported checks if a handler type is registered
func (r *Registry) IsSupported(handlerType model.HandlerType) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[handlerType]
	return exists
}

// Types returns the registered handler types in declaration order
func (r *Registry) Types() []model.HandlerType {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]model.HandlerType, 0, len(r.factories))
	for _, t := range model.HandlerTypes {
		if _, exists := r.factories[t]; exists {
			types = append(types, t)
		}
	}
	return types
}
