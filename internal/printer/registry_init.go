// internal/printer/registry_init.go
package printer

import (
	"go.uber.org/zap"

	"printer-server/internal/model"
)

// RegisterDefaults registers every built-in handler type
func RegisterDefaults(registry *Registry, logger *zap.Logger) {
	registerFiscalHandlers(registry)

	registry.Register(model.HandlerMatrix, func(deps Dependencies, logger *zap.Logger) Handler {
		return NewMatrixHandler(deps.Spooler, deps.Finder, deps.Options, logger)
	})
	registry.Register(model.HandlerTicket, func(deps Dependencies, logger *zap.Logger) Handler {
		return NewTicketHandler(deps.Spooler, deps.Finder, deps.Options, logger)
	})
	registry.Register(model.HandlerProxy, func(_ Dependencies, logger *zap.Logger) Handler {
		return NewProxyHandler(logger)
	})
	registry.Register(model.HandlerTest, func(_ Dependencies, logger *zap.Logger) Handler {
		return NewTestHandler(logger)
	})

	logger.Info("Printer handlers registered", zap.Int("handlers", len(registry.Types())))
}

// registerFiscalHandlers registers the serial fiscal protocols
func registerFiscalHandlers(registry *Registry) {
	for _, kind := range []model.HandlerType{model.HandlerFiscalTFHKA, model.HandlerFiscalPNP} {
		kind := kind
		registry.Register(kind, func(_ Dependencies, logger *zap.Logger) Handler {
			return NewFiscalHandler(kind, logger)
		})
	}
}
