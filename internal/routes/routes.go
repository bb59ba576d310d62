// internal/routes/routes.go
package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"printer-server/internal/config"
	"printer-server/internal/handler"
	"printer-server/internal/middleware"
	"printer-server/internal/utils"
)

// Router holds all dependencies for routing
type Router struct {
	config    *config.Config
	logger    *zap.Logger
	printers  handler.PrinterService
	discovery handler.PrinterDiscovery
	eventBus  *handler.EventBus
	websocket *handler.WebSocketHandler
}

// NewRouter creates a new router instance. discovery may be nil.
func NewRouter(
	config *config.Config,
	logger *zap.Logger,
	printers handler.PrinterService,
	discovery handler.PrinterDiscovery,
	eventBus *handler.EventBus,
) *Router {
	return &Router{
		config:    config,
		logger:    logger,
		printers:  printers,
		discovery: discovery,
		eventBus:  eventBus,
	}
}

// SetupRouter creates and configures the Gin router
func (r *Router) SetupRouter() *gin.Engine {
	switch {
	case r.config.IsProduction():
		gin.SetMode(gin.ReleaseMode)
	case gin.Mode() != gin.TestMode:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true

	r.addMiddleware(router)
	r.addRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, utils.ErrorBody{Error: "Not found"})
	})
	router.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, utils.ErrorBody{Error: "Method not allowed"})
	})

	return router
}

// Close disconnects the WebSocket clients
func (r *Router) Close() {
	if r.websocket != nil {
		r.websocket.Close()
	}
}

// addMiddleware adds middleware to the router
func (r *Router) addMiddleware(router *gin.Engine) {
	// Recovery middleware
	router.Use(middleware.RecoveryMiddleware(r.logger))

	// Request ID middleware
	router.Use(middleware.RequestIDMiddleware())

	// Logging middleware
	serviceLogger := utils.NewServiceLogger(r.logger, "http-server")
	router.Use(middleware.LoggingMiddleware(serviceLogger, "/health/live"))

	// CORS middleware
	router.Use(middleware.CORSMiddleware(&r.config.Security))

	r.logger.Info("Middleware configured")
}

// addRoutes sets up all application routes
func (r *Router) addRoutes(router *gin.Engine) {
	printerHandler := handler.NewPrinterHandler(r.printers, r.logger)
	legacyHandler := handler.NewLegacyHandler(r.printers, r.logger)

	var connections handler.ConnectionCounter
	if r.eventBus != nil {
		r.websocket = handler.NewWebSocketHandler(r.printers, r.eventBus, r.logger)
		connections = r.websocket
	}
	healthHandler := handler.NewHealthHandler(r.printers, connections, r.config, r.logger)

	healthHandler.RegisterRoutes(router.Group(""))

	api := router.Group("/api")
	printerHandler.RegisterRoutes(api)
	legacyHandler.RegisterRoutes(api)

	if r.discovery != nil {
		discoveryHandler := handler.NewDiscoveryHandler(r.discovery, r.logger)
		discoveryHandler.RegisterRoutes(api.Group("/discovery"))
	}

	if r.websocket != nil {
		r.websocket.RegisterRoutes(router.Group("/ws"))
	}

	r.addDocumentationRoutes(router)

	r.logger.Info("All routes configured successfully")
}

// addDocumentationRoutes sets up documentation routes
func (r *Router) addDocumentationRoutes(router *gin.Engine) {
	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	// Swagger redirect for convenience
	router.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
}
