// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "printer-server/docs"
	"printer-server/internal/config"
	"printer-server/internal/discovery"
	"printer-server/internal/discovery/queue"
	"printer-server/internal/discovery/serial"
	"printer-server/internal/discovery/tcp"
	"printer-server/internal/discovery/usb"
	"printer-server/internal/escpos"
	"printer-server/internal/handler"
	"printer-server/internal/model"
	"printer-server/internal/printer"
	"printer-server/internal/routes"
	"printer-server/internal/spool"
	"printer-server/internal/template"
	"printer-server/internal/utils"
)

// Application represents the main application
type Application struct {
	config *config.Config
	logger *zap.Logger
	server *http.Server
	router *routes.Router

	spooler   *spool.Writer
	discovery *discovery.ScannerManager
	eventBus  *handler.EventBus
	manager   *printer.Manager
}

// @title Printer Server API
// @version 1.0.0
// @description Dispatches POS documents and reports to fiscal, matrix and ticket printers

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5050
// @BasePath /
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "printer-server")
	serviceLogger.LogServiceStart(cfg.App.Version,
		zap.String("environment", cfg.App.Environment),
		zap.String("handler", cfg.Printer.Handler),
		zap.String("address", cfg.Server.Host+":"+cfg.Server.Port),
	)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	app.initializeSpooler()
	app.initializeDiscovery()

	if err := app.initializePrinter(); err != nil {
		return nil, fmt.Errorf("failed to initialize printer: %w", err)
	}

	app.initializeServer()

	return app, nil
}

// initializeSpooler registers the configured raw print queues
func (app *Application) initializeSpooler() {
	queues := make([]spool.Queue, 0, len(app.config.Queues))
	for _, q := range app.config.Queues {
		queues = append(queues, spool.Queue{
			Name:           q.Name,
			ConnectionType: model.ConnectionType(q.ConnectionType),
			Settings:       q.Settings,
		})
	}

	app.spooler = spool.NewWriter(queues, app.logger)
	app.logger.Info("Print queues initialized", zap.Int("queues", len(queues)))
}

// initializeDiscovery registers the printer scanners. Configured queues are
// scanned first so their names win over discovered devices.
func (app *Application) initializeDiscovery() {
	cfg := app.config.Discovery
	app.discovery = discovery.NewScannerManager(app.logger)

	app.discovery.RegisterScanner(queue.NewScanner(app.spooler, app.logger))

	if cfg.Serial.Enabled {
		app.discovery.RegisterScanner(serial.NewScanner(app.logger, &serial.Config{
			PortPatterns: cfg.Serial.PortPatterns,
			BaudRate:     cfg.Serial.BaudRate,
		}))
	}
	if cfg.USB.Enabled {
		app.discovery.RegisterScanner(usb.NewScanner(app.logger, cfg.USB.Timeout))
	}
	if cfg.TCP.Enabled {
		app.discovery.RegisterScanner(tcp.NewScanner(app.logger, &tcp.Config{
			Hosts:       cfg.TCP.Hosts,
			ConnTimeout: cfg.TCP.ConnTimeout,
		}))
	}

	app.logger.Info("Printer discovery initialized",
		zap.Strings("scanners", app.discovery.GetAvailableScanners()),
	)
}

// renderOptions maps the formatting and feature settings onto the template engine
func (app *Application) renderOptions() template.Options {
	formatting := app.config.Formatting
	features := app.config.Features

	return template.Options{
		Number: template.NumberFormat{
			Decimals:           formatting.Decimals,
			DecimalSeparator:   formatting.DecimalSeparator,
			ThousandsSeparator: formatting.ThousandsSeparator,
		},
		DateFormat: formatting.DateFormat,
		Condensed:  features.Condensed,
		Logo: template.LogoOptions{
			Enabled:  features.Logo.Enabled,
			Path:     features.Logo.Path,
			MaxWidth: features.Logo.MaxWidth,
		},
		Barcode: template.BarcodeOptions{
			Enabled: features.Barcode.Enabled,
			BarcodeOptions: escpos.BarcodeOptions{
				Symbology: features.Barcode.Symbology,
				Height:    features.Barcode.Height,
				Width:     features.Barcode.Width,
				HRI:       features.Barcode.HRI,
			},
		},
		QR: template.QROptions{
			Enabled:  features.QR.Enabled,
			Mode:     features.QR.Mode,
			MaxWidth: features.QR.MaxWidth,
			QROptions: escpos.QROptions{
				Size:            features.QR.Size,
				ErrorCorrection: features.QR.ErrorCorrection,
			},
		},
	}
}

// initializePrinter builds the configured handler. A handler that fails to
// connect is logged and the server still starts.
func (app *Application) initializePrinter() error {
	registry := printer.NewRegistry(printer.Dependencies{
		Spooler: app.spooler,
		Finder:  app.discovery,
		Options: app.renderOptions(),
	}, app.logger)
	printer.RegisterDefaults(registry, app.logger)

	manager, err := printer.NewManager(registry, app.discovery, app.config, app.logger)
	if err != nil {
		return err
	}

	app.eventBus = handler.NewEventBus(app.logger)
	go app.eventBus.Start()
	app.manager = manager.WithPublisher(app.eventBus)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := app.manager.Initialize(ctx); err != nil {
		app.logger.Error("Printer handler not ready",
			zap.String("handler", string(app.config.HandlerType())),
			zap.Error(err),
		)
	}
	return nil
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	app.router = routes.NewRouter(
		app.config,
		app.logger,
		app.manager,
		app.discovery,
		app.eventBus,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      app.router.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown lets in-flight requests finish, then stops the printer
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "printer-server")
	serviceLogger.LogServiceStop("shutdown signal received")

	timeout := app.config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}
	app.router.Close()

	if err := app.manager.Shutdown(); err != nil {
		app.logger.Error("Printer shutdown error", zap.Error(err))
	} else {
		app.logger.Info("Printer handler stopped")
	}
	app.eventBus.Stop()

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.waitForShutdown()

	return nil
}
