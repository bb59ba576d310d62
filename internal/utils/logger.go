// internal/utils/logger.go
package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"printer-server/internal/config"
)

const defaultLogFile = "./logs/printer-server.log"

// LoggerManager builds the process logger from the logging section
type LoggerManager struct {
	config *config.LoggingConfig
}

// NewLogger creates the root logger. Output is "stdout", "stderr" or a file
// path rotated by lumberjack.
func NewLogger(cfg *config.LoggingConfig) (*zap.Logger, error) {
	lm := &LoggerManager{config: cfg}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}

	sink, err := lm.sink()
	if err != nil {
		return nil, fmt.Errorf("failed to open log output: %w", err)
	}

	core := zapcore.NewCore(lm.encoder(), sink, zap.NewAtomicLevelAt(level))
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

func (lm *LoggerManager) encoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "timestamp"
	ec.MessageKey = "message"
	ec.EncodeLevel = zapcore.LowercaseLevelEncoder
	ec.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	ec.EncodeCaller = zapcore.ShortCallerEncoder

	if lm.config.Format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func (lm *LoggerManager) sink() (zapcore.WriteSyncer, error) {
	switch lm.config.Output {
	case "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}

	path := lm.config.Output
	if path == "" {
		path = defaultLogFile
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    lm.config.MaxSize, // MB
		MaxBackups: lm.config.MaxBackups,
		MaxAge:     lm.config.MaxAge, // days
		Compress:   lm.config.Compress,
	}), nil
}

// CloseLogger flushes buffered entries. Sync on a terminal returns EINVAL on
// some platforms, which is not worth failing shutdown over.
func CloseLogger(logger *zap.Logger) error {
	if err := logger.Sync(); err != nil && !isTerminalSyncError(err) {
		return err
	}
	return nil
}

func isTerminalSyncError(err error) bool {
	var pathErr *os.PathError
	return errors.As(err, &pathErr) && (pathErr.Path == "/dev/stdout" || pathErr.Path == "/dev/stderr")
}

// PrinterLogger tags entries with the active handler and the printer it drives
type PrinterLogger struct {
	*zap.Logger
}

// NewPrinterLogger creates a printer-specific logger
func NewPrinterLogger(baseLogger *zap.Logger, handlerType, printerName string) *PrinterLogger {
	return &PrinterLogger{
		Logger: baseLogger.With(
			zap.String("component", "printer"),
			zap.String("handler", handlerType),
			zap.String("printer", printerName),
		),
	}
}

// LogOperation records one device operation such as a report or a cancel
func (pl *PrinterLogger) LogOperation(operation string, duration time.Duration, success bool, err error) {
	pl.outcome("Printer operation", err,
		zap.String("operation", operation),
		zap.Duration("duration", duration),
		zap.Bool("success", success),
	)
}

// LogConnection records open, check, attach and close events
func (pl *PrinterLogger) LogConnection(action string, success bool, err error) {
	pl.outcome("Printer connection", err,
		zap.String("action", action),
		zap.Bool("success", success),
	)
}

func (pl *PrinterLogger) outcome(message string, err error, fields ...zap.Field) {
	if err != nil {
		pl.Error(message+" failed", append(fields, zap.Error(err))...)
		return
	}
	pl.Info(message, fields...)
}

// OperationLogger times a multi-step operation such as a fiscal invoice
type OperationLogger struct {
	logger  *zap.Logger
	started time.Time
}

// NewOperationLogger creates an operation-specific logger
func NewOperationLogger(baseLogger *zap.Logger, operationType, operationID string) *OperationLogger {
	return &OperationLogger{
		logger: baseLogger.With(
			zap.String("component", "operation"),
			zap.String("operation_type", operationType),
			zap.String("operation_id", operationID),
		),
		started: time.Now(),
	}
}

func (ol *OperationLogger) Start(fields ...zap.Field) {
	ol.logger.Info("Operation started", append(fields, zap.Time("start_time", ol.started))...)
}

func (ol *OperationLogger) Success(fields ...zap.Field) {
	ol.logger.Info("Operation completed", append(fields,
		zap.Duration("duration", time.Since(ol.started)),
		zap.Bool("success", true),
	)...)
}

func (ol *OperationLogger) Error(err error, fields ...zap.Field) {
	ol.logger.Error("Operation failed", append(fields,
		zap.Duration("duration", time.Since(ol.started)),
		zap.Bool("success", false),
		zap.Error(err),
	)...)
}

// ServiceLogger provides service-level logging functionality
type ServiceLogger struct {
	*zap.Logger
}

// NewServiceLogger creates a service-specific logger
func NewServiceLogger(baseLogger *zap.Logger, serviceName string) *ServiceLogger {
	return &ServiceLogger{
		Logger: baseLogger.With(
			zap.String("component", "service"),
			zap.String("service", serviceName),
		),
	}
}

// LogServiceStart logs startup. Handler settings can carry credentials, so
// callers pass selected fields instead of the whole config.
func (sl *ServiceLogger) LogServiceStart(version string, fields ...zap.Field) {
	sl.Info("Service starting", append(fields, zap.String("version", version))...)
}

func (sl *ServiceLogger) LogServiceStop(reason string) {
	sl.Info("Service stopping", zap.String("reason", reason))
}

// APIRequest describes one served HTTP request
type APIRequest struct {
	RequestID  string
	Method     string
	Path       string
	UserAgent  string
	ClientIP   string
	StatusCode int
	Duration   time.Duration
}

// LogAPIRequest logs at info, warn for 4xx and error for 5xx
func (sl *ServiceLogger) LogAPIRequest(req APIRequest) {
	level := zapcore.InfoLevel
	switch {
	case req.StatusCode >= 500:
		level = zapcore.ErrorLevel
	case req.StatusCode >= 400:
		level = zapcore.WarnLevel
	}

	if ce := sl.Check(level, "API request"); ce != nil {
		ce.Write(
			zap.String("request_id", req.RequestID),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.String("user_agent", req.UserAgent),
			zap.String("client_ip", req.ClientIP),
			zap.Int("status_code", req.StatusCode),
			zap.Duration("duration", req.Duration),
		)
	}
}
