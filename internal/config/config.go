// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"printer-server/internal/model"
)

// Config represents the application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Security   SecurityConfig   `mapstructure:"security"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Printer    PrinterConfig    `mapstructure:"printer"`
	Formatting FormattingConfig `mapstructure:"formatting"`
	Features   FeaturesConfig   `mapstructure:"features"`
	Queues     []QueueConfig    `mapstructure:"queues"`
	Discovery  DiscoveryConfig  `mapstructure:"discovery"`
	App        AppConfig        `mapstructure:"app"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host" validate:"required"`
	Port            string        `mapstructure:"port" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	TLS             TLSConfig     `mapstructure:"tls"`
}

// TLSConfig represents TLS configuration
type TLSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	CertFile string `mapstructure:"cert_file"`
	KeyFile  string `mapstructure:"key_file"`
}

// SecurityConfig represents security configuration
type SecurityConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level" validate:"required"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

// PrinterConfig selects the active handler. Settings holds one block per
// handler type; viper lowercases the keys.
type PrinterConfig struct {
	Handler  string                            `mapstructure:"handler" validate:"required"`
	Settings map[string]map[string]interface{} `mapstructure:"settings"`
}

// FormattingConfig is the number and date locale used by templates
type FormattingConfig struct {
	Decimals           int    `mapstructure:"decimals"`
	DecimalSeparator   string `mapstructure:"decimal_separator"`
	ThousandsSeparator string `mapstructure:"thousands_separator"`
	DateFormat         string `mapstructure:"date_format"`
}

// FeaturesConfig toggles optional ticket output
type FeaturesConfig struct {
	Condensed bool          `mapstructure:"condensed"`
	Logo      LogoConfig    `mapstructure:"logo"`
	Barcode   BarcodeConfig `mapstructure:"barcode"`
	QR        QRConfig      `mapstructure:"qr"`
}

// LogoConfig represents the ticket header image
type LogoConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Path     string `mapstructure:"path"`
	MaxWidth int    `mapstructure:"max_width"`
}

// BarcodeConfig represents barcode section settings
type BarcodeConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Symbology string `mapstructure:"symbology"`
	Height    int    `mapstructure:"height"`
	Width     int    `mapstructure:"width"`
	HRI       bool   `mapstructure:"hri"`
}

// QRConfig represents qr section settings
type QRConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Mode            string `mapstructure:"mode"`
	Size            int    `mapstructure:"size"`
	ErrorCorrection string `mapstructure:"error_correction"`
	MaxWidth        int    `mapstructure:"max_width"`
}

// QueueConfig declares a raw print queue
type QueueConfig struct {
	Name           string                 `mapstructure:"name"`
	ConnectionType string                 `mapstructure:"connection_type"`
	Settings       map[string]interface{} `mapstructure:"settings"`
}

// DiscoveryConfig represents printer discovery configuration
type DiscoveryConfig struct {
	Serial SerialDiscoveryConfig `mapstructure:"serial"`
	USB    USBDiscoveryConfig    `mapstructure:"usb"`
	TCP    TCPDiscoveryConfig    `mapstructure:"tcp"`
}

// SerialDiscoveryConfig represents serial port discovery
type SerialDiscoveryConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	PortPatterns []string `mapstructure:"port_patterns"`
	BaudRate     int      `mapstructure:"baud_rate"`
}

// USBDiscoveryConfig represents USB printer discovery
type USBDiscoveryConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TCPDiscoveryConfig represents network printer probing
type TCPDiscoveryConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Hosts       []string      `mapstructure:"hosts"`
	ConnTimeout time.Duration `mapstructure:"connection_timeout"`
}

// AppConfig represents application metadata
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Version     string `mapstructure:"version" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required"`
	Debug       bool   `mapstructure:"debug"`
}

// Load loads configuration from .env, config.yaml and environment variables
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom loads configuration from an explicit file. An empty path searches
// the default locations; a missing default file is not an error.
func LoadFrom(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error reading .env file: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/printer-server")
	}

	// Environment variable support
	v.SetEnvPrefix("PRINTER_SERVER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "5050")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.tls.enabled", false)

	// Security defaults
	v.SetDefault("security.allowed_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.max_size", 100)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 28)
	v.SetDefault("logging.compress", true)

	// Printer defaults
	v.SetDefault("printer.handler", string(model.HandlerTest))

	// Formatting defaults
	v.SetDefault("formatting.decimals", 2)
	v.SetDefault("formatting.decimal_separator", ".")
	v.SetDefault("formatting.thousands_separator", ",")
	v.SetDefault("formatting.date_format", "dd/MM/yyyy")

	// Feature defaults
	v.SetDefault("features.condensed", false)
	v.SetDefault("features.logo.enabled", false)
	v.SetDefault("features.logo.max_width", 384)
	v.SetDefault("features.barcode.enabled", true)
	v.SetDefault("features.barcode.symbology", "CODE128")
	v.SetDefault("features.barcode.height", 80)
	v.SetDefault("features.barcode.width", 2)
	v.SetDefault("features.barcode.hri", true)
	v.SetDefault("features.qr.enabled", true)
	v.SetDefault("features.qr.mode", "native")
	v.SetDefault("features.qr.size", 6)
	v.SetDefault("features.qr.error_correction", "M")
	v.SetDefault("features.qr.max_width", 256)

	// Discovery defaults
	v.SetDefault("discovery.serial.enabled", true)
	v.SetDefault("discovery.serial.baud_rate", 9600)
	v.SetDefault("discovery.usb.enabled", true)
	v.SetDefault("discovery.usb.timeout", "5s")
	v.SetDefault("discovery.tcp.enabled", false)
	v.SetDefault("discovery.tcp.connection_timeout", "2s")

	// App defaults
	v.SetDefault("app.name", "printer-server")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)
}

// validate validates the configuration
func validate(config *Config) error {
	// Basic validation
	if config.Server.Host == "" {
		return fmt.Errorf("server.host is required")
	}
	port, err := strconv.Atoi(config.Server.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %q", config.Server.Port)
	}

	// Validate handler type
	if _, err := model.ParseHandlerType(config.Printer.Handler); err != nil {
		return fmt.Errorf("printer.handler: %w", err)
	}

	// Validate environment
	validEnvs := []string{"development", "staging", "production", "test"}
	isValidEnv := false
	for _, env := range validEnvs {
		if config.App.Environment == env {
			isValidEnv = true
			break
		}
	}
	if !isValidEnv {
		return fmt.Errorf("app.environment must be one of: %v", validEnvs)
	}

	// Validate logging level
	validLevels := []string{"debug", "info", "warn", "error", "fatal"}
	isValidLevel := false
	for _, level := range validLevels {
		if config.Logging.Level == level {
			isValidLevel = true
			break
		}
	}
	if !isValidLevel {
		return fmt.Errorf("logging.level must be one of: %v", validLevels)
	}

	for i, q := range config.Queues {
		if q.Name == "" {
			return fmt.Errorf("queues[%d].name is required", i)
		}
	}

	return nil
}

// HandlerType returns the validated active handler type
func (c *Config) HandlerType() model.HandlerType {
	t, _ := model.ParseHandlerType(c.Printer.Handler)
	return t
}

// HandlerSettings returns the settings block for a handler type, never nil
func (c *Config) HandlerSettings(t model.HandlerType) map[string]interface{} {
	for key, settings := range c.Printer.Settings {
		if strings.EqualFold(key, string(t)) && settings != nil {
			return settings
		}
	}
	return map[string]interface{}{}
}

// GetServerAddr returns the server address
func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// IsProduction checks if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// IsDevelopment checks if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsDebugEnabled checks if debug mode is enabled
func (c *Config) IsDebugEnabled() bool {
	return c.App.Debug || c.IsDevelopment()
}
