// internal/protocol/connection.go
package protocol

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// SerialConfig is a serial queue or fiscal port
type SerialConfig struct {
	Port     string        `mapstructure:"port"`
	BaudRate int           `mapstructure:"baud_rate"`
	DataBits int           `mapstructure:"data_bits"`
	StopBits int           `mapstructure:"stop_bits"`
	Parity   string        `mapstructure:"parity"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// USBConfig selects a printer-class USB device by vendor and product id (hex)
type USBConfig struct {
	VendorID     string        `mapstructure:"vendor_id"`
	ProductID    string        `mapstructure:"product_id"`
	Endpoint     int           `mapstructure:"endpoint"`
	SerialNumber string        `mapstructure:"serial_number"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// TCPConfig is a raw socket printer, usually on port 9100
type TCPConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	SSL          bool          `mapstructure:"ssl"`
	KeepAlive    bool          `mapstructure:"keep_alive"`
	Timeout      time.Duration `mapstructure:"timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// FileConfig is a character device or spool file written directly
type FileConfig struct {
	Path   string `mapstructure:"path"`
	Append bool   `mapstructure:"append"`
}

func serialConfigFrom(settings map[string]interface{}) (*SerialConfig, error) {
	cfg := &SerialConfig{BaudRate: 9600, DataBits: 8, StopBits: 1, Parity: "none", Timeout: time.Second}
	if err := decodeSettings(settings, cfg); err != nil {
		return nil, err
	}
	cfg.Parity = strings.ToLower(cfg.Parity)
	return cfg, nil
}

func usbConfigFrom(settings map[string]interface{}) (*USBConfig, error) {
	cfg := &USBConfig{Endpoint: 1, Timeout: 5 * time.Second}
	return cfg, decodeSettings(settings, cfg)
}

func tcpConfigFrom(settings map[string]interface{}) (*TCPConfig, error) {
	cfg := &TCPConfig{
		Port:         DefaultTCPPort,
		KeepAlive:    true,
		Timeout:      5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	return cfg, decodeSettings(settings, cfg)
}

func fileConfigFrom(settings map[string]interface{}) (*FileConfig, error) {
	cfg := &FileConfig{Append: true}
	return cfg, decodeSettings(settings, cfg)
}

// decodeSettings overlays a settings map on a config that already holds its
// defaults. Settings arrive from JSON (float64), viper (int, string) or env
// vars (string), so input is weakly typed.
func decodeSettings(settings map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			millisecondsHook,
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create settings decoder: %w", err)
	}
	if err := decoder.Decode(settings); err != nil {
		return fmt.Errorf("invalid connection settings: %w", err)
	}
	return nil
}

// millisecondsHook reads bare numbers as milliseconds; "500ms" style strings
// fall through to the duration parser.
func millisecondsHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v) * time.Millisecond, nil
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return time.Duration(n) * time.Millisecond, nil
		}
	}
	return data, nil
}
