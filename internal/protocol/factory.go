// internal/protocol/factory.go
package protocol

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"printer-server/internal/model"
)

// ErrNotOpen is returned by I/O on a channel that has not been opened
var ErrNotOpen = errors.New("channel is not open")

// New creates a channel from a queue or handler settings map
func New(connectionType model.ConnectionType, settings map[string]interface{}, logger *zap.Logger) (Channel, error) {
	if err := ValidateConfig(connectionType, settings); err != nil {
		return nil, err
	}

	switch connectionType {
	case model.ConnectionTypeSerial:
		cfg, err := serialConfigFrom(settings)
		if err != nil {
			return nil, err
		}
		return NewSerialChannel(cfg, logger), nil
	case model.ConnectionTypeUSB:
		cfg, err := usbConfigFrom(settings)
		if err != nil {
			return nil, err
		}
		return NewUSBChannel(cfg, logger), nil
	case model.ConnectionTypeTCP:
		cfg, err := tcpConfigFrom(settings)
		if err != nil {
			return nil, err
		}
		return NewTCPChannel(cfg, logger), nil
	case model.ConnectionTypeFile:
		cfg, err := fileConfigFrom(settings)
		if err != nil {
			return nil, err
		}
		return NewFileChannel(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported connection type: %s", connectionType)
	}
}

// ValidateConfig checks the required keys for a connection type
func ValidateConfig(connectionType model.ConnectionType, settings map[string]interface{}) error {
	switch connectionType {
	case model.ConnectionTypeSerial:
		if !present(settings, "port") {
			return fmt.Errorf("serial port is required")
		}
	case model.ConnectionTypeUSB:
		if !present(settings, "vendor_id") || !present(settings, "product_id") {
			return fmt.Errorf("vendor_id and product_id are required")
		}
	case model.ConnectionTypeTCP:
		if !present(settings, "host") {
			return fmt.Errorf("host is required")
		}
	case model.ConnectionTypeFile:
		if !present(settings, "path") {
			return fmt.Errorf("path is required")
		}
	default:
		return fmt.Errorf("unsupported connection type: %s", connectionType)
	}
	return nil
}

// present reports whether a required key holds a non-empty value
func present(settings map[string]interface{}, key string) bool {
	v, ok := settings[key]
	if !ok || v == nil {
		return false
	}
	return strings.TrimSpace(fmt.Sprint(v)) != ""
}
