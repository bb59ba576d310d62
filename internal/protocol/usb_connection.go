// internal/protocol/usb_connection.go
package protocol

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
	"go.uber.org/zap"

	"printer-server/internal/model"
)

// USBChannel implements Channel over a USB printer-class bulk endpoint
type USBChannel struct {
	config  *USBConfig
	ctx     *gousb.Context
	device  *gousb.Device
	release func()
	outEp   *gousb.OutEndpoint
	inEp    *gousb.InEndpoint
	logger  *zap.Logger
	mutex   sync.RWMutex
	stats   statsRecorder
}

func NewUSBChannel(config *USBConfig, logger *zap.Logger) *USBChannel {
	if config.Endpoint == 0 {
		config.Endpoint = 1
	}
	return &USBChannel{
		config: config,
		logger: logger.With(
			zap.String("protocol", "usb"),
			zap.String("vendor_id", config.VendorID),
			zap.String("product_id", config.ProductID),
		),
	}
}

// parseHexID accepts "04b8", "0x04b8" or "0X04B8"
func parseHexID(s string) (gousb.ID, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid USB id %q: %w", s, err)
	}
	return gousb.ID(v), nil
}

func (uc *USBChannel) Open(ctx context.Context) error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.device != nil {
		return nil
	}

	vid, err := parseHexID(uc.config.VendorID)
	if err != nil {
		return err
	}
	pid, err := parseHexID(uc.config.ProductID)
	if err != nil {
		return err
	}

	usbCtx := gousb.NewContext()
	devices, err := usbCtx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == vid && desc.Product == pid
	})
	if err != nil && len(devices) == 0 {
		usbCtx.Close()
		return fmt.Errorf("failed to enumerate USB devices: %w", err)
	}

	var device *gousb.Device
	for _, d := range devices {
		if device == nil && uc.matchesSerial(d) {
			device = d
			continue
		}
		d.Close()
	}
	if device == nil {
		usbCtx.Close()
		return fmt.Errorf("USB printer %s:%s not found", uc.config.VendorID, uc.config.ProductID)
	}

	if err := device.SetAutoDetach(true); err != nil {
		uc.logger.Warn("Failed to enable kernel driver auto-detach", zap.Error(err))
	}

	intf, done, err := device.DefaultInterface()
	if err != nil {
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to claim USB interface: %w", err)
	}

	outEp, err := intf.OutEndpoint(uc.config.Endpoint)
	if err != nil {
		done()
		device.Close()
		usbCtx.Close()
		return fmt.Errorf("failed to open OUT endpoint %d: %w", uc.config.Endpoint, err)
	}

	// Many receipt printers are write-only
	inEp, err := intf.InEndpoint(uc.config.Endpoint | 0x80)
	if err != nil {
		uc.logger.Debug("No IN endpoint available", zap.Error(err))
		inEp = nil
	}

	uc.ctx = usbCtx
	uc.device = device
	uc.release = done
	uc.outEp = outEp
	uc.inEp = inEp
	uc.stats.connected(true)

	uc.logger.Info("USB printer opened")
	return nil
}

func (uc *USBChannel) matchesSerial(d *gousb.Device) bool {
	if uc.config.SerialNumber == "" {
		return true
	}
	serial, err := d.SerialNumber()
	return err == nil && serial == uc.config.SerialNumber
}

func (uc *USBChannel) Close() error {
	uc.mutex.Lock()
	defer uc.mutex.Unlock()

	if uc.device == nil {
		return nil
	}

	if uc.release != nil {
		uc.release()
	}
	err := uc.device.Close()
	uc.ctx.Close()

	uc.device, uc.ctx, uc.release = nil, nil, nil
	uc.outEp, uc.inEp = nil, nil
	uc.stats.connected(false)

	if err != nil {
		return fmt.Errorf("failed to close USB device: %w", err)
	}
	return nil
}

func (uc *USBChannel) IsOpen() bool {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()
	return uc.device != nil
}

func (uc *USBChannel) Write(ctx context.Context, data []byte) error {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()

	if uc.outEp == nil {
		return ErrNotOpen
	}

	if uc.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	n, err := uc.outEp.WriteContext(ctx, data)
	if err != nil {
		uc.stats.failed()
		uc.logger.Error("USB write failed", zap.Error(err))
		return fmt.Errorf("failed to write to USB printer: %w", err)
	}
	if n != len(data) {
		uc.stats.failed()
		return fmt.Errorf("incomplete write: wrote %d of %d bytes", n, len(data))
	}

	uc.stats.wrote(n, time.Since(start))
	return nil
}

func (uc *USBChannel) Read(ctx context.Context, maxBytes int) ([]byte, error) {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()

	if uc.device == nil {
		return nil, ErrNotOpen
	}
	if uc.inEp == nil {
		return nil, fmt.Errorf("USB printer has no IN endpoint")
	}

	buffer := make([]byte, maxBytes)
	n, err := uc.inEp.ReadContext(ctx, buffer)
	if err != nil {
		uc.stats.failed()
		return nil, fmt.Errorf("failed to read from USB printer: %w", err)
	}

	uc.stats.read(n)
	return buffer[:n], nil
}

func (uc *USBChannel) Type() model.ConnectionType {
	return model.ConnectionTypeUSB
}

func (uc *USBChannel) Stats() ProtocolStats {
	return uc.stats.snapshot()
}

// Ping re-reads the active configuration, which fails once the device is gone
func (uc *USBChannel) Ping(ctx context.Context) error {
	uc.mutex.RLock()
	defer uc.mutex.RUnlock()

	if uc.device == nil {
		return ErrNotOpen
	}
	if _, err := uc.device.ActiveConfigNum(); err != nil {
		return fmt.Errorf("USB printer not responding: %w", err)
	}
	return nil
}
