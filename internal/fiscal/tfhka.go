// internal/fiscal/tfhka.go
package fiscal

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/model"
	"printer-server/internal/protocol"
)

const (
	STX = 0x02
	ETX = 0x03
	ENQ = 0x05
	ACK = 0x06
	NAK = 0x15
	FS  = 0x1C
	DEL = 0x7F
)

// ChannelOpener creates the serial channel for a port name
type ChannelOpener func(port string) protocol.Channel

// SerialSettings tunes the line discipline shared by both fiscal protocols
type SerialSettings struct {
	BaudRate int
	Parity   string
	Timeout  time.Duration
	Retries  int
}

func (s SerialSettings) opener(logger *zap.Logger) ChannelOpener {
	return func(port string) protocol.Channel {
		return protocol.NewSerialChannel(&protocol.SerialConfig{
			Port:     port,
			BaudRate: s.BaudRate,
			DataBits: 8,
			StopBits: 1,
			Parity:   s.Parity,
			Timeout:  100 * time.Millisecond,
		}, logger)
	}
}

// TFHKADevice speaks the HKA framing: STX cmd ETX LRC, answered by ACK/NAK
type TFHKADevice struct {
	settings SerialSettings
	open     ChannelOpener
	channel  protocol.Channel
	logger   *zap.Logger
	mutex    sync.Mutex
}

func NewTFHKADevice(settings SerialSettings, logger *zap.Logger) *TFHKADevice {
	if settings.BaudRate == 0 {
		settings.BaudRate = 9600
	}
	if settings.Parity == "" {
		settings.Parity = "even"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 2 * time.Second
	}
	if settings.Retries <= 0 {
		settings.Retries = 3
	}

	logger = logger.With(zap.String("device", "tfhka"))
	return &TFHKADevice{
		settings: settings,
		open:     settings.opener(logger),
		logger:   logger,
	}
}

// WithOpener replaces the channel opener, mainly for tests
func (d *TFHKADevice) WithOpener(open ChannelOpener) *TFHKADevice {
	d.open = open
	return d
}

// LRC is the XOR of every byte after STX up to and including ETX
func LRC(payload []byte) byte {
	var lrc byte
	for _, b := range payload {
		lrc ^= b
	}
	return lrc ^ ETX
}

// FrameTFHKA wraps a command for the wire
func FrameTFHKA(cmd string) []byte {
	payload := encodeLatin1(cmd)
	frame := make([]byte, 0, len(payload)+3)
	frame = append(frame, STX)
	frame = append(frame, payload...)
	frame = append(frame, ETX, LRC(payload))
	return frame
}

func (d *TFHKADevice) OpenPort(name string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.channel != nil {
		d.channel.Close()
	}

	ch := d.open(name)
	if err := ch.Open(context.Background()); err != nil {
		d.logger.Error("Failed to open fiscal port", zap.String("port", name), zap.Error(err))
		return false
	}

	d.channel = ch
	d.logger.Info("Fiscal port opened", zap.String("port", name))
	return true
}

func (d *TFHKADevice) ClosePort() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.channel == nil {
		return
	}
	if err := d.channel.Close(); err != nil {
		d.logger.Warn("Failed to close fiscal port", zap.Error(err))
	}
	d.channel = nil
}

// CheckPrinter reports whether the printer answers ENQ
func (d *TFHKADevice) CheckPrinter() bool {
	status, err := d.ReadStatus()
	if err != nil {
		return false
	}
	return status.ErrorCode != ErrorNoResponse && status.ErrorCode != ErrorCommunication
}

// SendCommand writes one command, retrying on NAK or silence
func (d *TFHKADevice) SendCommand(cmd string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.channel == nil {
		d.logger.Error("Command sent on closed port", zap.String("command", cmd))
		return false
	}

	frame := FrameTFHKA(cmd)
	for attempt := 1; attempt <= d.settings.Retries+1; attempt++ {
		reply, err := d.exchange(frame, 1)
		if err != nil {
			d.logger.Debug("No reply to command",
				zap.String("command", cmd),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		switch reply[0] {
		case ACK:
			d.logger.Debug("Command accepted", zap.String("command", cmd))
			return true
		case NAK:
			d.logger.Debug("Command rejected", zap.String("command", cmd), zap.Int("attempt", attempt))
		default:
			d.logger.Debug("Unexpected reply", zap.String("command", cmd), zap.Binary("reply", reply))
		}
	}

	d.logger.Error("Command failed", zap.String("command", cmd))
	return false
}

// ReadStatus polls STS1/STS2 with ENQ
func (d *TFHKADevice) ReadStatus() (model.PrinterStatus, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.channel == nil {
		return NewStatus(StatusUnknown, ErrorCommunication), ErrPortClosed
	}

	reply, err := d.exchange([]byte{ENQ}, 5)
	if err != nil {
		return NewStatus(StatusUnknown, ErrorNoResponse), fmt.Errorf("status request: %w", err)
	}

	sts1, sts2 := reply[1], reply[2]
	if sts1^sts2^ETX != reply[4] {
		return NewStatus(StatusUnknown, ErrorLRC), ErrBadChecksum
	}
	return decodeTFHKA(sts1, sts2), nil
}

// UploadS1 reads the S1 counters block
func (d *TFHKADevice) UploadS1() (S1Data, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.channel == nil {
		return S1Data{}, ErrPortClosed
	}

	payload, err := d.readBlock("S1")
	if err != nil {
		return S1Data{}, err
	}
	return ParseS1(payload), nil
}

func (d *TFHKADevice) exchange(frame []byte, replyLen int) ([]byte, error) {
	ctx := context.Background()
	if r, ok := d.channel.(interface{ ResetInput() error }); ok {
		if err := r.ResetInput(); err != nil {
			d.logger.Debug("Failed to reset fiscal input buffer", zap.Error(err))
		}
	}
	if err := d.channel.Write(ctx, frame); err != nil {
		return nil, err
	}
	return protocol.ReadExact(ctx, d.channel, replyLen, d.settings.Timeout)
}

// readBlock sends an extended read and returns the text between STX and ETX
func (d *TFHKADevice) readBlock(cmd string) (string, error) {
	ctx := context.Background()
	if err := d.channel.Write(ctx, FrameTFHKA(cmd)); err != nil {
		return "", fmt.Errorf("%s request: %w", cmd, err)
	}

	reply, err := protocol.ReadUntil(ctx, d.channel, ETX, 1, d.settings.Timeout)
	if err != nil {
		return "", fmt.Errorf("%s reply: %w", cmd, err)
	}

	// The LRC trails ETX and may itself be 0x03
	start := bytes.IndexByte(reply, STX)
	end := len(reply) - 2
	if start < 0 || end <= start || reply[end] != ETX {
		return "", fmt.Errorf("%s reply is not framed", cmd)
	}

	body := reply[start+1 : end]
	if LRC(body) != reply[end+1] {
		return "", ErrBadChecksum
	}
	return string(body), nil
}

// ParseS1 splits the S1 block into its fixed line positions
func ParseS1(payload string) S1Data {
	var lines []string
	for i, line := range strings.Split(payload, "\n") {
		clean := strings.TrimSpace(line)
		if i == 0 {
			clean = strings.TrimSpace(strings.TrimPrefix(clean, "S1"))
		}
		if clean != "" {
			lines = append(lines, clean)
		}
	}

	field := func(i int) string {
		if i < len(lines) {
			return lines[i]
		}
		return ""
	}

	return S1Data{
		CashierStatus:       field(0),
		TotalDailySales:     field(1),
		LastInvoiceNumber:   field(2),
		InvoicesToday:       field(3),
		LastDebitNote:       field(4),
		DebitNotesToday:     field(5),
		LastCreditNote:      field(6),
		CreditNotesToday:    field(7),
		LastNonFiscal:       field(8),
		NonFiscalToday:      field(9),
		DailyClosureCounter: field(10),
		FiscalReportCounter: field(11),
		RIF:                 field(12),
		RegisteredSerial:    field(13),
		PrinterTime:         field(14),
		PrinterDate:         field(15),
	}
}
