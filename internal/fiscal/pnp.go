// internal/fiscal/pnp.go
package fiscal

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"printer-server/internal/model"
	"printer-server/internal/protocol"
)

const (
	pnpSeqMin = 0x20
	pnpSeqMax = 0x7F
)

// PnP printer status bits
const (
	pnpPrinterError   = 1 << 2
	pnpPrinterOffline = 1 << 3
	pnpPaperOut       = 1 << 14
	pnpGeneralError   = 1 << 15
)

// PnP fiscal status bits
const (
	pnpFiscalMemoryError = 1 << 0
	pnpWorkMemoryError   = 1 << 1
	pnpUnknownCommand    = 1 << 3
	pnpInvalidData       = 1 << 4
	pnpInvalidCommand    = 1 << 5
	pnpTotalsOverflow    = 1 << 6
	pnpMemoryFull        = 1 << 7
	pnpMemoryNearFull    = 1 << 8
	pnpNeedsClosure      = 1 << 11
	pnpInvoiceOpen       = 1 << 12
	pnpNonFiscalOpen     = 1 << 13
)

// PnPDevice speaks the PnP framing: STX seq cmd {FS field} ETX BCC
type PnPDevice struct {
	settings SerialSettings
	open     ChannelOpener
	channel  protocol.Channel
	sequence byte
	logger   *zap.Logger
	mutex    sync.Mutex
}

func NewPnPDevice(settings SerialSettings, logger *zap.Logger) *PnPDevice {
	if settings.BaudRate == 0 {
		settings.BaudRate = 9600
	}
	if settings.Parity == "" {
		settings.Parity = "none"
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 2 * time.Second
	}

	logger = logger.With(zap.String("device", "pnp"))
	return &PnPDevice{
		settings: settings,
		open:     settings.opener(logger),
		sequence: pnpSeqMax,
		logger:   logger,
	}
}

// WithOpener replaces the channel opener, mainly for tests
func (d *PnPDevice) WithOpener(open ChannelOpener) *PnPDevice {
	d.open = open
	return d
}

// BCC is the byte sum of the whole frame as four uppercase hex digits
func BCC(frame []byte) []byte {
	var sum uint16
	for _, b := range frame {
		sum += uint16(b)
	}
	return []byte(fmt.Sprintf("%04X", sum))
}

// nextSequence cycles 0x20..0x7F so consecutive frames never repeat
func (d *PnPDevice) nextSequence() byte {
	d.sequence++
	if d.sequence < pnpSeqMin || d.sequence > pnpSeqMax {
		d.sequence = pnpSeqMin
	}
	return d.sequence
}

// FramePnP turns "B|desc|1000|250|1600|M" into a wire frame. Empty
// fields are sent as DEL.
func FramePnP(seq byte, cmd string) []byte {
	parts := strings.Split(cmd, "|")

	frame := []byte{STX, seq}
	frame = append(frame, encodeLatin1(parts[0])...)
	for _, field := range parts[1:] {
		frame = append(frame, FS)
		if field == "" {
			frame = append(frame, DEL)
			continue
		}
		frame = append(frame, encodeLatin1(field)...)
	}
	frame = append(frame, ETX)
	return append(frame, BCC(frame)...)
}

func (d *PnPDevice) OpenPort(name string) bool {
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

func (d *PnPDevice) ClosePort() {
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

func (d *PnPDevice) CheckPrinter() bool {
	_, err := d.ReadStatus()
	return err == nil
}

// SendCommand succeeds when the reply carries no error bits
func (d *PnPDevice) SendCommand(cmd string) bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	fields, err := d.transact(cmd)
	if err != nil {
		d.logger.Error("Command failed", zap.String("command", cmd), zap.Error(err))
		return false
	}

	printerBits, fiscalBits := pnpStatusBits(fields)
	if printerBits&(pnpPrinterError|pnpPrinterOffline|pnpPaperOut) != 0 ||
		fiscalBits&(pnpUnknownCommand|pnpInvalidData|pnpInvalidCommand) != 0 {
		d.logger.Error("Command rejected",
			zap.String("command", cmd),
			zap.String("printer_status", fmt.Sprintf("%04X", printerBits)),
			zap.String("fiscal_status", fmt.Sprintf("%04X", fiscalBits)),
		)
		return false
	}

	d.logger.Debug("Command accepted", zap.String("command", cmd))
	return true
}

// ReadStatus maps the PnP status words onto the shared status table
func (d *PnPDevice) ReadStatus() (model.PrinterStatus, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	fields, err := d.transact("8|N")
	if err != nil {
		return NewStatus(StatusUnknown, ErrorNoResponse), err
	}

	printerBits, fiscalBits := pnpStatusBits(fields)
	return decodePnP(printerBits, fiscalBits), nil
}

// UploadS1 reads the serial/registration block
func (d *PnPDevice) UploadS1() (S1Data, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	fields, err := d.transact("\u0080")
	if err != nil {
		return S1Data{}, err
	}

	field := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	return S1Data{
		RegisteredSerial: field(3),
		RIF:              field(4),
	}, nil
}

// transact writes one frame and returns the reply fields after the echo
func (d *PnPDevice) transact(cmd string) ([]string, error) {
	if d.channel == nil {
		return nil, ErrPortClosed
	}

	ctx := context.Background()
	if r, ok := d.channel.(interface{ ResetInput() error }); ok {
		if err := r.ResetInput(); err != nil {
			d.logger.Debug("Failed to reset fiscal input buffer", zap.Error(err))
		}
	}
	if err := d.channel.Write(ctx, FramePnP(d.nextSequence(), cmd)); err != nil {
		return nil, err
	}

	reply, err := protocol.ReadUntil(ctx, d.channel, ETX, 4, d.settings.Timeout)
	if err != nil {
		return nil, fmt.Errorf("reply: %w", err)
	}
	return ParsePnPReply(reply)
}

// ParsePnPReply checks the BCC and splits the body on FS
func ParsePnPReply(reply []byte) ([]string, error) {
	start := bytes.LastIndexByte(reply, STX)
	if start < 0 {
		return nil, fmt.Errorf("reply is not framed")
	}
	reply = reply[start:]

	end := bytes.IndexByte(reply, ETX)
	if end < 0 || len(reply) < end+5 {
		return nil, fmt.Errorf("reply is truncated")
	}
	if !bytes.Equal(BCC(reply[:end+1]), reply[end+1:end+5]) {
		return nil, ErrBadChecksum
	}

	parts := bytes.Split(reply[1:end], []byte{FS})
	fields := make([]string, 0, len(parts))
	for _, p := range parts[1:] {
		fields = append(fields, string(p))
	}
	for i, f := range fields {
		if f == "ERROR" {
			detail := ""
			if i+1 < len(fields) {
				detail = fields[i+1]
			}
			return nil, fmt.Errorf("printer error: %s", detail)
		}
	}
	return fields, nil
}

func pnpStatusBits(fields []string) (printer, fiscal uint16) {
	parse := func(i int) uint16 {
		if i >= len(fields) {
			return 0
		}
		v, err := strconv.ParseUint(fields[i], 16, 16)
		if err != nil {
			return 0
		}
		return uint16(v)
	}
	return parse(0), parse(1)
}

func decodePnP(printerBits, fiscalBits uint16) model.PrinterStatus {
	var status int
	switch {
	case fiscalBits&pnpMemoryFull != 0:
		status = StatusFullStandby
	case fiscalBits&pnpMemoryNearFull != 0:
		status = StatusNearFullStandby
	default:
		status = StatusFiscalStandby
	}
	// Document states sit one and two codes above standby
	switch {
	case fiscalBits&pnpInvoiceOpen != 0:
		status++
	case fiscalBits&pnpNonFiscalOpen != 0:
		status += 2
	}

	errCode := ErrorNone
	switch {
	case printerBits&pnpPaperOut != 0 && printerBits&pnpPrinterError != 0:
		errCode = ErrorPaperBoth
	case printerBits&pnpPaperOut != 0:
		errCode = ErrorPaperEnd
	case printerBits&pnpPrinterError != 0:
		errCode = ErrorPaperMechanical
	case printerBits&pnpPrinterOffline != 0:
		errCode = ErrorNoResponse
	case fiscalBits&pnpMemoryFull != 0:
		errCode = ErrorFiscalMemoryFull
	case fiscalBits&(pnpFiscalMemoryError|pnpWorkMemoryError) != 0:
		errCode = ErrorFiscalMemory
	case fiscalBits&(pnpInvalidCommand|pnpUnknownCommand) != 0:
		errCode = ErrorInvalidCommand
	case fiscalBits&pnpInvalidData != 0:
		errCode = ErrorInvalidValue
	case fiscalBits&(pnpTotalsOverflow|pnpNeedsClosure) != 0 || printerBits&pnpGeneralError != 0:
		errCode = ErrorFiscal
	}

	return NewStatus(status, errCode)
}
