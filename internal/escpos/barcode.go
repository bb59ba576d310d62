// internal/escpos/barcode.go
package escpos

import (
	"fmt"
	"strings"
)

// BarcodeOptions configures a GS k barcode
type BarcodeOptions struct {
	Symbology string
	Height    int
	Width     int
	HRI       bool
}

// QROptions configures a native GS ( k QR code
type QROptions struct {
	Size            int
	ErrorCorrection string
}

// BarcodeType resolves a symbology name. Unknown names fall back to CODE128.
func BarcodeType(symbology string) byte {
	if t, ok := barcodeTypes[strings.ToUpper(symbology)]; ok {
		return t
	}
	return barcodeTypes["CODE128"]
}

// Barcode emits HRI position, height, module width and the barcode data
func (Encoder) Barcode(data string, opts BarcodeOptions) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("barcode data is empty")
	}
	if len(data) > 255 {
		return nil, fmt.Errorf("barcode data too long: %d bytes", len(data))
	}

	hri := byte(0)
	if opts.HRI {
		hri = 2
	}

	return join(
		ESC_POS_COMMANDS.BARCODE_HRI, []byte{hri},
		ESC_POS_COMMANDS.BARCODE_HEIGHT, []byte{clampByte(opts.Height)},
		ESC_POS_COMMANDS.BARCODE_WIDTH, []byte{clampByte(opts.Width)},
		ESC_POS_COMMANDS.BARCODE_PRINT, []byte{BarcodeType(opts.Symbology), byte(len(data))},
		[]byte(data),
	), nil
}

// QRCode emits the model, size, error level, store and print functions
func (Encoder) QRCode(data string, opts QROptions) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("qr data is empty")
	}
	payload := []byte(data)
	length := len(payload) + 3
	if length > 0xFFFF {
		return nil, fmt.Errorf("qr data too long: %d bytes", len(payload))
	}

	level, ok := qrErrorLevels[strings.ToUpper(opts.ErrorCorrection)]
	if !ok {
		level = qrErrorLevels["M"]
	}

	return join(
		ESC_POS_COMMANDS.QR_MODEL_2,
		ESC_POS_COMMANDS.QR_SIZE, []byte{clampByte(opts.Size)},
		ESC_POS_COMMANDS.QR_ERROR_LEVEL, []byte{level},
		ESC_POS_COMMANDS.QR_STORE, []byte{byte(length & 0xFF), byte((length >> 8) & 0xFF), 0x31, 0x50, 0x30},
		payload,
		ESC_POS_COMMANDS.QR_PRINT,
	), nil
}
