// internal/escpos/command.go
package escpos

// ESC_POS_COMMANDS contains the ESC/POS byte sequences used by the ticket encoder
var ESC_POS_COMMANDS = struct {
	// Basic commands
	INITIALIZE []byte

	// Text formatting
	TEXT_BOLD_ON       []byte
	TEXT_BOLD_OFF      []byte
	TEXT_DOUBLE_HEIGHT []byte
	TEXT_NORMAL_HEIGHT []byte
	TEXT_CONDENSED     []byte
	TEXT_NORMAL_MODE   []byte

	// Text size
	FONT_SIZE_NORMAL []byte
	FONT_SIZE_DOUBLE []byte

	// Text alignment
	ALIGN_LEFT   []byte
	ALIGN_CENTER []byte
	ALIGN_RIGHT  []byte

	// Paper handling
	LINE_FEED          []byte
	FEED_LINES         []byte // + line count byte
	LINE_SPACING       []byte // + dots byte
	LINE_SPACING_RESET []byte

	// Cutting
	CUT_FULL []byte

	// Graphics and barcodes
	BARCODE_HRI    []byte // + position byte
	BARCODE_HEIGHT []byte // + dots byte
	BARCODE_WIDTH  []byte // + module byte
	BARCODE_PRINT  []byte // + type, length, data
	QR_MODEL_2     []byte
	QR_SIZE        []byte // + module size byte
	QR_ERROR_LEVEL []byte // + level byte
	QR_STORE       []byte // + pL pH 31 50 30 data
	QR_PRINT       []byte
	RASTER_IMAGE   []byte // + xL xH yL yH data
}{
	// Basic commands
	INITIALIZE: []byte{0x1B, 0x40}, // ESC @

	// Text formatting
	TEXT_BOLD_ON:       []byte{0x1B, 0x45, 0x01}, // ESC E 1
	TEXT_BOLD_OFF:      []byte{0x1B, 0x45, 0x00}, // ESC E 0
	TEXT_DOUBLE_HEIGHT: []byte{0x1B, 0x21, 0x10}, // ESC ! 16
	TEXT_NORMAL_HEIGHT: []byte{0x1B, 0x21, 0x00}, // ESC ! 0
	TEXT_CONDENSED:     []byte{0x1B, 0x21, 0x01}, // ESC ! 1 (font B)
	TEXT_NORMAL_MODE:   []byte{0x1B, 0x21, 0x00}, // ESC ! 0

	// Text size
	FONT_SIZE_NORMAL: []byte{0x1D, 0x21, 0x00}, // GS ! 0
	FONT_SIZE_DOUBLE: []byte{0x1D, 0x21, 0x11}, // GS ! 17

	// Text alignment
	ALIGN_LEFT:   []byte{0x1B, 0x61, 0x00}, // ESC a 0
	ALIGN_CENTER: []byte{0x1B, 0x61, 0x01}, // ESC a 1
	ALIGN_RIGHT:  []byte{0x1B, 0x61, 0x02}, // ESC a 2

	// Paper handling
	LINE_FEED:          []byte{0x0A},       // LF
	FEED_LINES:         []byte{0x1B, 0x64}, // ESC d + n
	LINE_SPACING:       []byte{0x1B, 0x33}, // ESC 3 + n
	LINE_SPACING_RESET: []byte{0x1B, 0x32}, // ESC 2

	// Cutting
	CUT_FULL: []byte{0x1D, 0x56, 0x41, 0x0A}, // GS V A 10

	// Graphics and barcodes
	BARCODE_HRI:    []byte{0x1D, 0x48},                                           // GS H
	BARCODE_HEIGHT: []byte{0x1D, 0x68},                                           // GS h
	BARCODE_WIDTH:  []byte{0x1D, 0x77},                                           // GS w
	BARCODE_PRINT:  []byte{0x1D, 0x6B},                                           // GS k
	QR_MODEL_2:     []byte{0x1D, 0x28, 0x6B, 0x04, 0x00, 0x31, 0x41, 0x32, 0x00}, // GS ( k fn 65
	QR_SIZE:        []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x43},             // GS ( k fn 67
	QR_ERROR_LEVEL: []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x45},             // GS ( k fn 69
	QR_STORE:       []byte{0x1D, 0x28, 0x6B},                                     // GS ( k fn 80
	QR_PRINT:       []byte{0x1D, 0x28, 0x6B, 0x03, 0x00, 0x31, 0x51, 0x30},       // GS ( k fn 81
	RASTER_IMAGE:   []byte{0x1D, 0x76, 0x30, 0x00},                               // GS v 0
}

// Barcode symbology codes accepted by GS k (function B)
var barcodeTypes = map[string]byte{
	"UPC-A":   0,
	"UPCA":    0,
	"UPC-E":   1,
	"UPCE":    1,
	"EAN13":   2,
	"EAN-13":  2,
	"EAN8":    3,
	"EAN-8":   3,
	"CODE39":  4,
	"ITF":     5,
	"CODABAR": 6,
	"CODE128": 73,
}

// QR error correction levels for GS ( k fn 69
var qrErrorLevels = map[string]byte{
	"L": 48,
	"M": 49,
	"Q": 50,
	"H": 51,
}

// join concatenates command fragments into a fresh buffer
func join(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
