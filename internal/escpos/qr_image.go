// internal/escpos/qr_image.go
package escpos

import (
	"fmt"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

var qrImageLevels = map[string]qrcode.RecoveryLevel{
	"L": qrcode.Low,
	"M": qrcode.Medium,
	"Q": qrcode.High,
	"H": qrcode.Highest,
}

// QRImage renders data as a QR bitmap and emits it as a raster image.
// Used for printers without native GS ( k support.
func (e Encoder) QRImage(data string, opts QROptions, maxWidth int) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("qr data is empty")
	}

	level, ok := qrImageLevels[strings.ToUpper(opts.ErrorCorrection)]
	if !ok {
		level = qrcode.Medium
	}

	qr, err := qrcode.New(data, level)
	if err != nil {
		return nil, fmt.Errorf("failed to generate qr code: %w", err)
	}
	qr.DisableBorder = true

	size := opts.Size
	if size <= 0 {
		size = 4
	}
	// the bitmap is square; pixel size follows the module size of the native command
	side := len(qr.Bitmap()) * size
	if maxWidth > 0 && side > maxWidth {
		side = maxWidth
	}

	return e.Image(Rasterize(qr.Image(side), maxWidth)), nil
}
