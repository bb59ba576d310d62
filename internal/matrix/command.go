// internal/matrix/command.go
package matrix

import (
	"strings"

	"printer-server/internal/escpos"
)

// ESC_P_COMMANDS contains the ESC/P byte sequences for dot-matrix printers
var ESC_P_COMMANDS = struct {
	INITIALIZE       []byte
	NEW_LINE         []byte
	FORM_FEED        []byte
	CONDENSED_ON     []byte
	CONDENSED_OFF    []byte
	EXPANDED_ON      []byte
	EXPANDED_OFF     []byte
	BOLD_ON          []byte
	BOLD_OFF         []byte
	UNDERLINE_ON     []byte
	UNDERLINE_OFF    []byte
	LINE_SPACING_1_6 []byte
	LINE_SPACING_1_8 []byte
	LINE_SPACING_N   []byte // + n/180 inch
	ALIGN            []byte // + 0/1/2
}{
	INITIALIZE:       []byte{0x1B, 0x40},       // ESC @
	NEW_LINE:         []byte{0x0D, 0x0A},       // CR LF
	FORM_FEED:        []byte{0x0C},             // FF
	CONDENSED_ON:     []byte{0x0F},             // SI
	CONDENSED_OFF:    []byte{0x12},             // DC2
	EXPANDED_ON:      []byte{0x1B, 0x57, 0x01}, // ESC W 1
	EXPANDED_OFF:     []byte{0x1B, 0x57, 0x00}, // ESC W 0
	BOLD_ON:          []byte{0x1B, 0x45},       // ESC E
	BOLD_OFF:         []byte{0x1B, 0x46},       // ESC F
	UNDERLINE_ON:     []byte{0x1B, 0x2D, 0x01}, // ESC - 1
	UNDERLINE_OFF:    []byte{0x1B, 0x2D, 0x00}, // ESC - 0
	LINE_SPACING_1_6: []byte{0x1B, 0x32},       // ESC 2
	LINE_SPACING_1_8: []byte{0x1B, 0x30},       // ESC 0
	LINE_SPACING_N:   []byte{0x1B, 0x33},       // ESC 3 + n
	ALIGN:            []byte{0x1B, 0x61},       // ESC a + n
}

// DefaultColumns is the printable width in condensed mode on a 10" carriage
const DefaultColumns = 80

// Encoder maps print primitives to ESC/P byte sequences
type Encoder struct {
	Columns int
}

// NewEncoder creates a matrix encoder for the given line width
func NewEncoder(columns int) Encoder {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return Encoder{Columns: columns}
}

func cp(b []byte) []byte {
	return append([]byte(nil), b...)
}

func (Encoder) Init() []byte { return cp(ESC_P_COMMANDS.INITIALIZE) }

// Cut ejects the page. Tractor-fed printers have no cutter.
func (Encoder) Cut() []byte { return cp(ESC_P_COMMANDS.FORM_FEED) }

func (Encoder) FormFeed() []byte { return cp(ESC_P_COMMANDS.FORM_FEED) }

func (Encoder) NewLine() []byte { return cp(ESC_P_COMMANDS.NEW_LINE) }

func (e Encoder) Feed(lines int) []byte {
	out := make([]byte, 0, lines*2)
	for i := 0; i < lines; i++ {
		out = append(out, ESC_P_COMMANDS.NEW_LINE...)
	}
	return out
}

func (Encoder) LineSpacing(n int) []byte {
	if n < 0 {
		n = 0
	}
	if n > 255 {
		n = 255
	}
	return append(cp(ESC_P_COMMANDS.LINE_SPACING_N), byte(n))
}

// ResetLineSpacing returns to the default 1/6 inch spacing
func (Encoder) ResetLineSpacing() []byte { return cp(ESC_P_COMMANDS.LINE_SPACING_1_6) }

// TableSpacing selects 1/6 inch spacing for table rows
func (Encoder) TableSpacing() []byte { return cp(ESC_P_COMMANDS.LINE_SPACING_1_6) }

// BodySpacing selects the compact 1/8 inch spacing
func (Encoder) BodySpacing() []byte { return cp(ESC_P_COMMANDS.LINE_SPACING_1_8) }

func (Encoder) Align(align string) []byte {
	n := byte(0)
	switch strings.ToLower(align) {
	case "center":
		n = 1
	case "right":
		n = 2
	}
	return append(cp(ESC_P_COMMANDS.ALIGN), n)
}

func (Encoder) Bold(on bool) []byte {
	if on {
		return cp(ESC_P_COMMANDS.BOLD_ON)
	}
	return cp(ESC_P_COMMANDS.BOLD_OFF)
}

func (Encoder) Condensed(on bool) []byte {
	if on {
		return cp(ESC_P_COMMANDS.CONDENSED_ON)
	}
	return cp(ESC_P_COMMANDS.CONDENSED_OFF)
}

func (Encoder) Expanded(on bool) []byte {
	if on {
		return cp(ESC_P_COMMANDS.EXPANDED_ON)
	}
	return cp(ESC_P_COMMANDS.EXPANDED_OFF)
}

func (Encoder) Underline(on bool) []byte {
	if on {
		return cp(ESC_P_COMMANDS.UNDERLINE_ON)
	}
	return cp(ESC_P_COMMANDS.UNDERLINE_OFF)
}

// Text encodes s as code page 850 followed by CR LF
func (Encoder) Text(s string) []byte {
	return append(escpos.EncodeCP850(s), ESC_P_COMMANDS.NEW_LINE...)
}

func (e Encoder) Separator() []byte {
	cols := e.Columns
	if cols <= 0 {
		cols = DefaultColumns
	}
	return e.Text(strings.Repeat("-", cols))
}
