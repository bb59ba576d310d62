// internal/escpos/encoder.go
package escpos

import (
	"strings"

	"golang.org/x/text/encoding/charmap"
)

// DefaultColumns is the character width of an 80mm ticket in font A
const DefaultColumns = 42

// Encoder maps print primitives to ESC/POS byte sequences. It holds no state
// beyond its line width and every method returns a new buffer.
type Encoder struct {
	Columns int
}

// NewEncoder creates an encoder for the given line width
func NewEncoder(columns int) Encoder {
	if columns <= 0 {
		columns = DefaultColumns
	}
	return Encoder{Columns: columns}
}

func (Encoder) Init() []byte { return join(ESC_POS_COMMANDS.INITIALIZE) }

func (Encoder) Cut() []byte { return join(ESC_POS_COMMANDS.CUT_FULL) }

func (Encoder) NewLine() []byte { return join(ESC_POS_COMMANDS.LINE_FEED) }

func (Encoder) Feed(lines int) []byte {
	return join(ESC_POS_COMMANDS.FEED_LINES, []byte{clampByte(lines)})
}

func (Encoder) LineSpacing(dots int) []byte {
	return join(ESC_POS_COMMANDS.LINE_SPACING, []byte{clampByte(dots)})
}

func (Encoder) ResetLineSpacing() []byte { return join(ESC_POS_COMMANDS.LINE_SPACING_RESET) }

// Align accepts left, center or right. Anything else aligns left.
func (Encoder) Align(align string) []byte {
	switch strings.ToLower(align) {
	case "center":
		return join(ESC_POS_COMMANDS.ALIGN_CENTER)
	case "right":
		return join(ESC_POS_COMMANDS.ALIGN_RIGHT)
	default:
		return join(ESC_POS_COMMANDS.ALIGN_LEFT)
	}
}

func (Encoder) Bold(on bool) []byte {
	if on {
		return join(ESC_POS_COMMANDS.TEXT_BOLD_ON)
	}
	return join(ESC_POS_COMMANDS.TEXT_BOLD_OFF)
}

func (Encoder) DoubleHeight(on bool) []byte {
	if on {
		return join(ESC_POS_COMMANDS.TEXT_DOUBLE_HEIGHT)
	}
	return join(ESC_POS_COMMANDS.TEXT_NORMAL_HEIGHT)
}

func (Encoder) Condensed(on bool) []byte {
	if on {
		return join(ESC_POS_COMMANDS.TEXT_CONDENSED)
	}
	return join(ESC_POS_COMMANDS.TEXT_NORMAL_MODE)
}

func (Encoder) FontSize(double bool) []byte {
	if double {
		return join(ESC_POS_COMMANDS.FONT_SIZE_DOUBLE)
	}
	return join(ESC_POS_COMMANDS.FONT_SIZE_NORMAL)
}

// Text encodes s as code page 850 followed by a line feed
func (Encoder) Text(s string) []byte {
	return append(EncodeCP850(s), '\n')
}

// Separator returns a full-width dash line
func (e Encoder) Separator() []byte {
	return e.Text(strings.Repeat("-", e.columns()))
}

func (e Encoder) columns() int {
	if e.Columns <= 0 {
		return DefaultColumns
	}
	return e.Columns
}

// EncodeCP850 converts UTF-8 text to code page 850. Runes without a mapping become '?'.
func EncodeCP850(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.CodePage850.EncodeRune(r); ok {
			out = append(out, b)
			continue
		}
		out = append(out, '?')
	}
	return out
}

func clampByte(n int) byte {
	if n < 0 {
		return 0
	}
	if n > 255 {
		return 255
	}
	return byte(n)
}
