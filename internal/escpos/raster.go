// internal/escpos/raster.go
package escpos

import (
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

const rasterThreshold = 127

// Raster is a 1-bit monochrome bitmap packed MSB-first, 1 = black
type Raster struct {
	Width  int
	Height int
	Data   []byte
}

// BytesPerLine returns the packed row stride
func (r Raster) BytesPerLine() int {
	return (r.Width + 7) / 8
}

// LoadImage decodes a PNG, JPEG or GIF file
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image %s: %w", path, err)
	}
	return img, nil
}

// Rasterize converts img to a dithered monochrome bitmap. The image is
// composited over white and scaled down proportionally when wider than maxWidth.
func Rasterize(img image.Image, maxWidth int) Raster {
	plane, w, h := grayPlane(img)
	if maxWidth > 0 && w > maxWidth {
		plane, w, h = downscale(plane, w, h, maxWidth)
	}
	black := dither(plane, w, h)
	return Raster{Width: w, Height: h, Data: pack(black, w, h)}
}

// Image emits the GS v 0 raster command for r
func (Encoder) Image(r Raster) []byte {
	xBytes := r.BytesPerLine()
	header := []byte{
		byte(xBytes & 0xFF), byte((xBytes >> 8) & 0xFF),
		byte(r.Height & 0xFF), byte((r.Height >> 8) & 0xFF),
	}
	return join(ESC_POS_COMMANDS.RASTER_IMAGE, header, r.Data)
}

// ImageFile loads, rasterizes and encodes an image file. A read failure is returned as-is.
func (e Encoder) ImageFile(path string, maxWidth int) ([]byte, error) {
	img, err := LoadImage(path)
	if err != nil {
		return nil, err
	}
	return e.Image(Rasterize(img, maxWidth)), nil
}

// grayPlane returns luminance values in [0,255] after alpha compositing on white
func grayPlane(img image.Image) ([]float64, int, int) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	plane := make([]float64, w*h)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			alpha := float64(c.A) / 255
			gray := 0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)
			plane[y*w+x] = gray*alpha + (1-alpha)*255
		}
	}
	return plane, w, h
}

// downscale resizes by box averaging so that the width equals maxWidth
func downscale(plane []float64, w, h, maxWidth int) ([]float64, int, int) {
	nw := maxWidth
	nh := h * maxWidth / w
	if nh < 1 {
		nh = 1
	}

	out := make([]float64, nw*nh)
	for ty := 0; ty < nh; ty++ {
		y0 := ty * h / nh
		y1 := (ty + 1) * h / nh
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for tx := 0; tx < nw; tx++ {
			x0 := tx * w / nw
			x1 := (tx + 1) * w / nw
			if x1 <= x0 {
				x1 = x0 + 1
			}

			sum := 0.0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					sum += plane[y*w+x]
				}
			}
			out[ty*nw+tx] = sum / float64((y1-y0)*(x1-x0))
		}
	}
	return out, nw, nh
}

// dither applies Floyd–Steinberg error diffusion and reports black pixels
func dither(plane []float64, w, h int) []bool {
	px := make([]float64, len(plane))
	copy(px, plane)
	black := make([]bool, len(px))

	spread := func(x, y int, amount float64) {
		if x < 0 || x >= w || y >= h {
			return
		}
		i := y*w + x
		px[i] = clamp(px[i] + amount)
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			old := px[i]
			var quantized float64
			if old < rasterThreshold {
				black[i] = true
			} else {
				quantized = 255
			}
			e := old - quantized

			spread(x+1, y, e*7/16)
			spread(x-1, y+1, e*3/16)
			spread(x, y+1, e*5/16)
			spread(x+1, y+1, e*1/16)
		}
	}
	return black
}

func pack(black []bool, w, h int) []byte {
	stride := (w + 7) / 8
	data := make([]byte, stride*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if black[y*w+x] {
				data[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return data
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return v
}
