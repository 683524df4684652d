package window

import (
	"image/color"

	"github.com/retroenv/retrochip8/internal/display"
)

var (
	litColor        = color.RGBA{R: 90, G: 190, B: 90, A: 255}
	gridColor       = color.RGBA{R: 14, G: 48, B: 68, A: 255}
	backgroundColor = color.RGBA{R: 7, G: 38, B: 54, A: 255}
)

// minGridScale is the smallest scale at which a grid is drawn between the
// display pixels.
const minGridScale = 4

// render writes the display as RGBA pixels scaled by the given factor into
// pixels, which must hold display.Width*scale * display.Height*scale * 4 bytes.
func render(buf *display.Buffer, scale int, pixels []byte) {
	stride := display.Width * scale
	grid := scale >= minGridScale

	for y := range display.Height * scale {
		for x := range stride {
			c := backgroundColor
			switch {
			case grid && (x%scale == scale-1 || y%scale == scale-1):
				c = gridColor
			case buf.Pixel(x/scale, y/scale):
				c = litColor
			}

			offset := (y*stride + x) * 4
			pixels[offset] = c.R
			pixels[offset+1] = c.G
			pixels[offset+2] = c.B
			pixels[offset+3] = c.A
		}
	}
}
