// Package display implements the CHIP-8 monochrome frame buffer.
package display

import "strings"

// Display dimensions in pixels.
const (
	Width  = 64
	Height = 32

	// rowBytes is the number of packed bytes per display row.
	rowBytes = Width / 8
)

// Buffer is a 64x32 monochrome bitmap stored as packed rows, the most
// significant bit of each byte being the leftmost pixel.
type Buffer struct {
	rows  [Height][rowBytes]byte
	dirty bool
}

// New returns a cleared display buffer.
func New() *Buffer {
	return &Buffer{}
}

// Clear turns every pixel off.
func (b *Buffer) Clear() {
	b.rows = [Height][rowBytes]byte{}
	b.dirty = true
}

// Toggle flips the pixel at the given coordinates and returns whether the
// pixel was lit before the toggle. Coordinates wrap around the display edges.
func (b *Buffer) Toggle(x, y int) bool {
	x, y = wrap(x, Width), wrap(y, Height)
	mask := byte(0x80) >> (x % 8)
	cell := &b.rows[y][x/8]

	lit := *cell&mask != 0
	*cell ^= mask
	b.dirty = true
	return lit
}

// Pixel returns whether the pixel at the given coordinates is lit.
// Coordinates wrap around the display edges.
func (b *Buffer) Pixel(x, y int) bool {
	x, y = wrap(x, Width), wrap(y, Height)
	return b.rows[y][x/8]&(0x80>>(x%8)) != 0
}

// Rows returns a copy of the packed display rows.
func (b *Buffer) Rows() [Height][rowBytes]byte {
	return b.rows
}

// Lit returns the number of lit pixels.
func (b *Buffer) Lit() int {
	count := 0
	for y := range Height {
		for x := range Width {
			if b.Pixel(x, y) {
				count++
			}
		}
	}
	return count
}

// Dirty returns whether the buffer changed since the last ClearDirty call.
func (b *Buffer) Dirty() bool {
	return b.dirty
}

// ClearDirty resets the change tracking flag, renderers call it after
// presenting a frame.
func (b *Buffer) ClearDirty() {
	b.dirty = false
}

// String returns a text dump of the display, one line per row using '#'
// for lit and '.' for unlit pixels.
func (b *Buffer) String() string {
	var sb strings.Builder
	sb.Grow(Height * (Width + 1))
	for y := range Height {
		for x := range Width {
			if b.Pixel(x, y) {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
