package window

import (
	"encoding/binary"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
)

// pixelAt returns the RGBA value of a rendered pixel packed as 0xRRGGBBAA.
func pixelAt(pixels []byte, scale, x, y int) uint32 {
	offset := (y*display.Width*scale + x) * 4
	return binary.BigEndian.Uint32(pixels[offset : offset+4])
}

func rgba(r, g, b uint8) uint32 {
	return uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8 | 0xFF
}

func TestRender(t *testing.T) {
	const scale = 4
	buf := display.New()
	buf.Toggle(1, 0)

	pixels := make([]byte, display.Width*scale*display.Height*scale*4)
	render(buf, scale, pixels)

	assert.Equal(t, rgba(7, 38, 54), pixelAt(pixels, scale, 0, 0))
	assert.Equal(t, rgba(90, 190, 90), pixelAt(pixels, scale, 4, 0))
	assert.Equal(t, rgba(90, 190, 90), pixelAt(pixels, scale, 6, 2))
	assert.Equal(t, rgba(14, 48, 68), pixelAt(pixels, scale, 7, 0))
	assert.Equal(t, rgba(14, 48, 68), pixelAt(pixels, scale, 4, 3))
}

func TestRender_NoGrid(t *testing.T) {
	buf := display.New()
	buf.Toggle(63, 31)

	pixels := make([]byte, display.Width*display.Height*4)
	render(buf, 1, pixels)

	assert.Equal(t, rgba(90, 190, 90), pixelAt(pixels, 1, 63, 31))
	assert.Equal(t, rgba(7, 38, 54), pixelAt(pixels, 1, 62, 31))
}

func TestUpdateKeys(t *testing.T) {
	km, err := keymap.New(options.KeymapQwerty)
	assert.NoError(t, err)
	bindings := bindKeys(km)
	assert.Len(t, bindings, machine.KeyCount)

	held := map[ebiten.Key]bool{ebiten.KeyW: true}
	pressed := func(key ebiten.Key) bool { return held[key] }

	var kb machine.Keyboard
	updateKeys(bindings, pressed, &kb)
	assert.True(t, kb.IsPressed(0x5))
	key, ok := kb.PollKey()
	assert.True(t, ok)
	assert.Equal(t, uint8(0x5), key)

	// holding the key does not latch it again
	updateKeys(bindings, pressed, &kb)
	_, ok = kb.PollKey()
	assert.False(t, ok)

	delete(held, ebiten.KeyW)
	updateKeys(bindings, pressed, &kb)
	assert.False(t, kb.IsPressed(0x5))
}

func TestUpdateKeys_Numpad(t *testing.T) {
	km, err := keymap.New(options.KeymapHex)
	assert.NoError(t, err)

	held := map[ebiten.Key]bool{ebiten.KeyNumpad7: true}
	var kb machine.Keyboard
	updateKeys(bindKeys(km), func(key ebiten.Key) bool { return held[key] }, &kb)
	assert.True(t, kb.IsPressed(0x7))
}
