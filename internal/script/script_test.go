package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// keyLoop stores the pressed key in V1 and draws a pixel.
var keyLoop = []byte{
	0xF1, 0x0A, // LD V1, K
	0xA2, 0x0A, // LD I, $20A
	0xD2, 0x21, // DRW V2, V2, 1
	0x6F, 0x00, // LD VF, $00
	0x12, 0x08, // JP $208
	0x80, //       sprite
}

func newTestScript(t *testing.T) (*Script, *host.Runner) {
	t.Helper()

	opts := options.Emulator{ClockSpeed: machine.DefaultClockSpeed, Frames: 100}
	c, err := config.CreateEmulator(opts, keyLoop)
	assert.NoError(t, err)

	logger := log.NewTestLogger(t)
	runner := host.New(logger, c, opts, nil)
	s := New(logger, runner)
	t.Cleanup(s.Close)
	runner.AddFrameHook(s.FrameHook())
	return s, runner
}

func TestScript_PressAndQuit(t *testing.T) {
	s, runner := newTestScript(t)

	err := s.LoadString(`
function on_frame(f)
  if f == 1 then
    press(7)
  elseif f == 2 then
    release(7)
    assert(reg(1) == 7)
    assert(pixel(0, 0))
    assert(not pixel(1, 0))
    assert(pc() == 0x208)
    assert(i() == 0x20A)
    assert(peek(0x20A) == 0x80)
    assert(dt() == 0 and st() == 0)
    log("key handled")
    quit()
  end
end
`)
	assert.NoError(t, err)

	assert.NoError(t, runner.Run(context.Background()))
	assert.Equal(t, 2, runner.Frame())
	assert.False(t, runner.Machine().Keyboard.IsPressed(7))
}

func TestScript_Turbo(t *testing.T) {
	s, runner := newTestScript(t)
	assert.NoError(t, s.LoadString(`turbo(true)`))
	assert.True(t, runner.Turbo())
}

func TestScript_WithoutFrameHandler(t *testing.T) {
	s, runner := newTestScript(t)
	assert.NoError(t, s.LoadString(`x = frame()`))

	assert.NoError(t, runner.RunFrame())
	assert.Equal(t, 1, runner.Frame())
}

func TestScript_Errors(t *testing.T) {
	s, runner := newTestScript(t)

	assert.ErrorContains(t, s.LoadString(`press(16)`), "key out of range")
	assert.ErrorContains(t, s.LoadString(`reg(-1)`), "register out of range")
	assert.ErrorContains(t, s.LoadString(`peek(4096)`), "address out of range")
	assert.ErrorContains(t, s.LoadString(`pixel(64, 0)`), "coordinates out of range")

	assert.NoError(t, s.LoadString(`function on_frame(f) error("boom") end`))
	assert.ErrorContains(t, runner.RunFrame(), "calling on_frame")
}

func TestScript_LoadFile(t *testing.T) {
	s, runner := newTestScript(t)

	path := filepath.Join(t.TempDir(), "test.lua")
	assert.NoError(t, os.WriteFile(path, []byte(`function on_frame(f) if f == 3 then quit() end end`), 0o600))
	assert.NoError(t, s.LoadFile(path))

	assert.NoError(t, runner.Run(context.Background()))
	assert.Equal(t, 3, runner.Frame())

	assert.ErrorContains(t, s.LoadFile(filepath.Join(t.TempDir(), "missing.lua")), "running script")
}
