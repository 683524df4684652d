package headless

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/verification"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// drawZero draws the font sprite of 0 at the top left corner and loops.
var drawZero = []byte{
	0xF0, 0x29, // LD F, V0
	0xD0, 0x05, // DRW V0, V0, 5
	0x12, 0x04, // JP $204
}

func newTestHeadless(t *testing.T, logger *log.Logger, out io.Writer, expect string) *Headless {
	t.Helper()

	opts := options.Emulator{ClockSpeed: machine.DefaultClockSpeed, Frames: 2}
	c, err := config.CreateEmulator(opts, drawZero)
	assert.NoError(t, err)

	runner := host.New(logger, c, opts, nil)
	return New(logger, runner, out, expect)
}

func writeExpected(t *testing.T, draw func(buf *display.Buffer)) string {
	t.Helper()

	buf := display.New()
	draw(buf)
	path := filepath.Join(t.TempDir(), "expected.txt")
	assert.NoError(t, os.WriteFile(path, []byte(buf.String()), 0o600))
	return path
}

func drawZeroSprite(buf *display.Buffer) {
	for _, p := range [][2]int{
		{0, 0}, {1, 0}, {2, 0}, {3, 0},
		{0, 1}, {3, 1},
		{0, 2}, {3, 2},
		{0, 3}, {3, 3},
		{0, 4}, {1, 4}, {2, 4}, {3, 4},
	} {
		buf.Toggle(p[0], p[1])
	}
}

func TestRun(t *testing.T) {
	var out bytes.Buffer
	h := newTestHeadless(t, log.NewTestLogger(t), &out, "")

	assert.NoError(t, h.Run(context.Background()))
	assert.Equal(t, 2, h.runner.Frame())
	assert.True(t, strings.HasPrefix(out.String(), "####...."))
}

func TestRun_Expect(t *testing.T) {
	path := writeExpected(t, drawZeroSprite)
	h := newTestHeadless(t, log.NewTestLogger(t), nil, path)

	assert.NoError(t, h.Run(context.Background()))
}

func TestRun_ExpectMismatch(t *testing.T) {
	path := writeExpected(t, func(buf *display.Buffer) {
		buf.Toggle(10, 10)
	})
	h := newTestHeadless(t, log.NewWithConfig(log.DefaultConfig()), nil, path)

	err := h.Run(context.Background())
	assert.True(t, errors.Is(err, verification.ErrMismatch))
	assert.ErrorContains(t, err, "15 pixel mismatches, first at x=0 y=0")
}
