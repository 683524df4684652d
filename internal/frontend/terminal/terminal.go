// Package terminal implements a frontend that draws the display into the
// terminal and reads the keypad from raw terminal input.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// HoldFrames is the number of frames a key stays pressed after its last key
// press, terminals do not report key releases.
const HoldFrames = 6

// Control keys.
const (
	keyCtrlC  = 0x03
	keyEscape = 0x1b
	keyTurbo  = 't'
	keyPause  = 'p'
	keyStep   = 'n'
)

// Terminal runs the emulation in the terminal.
type Terminal struct {
	logger *log.Logger
	runner *host.Runner
	keymap keymap.Keymap
	in     io.Reader
	out    io.Writer

	held     [machine.KeyCount]int // remaining hold frames per key
	rendered bool
}

// New returns a new terminal frontend reading input from in and drawing to out.
func New(logger *log.Logger, runner *host.Runner, km keymap.Keymap, in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		logger: logger,
		runner: runner,
		keymap: km,
		in:     in,
		out:    out,
	}
}

// Run switches the terminal to raw mode and emulates frames at 60 Hz until
// the context is canceled, a quit key is pressed or the emulation stops.
func (t *Terminal) Run(ctx context.Context) error {
	if file, ok := t.in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		fd := int(file.Fd())
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("setting terminal raw mode: %w", err)
		}
		defer func() {
			_ = term.Restore(fd, oldState)
		}()
		t.checkSize(fd)
	}

	if _, err := io.WriteString(t.out, hideCursor+clearScreen); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	defer func() {
		_, _ = io.WriteString(t.out, showCursor+"\r\n")
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	input := make(chan []byte, 16)
	go readInput(ctx, t.in, input)

	ticker := time.NewTicker(time.Second / host.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-ticker.C:
			if !t.drainInput(input) {
				return nil
			}
			if err := t.frame(); err != nil {
				return err
			}
			if t.runner.Done() {
				return nil
			}
		}
	}
}

func (t *Terminal) checkSize(fd int) {
	width, height, err := term.GetSize(fd)
	if err != nil {
		return
	}
	if width < 64 || height < Rows+1 {
		t.logger.Warn("Terminal is too small for the display",
			log.Int("width", width),
			log.Int("height", height))
	}
}

// frame releases expired keys, emulates a frame and redraws the display.
func (t *Terminal) frame() error {
	kb := &t.runner.Machine().Keyboard
	for key, frames := range t.held {
		if frames == 0 {
			continue
		}
		t.held[key] = frames - 1
		if frames == 1 {
			kb.SetKey(key, false)
		}
	}

	if err := t.runner.RunFrame(); err != nil {
		return err
	}

	buf := t.runner.Machine().Display
	if !buf.Dirty() && t.rendered {
		return nil
	}
	buf.ClearDirty()
	t.rendered = true
	if _, err := io.WriteString(t.out, render(buf, t.status())); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// drainInput handles all pending input. It returns false if a quit was
// requested or the input was closed.
func (t *Terminal) drainInput(input <-chan []byte) bool {
	for {
		select {
		case data, ok := <-input:
			if !ok {
				return false
			}
			if !t.handleInput(data) {
				return false
			}
		default:
			return true
		}
	}
}

// handleInput processes the bytes of one read. A lone escape or Ctrl-C
// quits, escape sequences of special keys are ignored.
func (t *Terminal) handleInput(data []byte) bool {
	if len(data) == 1 && data[0] == keyEscape {
		return false
	}
	if len(data) > 1 && data[0] == keyEscape {
		return true
	}

	for _, b := range data {
		switch b {
		case keyCtrlC:
			return false
		case keyTurbo:
			t.runner.SetTurbo(!t.runner.Turbo())
			continue
		case keyPause:
			if monitor := t.runner.Monitor(); monitor != nil {
				monitor.TogglePause(t.runner.Machine())
			}
			continue
		case keyStep:
			if monitor := t.runner.Monitor(); monitor != nil {
				monitor.Step()
			}
			continue
		}

		key, ok := t.keymap.Key(rune(b))
		if !ok {
			continue
		}
		kb := &t.runner.Machine().Keyboard
		if t.held[key] == 0 {
			kb.SetKey(key, true)
		}
		t.held[key] = HoldFrames
	}
	return true
}

func (t *Terminal) status() string {
	var flags []string
	if monitor := t.runner.Monitor(); monitor != nil && monitor.Paused() {
		flags = append(flags, "PAUSED")
	}
	if t.runner.Turbo() {
		flags = append(flags, "TURBO")
	}
	return fmt.Sprintf("frame %d  %s", t.runner.Frame(), strings.Join(flags, " "))
}

// readInput forwards the read input chunks to the channel until the reader
// fails or the context is canceled.
func readInput(ctx context.Context, in io.Reader, input chan<- []byte) {
	defer close(input)

	buf := make([]byte, 16)
	for {
		n, err := in.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case input <- data:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			return
		}
	}
}
