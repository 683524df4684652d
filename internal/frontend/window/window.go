// Package window implements the desktop window frontend using ebiten.
package window

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrochip8/internal/audio"
	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"
)

var statusColor = color.RGBA{R: 230, G: 230, B: 230, A: 255}

// Window runs the emulation in a desktop window.
type Window struct {
	logger   *log.Logger
	runner   *host.Runner
	bindings []keyBinding
	scale    int
	title    string
	mute     bool

	beeper *audio.Beeper
	image  *ebiten.Image
	pixels []byte
	err    error

	rendered bool

	clipboardOnce sync.Once
	clipboardOK   bool
}

// New returns a new window frontend.
func New(logger *log.Logger, runner *host.Runner, opts options.Program, km keymap.Keymap, title string) *Window {
	scale := opts.Scale
	if scale < 1 {
		scale = options.DefaultScale
	}
	return &Window{
		logger:   logger,
		runner:   runner,
		bindings: bindKeys(km),
		scale:    scale,
		title:    title,
		mute:     opts.Mute,
		pixels:   make([]byte, display.Width*scale*display.Height*scale*4),
	}
}

// Run opens the window and runs the emulation until the window is closed,
// Escape is pressed or the emulation fails.
func (w *Window) Run() error {
	if !w.mute {
		beeper, err := audio.NewBeeper()
		if err != nil {
			w.logger.Warn("Audio output not available", log.Err(err))
		} else {
			w.beeper = beeper
			defer func() {
				_ = beeper.Close()
			}()
		}
	}

	ebiten.SetWindowSize(display.Width*w.scale, display.Height*w.scale)
	ebiten.SetWindowTitle(w.title)
	ebiten.SetTPS(host.FrameRate)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(w); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return w.err
}

// Update handles the input and emulates one frame.
func (w *Window) Update() error {
	if ebiten.IsWindowBeingClosed() || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	w.handleHotkeys()
	m := w.runner.Machine()
	updateKeys(w.bindings, ebiten.IsKeyPressed, &m.Keyboard)
	w.runner.SetTurbo(ebiten.IsKeyPressed(ebiten.KeyT))

	if err := w.runner.RunFrame(); err != nil {
		w.err = err
		return ebiten.Termination
	}
	if w.beeper != nil {
		w.beeper.SetActive(m.SoundActive())
	}
	if w.runner.Done() {
		return ebiten.Termination
	}
	return nil
}

func (w *Window) handleHotkeys() {
	m := w.runner.Machine()
	monitor := w.runner.Monitor()

	switch {
	case monitor != nil && inpututil.IsKeyJustPressed(ebiten.KeyF1):
		monitor.TogglePause(m)
	case monitor != nil && inpututil.IsKeyJustPressed(ebiten.KeyF2):
		monitor.Step()
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		w.runner.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		w.copyDisplay()
	}
}

// copyDisplay copies the text dump of the display to the clipboard.
func (w *Window) copyDisplay() {
	w.clipboardOnce.Do(func() {
		w.clipboardOK = clipboard.Init() == nil
	})
	if !w.clipboardOK {
		w.logger.Warn("Clipboard not available")
		return
	}
	clipboard.Write(clipboard.FmtText, []byte(w.runner.Machine().Display.String()))
	w.logger.Info("Display copied to clipboard")
}

// Draw renders the display and the status overlay.
func (w *Window) Draw(screen *ebiten.Image) {
	if w.image == nil {
		w.image = ebiten.NewImage(display.Width*w.scale, display.Height*w.scale)
	}

	buf := w.runner.Machine().Display
	if buf.Dirty() || !w.rendered {
		render(buf, w.scale, w.pixels)
		w.image.WritePixels(w.pixels)
		buf.ClearDirty()
		w.rendered = true
	}
	screen.DrawImage(w.image, nil)

	if status := w.status(); status != "" {
		text.Draw(screen, status, basicfont.Face7x13, 4, 14, statusColor)
	}
}

// Layout returns the fixed size of the scaled display.
func (w *Window) Layout(_, _ int) (int, int) {
	return display.Width * w.scale, display.Height * w.scale
}

func (w *Window) status() string {
	switch {
	case w.err != nil:
		return "HALTED"
	case w.runner.Monitor() != nil && w.runner.Monitor().Paused():
		return "PAUSED"
	case w.runner.Turbo():
		return "TURBO"
	default:
		return ""
	}
}
