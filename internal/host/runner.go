// Package host drives the emulation frame by frame for the frontends.
package host

import (
	"context"
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/debug"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// FrameRate is the number of frames emulated per second, it matches the
// timer frequency so that every frame ticks the timers once.
const FrameRate = machine.TimerFrequency

// ErrQuit is returned by frame hooks to stop the emulation.
var ErrQuit = errors.New("quit requested")

// FrameHook is called after every emulated frame.
type FrameHook func(frame int) error

// Runner executes the instructions of a frame and the per frame host logic.
type Runner struct {
	logger  *log.Logger
	cpu     *cpu.CPU
	m       *machine.State
	monitor *debug.Monitor
	opts    options.Emulator

	hooks     []FrameHook
	remainder int // instructions carried over from fractional frame rates
	turbo     bool
	frame     int
	quit      bool
}

// New returns a new runner. The monitor is optional.
func New(logger *log.Logger, c *cpu.CPU, opts options.Emulator, monitor *debug.Monitor) *Runner {
	if opts.TurboFactor < 1 {
		opts.TurboFactor = options.DefaultTurboFactor
	}
	return &Runner{
		logger:  logger,
		cpu:     c,
		m:       c.Machine(),
		monitor: monitor,
		opts:    opts,
	}
}

// AddFrameHook adds a function that gets called after every frame.
func (r *Runner) AddFrameHook(hook FrameHook) {
	r.hooks = append(r.hooks, hook)
}

// CPU returns the CPU that the runner drives.
func (r *Runner) CPU() *cpu.CPU {
	return r.cpu
}

// Machine returns the machine state.
func (r *Runner) Machine() *machine.State {
	return r.m
}

// Monitor returns the debug monitor or nil.
func (r *Runner) Monitor() *debug.Monitor {
	return r.monitor
}

// Frame returns the number of emulated frames.
func (r *Runner) Frame() int {
	return r.frame
}

// Turbo returns whether turbo mode is active.
func (r *Runner) Turbo() bool {
	return r.turbo
}

// SetTurbo enables or disables turbo mode, which executes a multiple of the
// instructions per frame.
func (r *Runner) SetTurbo(enabled bool) {
	if enabled != r.turbo {
		r.logger.Debug("Turbo mode", log.String("state", onOff(enabled)))
	}
	r.turbo = enabled
}

// Quit requests the emulation to stop after the current frame.
func (r *Runner) Quit() {
	r.quit = true
}

// Done returns whether the emulation should stop.
func (r *Runner) Done() bool {
	return r.quit || (r.opts.Frames > 0 && r.frame >= r.opts.Frames)
}

// CyclesPerFrame returns the number of whole instructions executed per
// frame. Clock speeds that are not a multiple of the frame rate execute one
// more instruction on some frames.
func (r *Runner) CyclesPerFrame() int {
	cycles := r.m.CyclesPerTick()
	if r.turbo {
		cycles *= r.opts.TurboFactor
	}
	return cycles
}

// frameCycles returns the number of instructions to execute in the next
// frame and carries the fractional part over to the following frames.
func (r *Runner) frameCycles() int {
	total := r.m.ClockSpeed() + r.remainder
	cycles := total / FrameRate
	r.remainder = total % FrameRate
	if r.turbo {
		cycles *= r.opts.TurboFactor
	}
	return cycles
}

// RunFrame executes the instructions of one frame, resets the key latch and
// calls the frame hooks. A paused monitor stops the frame early.
// An execution error is fatal and returned as *cpu.ExecutionError.
func (r *Runner) RunFrame() error {
	for range r.frameCycles() {
		if r.monitor != nil && !r.monitor.Allow(r.m) {
			break
		}
		if _, err := r.cpu.Step(); err != nil {
			return err
		}
	}

	r.m.Keyboard.ResetLatch()
	r.frame++

	for _, hook := range r.hooks {
		if err := hook(r.frame); err != nil {
			if errors.Is(err, ErrQuit) {
				r.quit = true
				return nil
			}
			return fmt.Errorf("running frame hook: %w", err)
		}
	}
	return nil
}

// Run emulates frames without pacing until the configured number of frames
// is reached, a quit is requested or the context is canceled.
func (r *Runner) Run(ctx context.Context) error {
	for !r.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.RunFrame(); err != nil {
			return err
		}
	}
	return nil
}

// Reset resets the machine and the CPU halt state.
func (r *Runner) Reset() {
	r.cpu.Reset()
	r.logger.Info("Machine reset")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
