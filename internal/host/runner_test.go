package host

import (
	"context"
	"errors"
	"testing"

	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/debug"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// loop is a program that increments V0 forever.
var loop = []byte{
	0x70, 0x01, // ADD V0, $01
	0x12, 0x00, // JP $200
}

func newTestRunner(t *testing.T, program []byte, opts options.Emulator, monitor *debug.Monitor) *Runner {
	t.Helper()

	if opts.ClockSpeed == 0 {
		opts.ClockSpeed = machine.DefaultClockSpeed
	}
	c, err := config.CreateEmulator(opts, program)
	assert.NoError(t, err)
	return New(log.NewTestLogger(t), c, opts, monitor)
}

func TestRunner_RunFrame(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{}, nil)
	assert.Equal(t, 9, r.CyclesPerFrame())

	assert.NoError(t, r.RunFrame())
	assert.Equal(t, 1, r.Frame())
	// 9 instructions, the first 5 are additions
	assert.Equal(t, uint8(5), r.Machine().V[0])
}

func TestRunner_Turbo(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{TurboFactor: 2}, nil)
	r.SetTurbo(true)
	assert.True(t, r.Turbo())
	assert.Equal(t, 18, r.CyclesPerFrame())

	assert.NoError(t, r.RunFrame())
	assert.Equal(t, uint8(9), r.Machine().V[0])
}

func TestRunner_ResetsKeyLatch(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{}, nil)
	r.Machine().Keyboard.SetKey(0xA, true)

	assert.NoError(t, r.RunFrame())
	assert.Equal(t, machine.NoKey, r.Machine().Keyboard.LastKey())
	assert.True(t, r.Machine().Keyboard.IsPressed(0xA))
}

func TestRunner_Run(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{Frames: 3}, nil)

	var frames []int
	r.AddFrameHook(func(frame int) error {
		frames = append(frames, frame)
		return nil
	})

	assert.NoError(t, r.Run(context.Background()))
	assert.True(t, r.Done())
	assert.Len(t, frames, 3)
	assert.Equal(t, 3, frames[2])
}

func TestRunner_QuitHook(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{}, nil)
	r.AddFrameHook(func(frame int) error {
		if frame == 2 {
			return ErrQuit
		}
		return nil
	})

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 2, r.Frame())
}

func TestRunner_HookError(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{}, nil)
	errHook := errors.New("hook failed")
	r.AddFrameHook(func(int) error { return errHook })

	err := r.RunFrame()
	assert.True(t, errors.Is(err, errHook))
}

func TestRunner_CanceledContext(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := r.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, r.Frame())
}

func TestRunner_ExecutionError(t *testing.T) {
	// RET with an empty stack
	r := newTestRunner(t, []byte{0x00, 0xEE}, options.Emulator{}, nil)

	err := r.RunFrame()
	var execErr *cpu.ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0x200), execErr.PC)
	assert.True(t, errors.Is(err, machine.ErrStackUnderflow))
	assert.True(t, LogExecutionError(log.NewWithConfig(log.DefaultConfig()), err))
	assert.False(t, LogExecutionError(log.NewTestLogger(t), errors.New("other")))
}

func TestRunner_Breakpoint(t *testing.T) {
	monitor := debug.NewMonitor(log.NewTestLogger(t), nil, []uint16{0x202})
	r := newTestRunner(t, loop, options.Emulator{}, monitor)

	assert.NoError(t, r.RunFrame())
	assert.True(t, monitor.Paused())
	assert.Equal(t, uint16(0x202), r.Machine().PC)
	assert.Equal(t, uint8(1), r.Machine().V[0])

	// paused frames still advance the frame counter but execute nothing
	assert.NoError(t, r.RunFrame())
	assert.Equal(t, 2, r.Frame())
	assert.Equal(t, uint16(0x202), r.Machine().PC)

	monitor.Step()
	assert.NoError(t, r.RunFrame())
	assert.Equal(t, uint16(0x200), r.Machine().PC)

	// runs until the breakpoint is reached again
	monitor.Resume()
	assert.NoError(t, r.RunFrame())
	assert.True(t, monitor.Paused())
	assert.Equal(t, uint16(0x202), r.Machine().PC)
	assert.Equal(t, uint8(2), r.Machine().V[0])

	// resuming on the breakpoint executes it
	monitor.Resume()
	monitor.AddBreakpoint(0x200)
	assert.NoError(t, r.RunFrame())
	assert.Equal(t, uint16(0x200), r.Machine().PC)
	assert.Equal(t, uint8(2), r.Machine().V[0])
}

func TestRunner_Reset(t *testing.T) {
	r := newTestRunner(t, loop, options.Emulator{}, nil)
	assert.NoError(t, r.RunFrame())

	r.Reset()
	assert.Equal(t, uint16(machine.ProgramStart), r.Machine().PC)
	assert.Equal(t, uint8(0), r.Machine().V[0])
}

func TestTraceHook(t *testing.T) {
	opts := options.Emulator{ClockSpeed: machine.DefaultClockSpeed}
	c, err := config.CreateEmulator(opts, loop, cpu.WithHook(TraceHook(log.NewTestLogger(t))))
	assert.NoError(t, err)

	assert.NoError(t, c.Run(4))
	assert.Equal(t, uint8(2), c.Machine().V[0])
}

func TestRunner_FractionalClockSpeed(t *testing.T) {
	opts := options.Emulator{ClockSpeed: 100, Frames: FrameRate}
	executed := 0
	c, err := config.CreateEmulator(opts, loop, cpu.WithHook(func(uint16, opcode.Instruction, cpu.Result) {
		executed++
	}))
	assert.NoError(t, err)

	r := New(log.NewTestLogger(t), c, opts, nil)
	assert.Equal(t, 1, r.CyclesPerFrame())

	assert.NoError(t, r.Run(context.Background()))
	assert.Equal(t, 100, executed)
}
