// Package cpu implements the CHIP-8 instruction executor and cycle driver.
package cpu

import (
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/opcode"
)

// ErrHalted is returned by Step after a fatal execution error.
var ErrHalted = errors.New("cpu halted")

// Result describes the effect an executed instruction had on the program counter.
type Result uint8

const (
	Advance Result = iota // program counter advanced to the next instruction
	Skip                  // next instruction was skipped
	Jump                  // program counter was set absolutely
	Wait                  // instruction made no progress and will execute again
)

func (r Result) String() string {
	switch r {
	case Advance:
		return "advance"
	case Skip:
		return "skip"
	case Jump:
		return "jump"
	case Wait:
		return "wait"
	default:
		return fmt.Sprintf("Result(%d)", uint8(r))
	}
}

// Quirks selects between behaviors that differ across CHIP-8 interpreters.
type Quirks struct {
	// ShiftSourceVx makes SHR and SHL shift Vx instead of Vy. The original
	// COSMAC VIP interpreter shifts Vy, many later interpreters shift Vx.
	ShiftSourceVx bool
	// KeepIndexOnBlockTransfer leaves I unchanged after LD [I], Vx and
	// LD Vx, [I] instead of incrementing it by x+1.
	KeepIndexOnBlockTransfer bool
}

// ExecutionError is a fatal error that occurred while executing an instruction.
type ExecutionError struct {
	PC          uint16
	Instruction opcode.Instruction
	Err         error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing %s (0x%04X) at 0x%03X: %s",
		e.Instruction.Op, e.Instruction.Raw, e.PC, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// Hook is called after every executed instruction with the program counter
// the instruction was fetched from.
type Hook func(pc uint16, ins opcode.Instruction, result Result)

// Option configures a CPU.
type Option func(*CPU)

// WithQuirks sets the interpreter quirks.
func WithQuirks(quirks Quirks) Option {
	return func(c *CPU) {
		c.quirks = quirks
	}
}

// WithRandom sets the source of random bytes used by RND.
func WithRandom(random func() uint8) Option {
	return func(c *CPU) {
		c.random = random
	}
}

// WithSeed uses a deterministic random number generator for RND.
func WithSeed(seed uint64) Option {
	return func(c *CPU) {
		r := rand.New(rand.NewPCG(seed, seed^0x9E3779B97F4A7C15))
		c.random = func() uint8 {
			return uint8(r.UintN(256))
		}
	}
}

// WithHook sets a function that gets called after every executed instruction.
func WithHook(hook Hook) Option {
	return func(c *CPU) {
		c.hook = hook
	}
}

// CPU executes instructions on a machine state.
type CPU struct {
	m      *machine.State
	quirks Quirks
	random func() uint8
	hook   Hook

	halted error
}

// New returns a CPU operating on the given machine state.
func New(m *machine.State, opts ...Option) *CPU {
	c := &CPU{
		m: m,
		random: func() uint8 {
			return uint8(rand.UintN(256))
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Machine returns the machine state the CPU operates on.
func (c *CPU) Machine() *machine.State {
	return c.m
}

// Quirks returns the configured interpreter quirks.
func (c *CPU) Quirks() Quirks {
	return c.quirks
}

// Halted returns the fatal error that halted the CPU or nil.
func (c *CPU) Halted() error {
	return c.halted
}

// Reset resets the machine state and clears a halt condition.
func (c *CPU) Reset() {
	c.m.Reset()
	c.halted = nil
}

// Step executes a single emulation cycle: it fetches the instruction word at
// the program counter, decodes and executes it and advances the timers.
// A returned error is fatal, the CPU stays halted until Reset is called.
func (c *CPU) Step() (Result, error) {
	if c.halted != nil {
		return Wait, fmt.Errorf("%w: %w", ErrHalted, c.halted)
	}

	pc := c.m.PC
	raw, err := c.m.ReadWord(pc)
	if err != nil {
		return c.halt(pc, opcode.Instruction{}, fmt.Errorf("fetching instruction: %w", err))
	}

	ins := opcode.Decode(raw)
	result, err := c.Execute(ins)
	if err != nil {
		return c.halt(pc, ins, err)
	}

	c.m.TickCycle()
	if c.hook != nil {
		c.hook(pc, ins, result)
	}
	return result, nil
}

// Run executes the given number of cycles. It stops early on the first error.
func (c *CPU) Run(cycles int) error {
	for range cycles {
		if _, err := c.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (c *CPU) halt(pc uint16, ins opcode.Instruction, err error) (Result, error) {
	execErr := &ExecutionError{
		PC:          pc,
		Instruction: ins,
		Err:         err,
	}
	c.halted = execErr
	return Wait, execErr
}
