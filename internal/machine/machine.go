// Package machine contains the CHIP-8 machine state that the CPU operates on.
package machine

import (
	"errors"
	"fmt"
	"slices"

	"github.com/retroenv/retrochip8/internal/display"
)

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x04F: Hexadecimal font sprites
//	0x050-0x1FF: Reserved for the interpreter
//	0x200-0xFFF: User program space
const (
	MemorySize   = 0x1000
	ProgramStart = 0x200
	MaxAddress   = MemorySize - 1

	// ETIProgramStart is the load address used by ETI 660 programs.
	ETIProgramStart = 0x600

	// MaxProgramSize is the largest program that fits into memory at ProgramStart.
	MaxProgramSize = MemorySize - ProgramStart

	RegisterCount = 16
	StackSize     = 16

	// FlagRegister is the index of VF, used for carry, borrow and collision.
	FlagRegister = 0xF
)

// Default timing values.
const (
	DefaultClockSpeed = 540 // instructions per second
	TimerFrequency    = 60  // timer decrements per second
)

var (
	ErrAddressOutOfRange = errors.New("address out of range")
	ErrEmptyProgram      = errors.New("empty program")
	ErrProgramTooLarge   = errors.New("program too large")
	ErrStackOverflow     = errors.New("stack overflow")
	ErrStackUnderflow    = errors.New("stack underflow")
)

// State is the complete mutable state of a CHIP-8 machine.
type State struct {
	Memory [MemorySize]byte
	V      [RegisterCount]uint8
	I      uint16
	PC     uint16

	DelayTimer uint8
	SoundTimer uint8

	Stack [StackSize]uint16
	SP    uint8 // index of the next free stack slot

	Keyboard Keyboard
	Display  *display.Buffer

	entryPoint    uint16 // address the program was loaded to
	program       []byte // program as loaded, restored by Reset
	clockSpeed    int // instructions per second
	cyclesPerTick int
	timerPhase    int // accumulates TimerFrequency per instruction
}

// New returns a machine with cleared memory, the font loaded and the
// program counter at the program start address. A clock speed <= 0 selects
// DefaultClockSpeed.
func New(clockSpeed int) *State {
	s := &State{
		PC:         ProgramStart,
		Display:    display.New(),
		entryPoint: ProgramStart,
	}
	s.SetClockSpeed(clockSpeed)
	copy(s.Memory[FontAddress:], font[:])
	return s
}

// SetClockSpeed sets the instruction rate that the timers are ticked
// relative to. Rates below the timer frequency tick the timers on every
// instruction.
func (s *State) SetClockSpeed(clockSpeed int) {
	if clockSpeed <= 0 {
		clockSpeed = DefaultClockSpeed
	}
	s.clockSpeed = max(clockSpeed, TimerFrequency)
	s.cyclesPerTick = s.clockSpeed / TimerFrequency
	s.timerPhase = 0
}

// ClockSpeed returns the number of instructions executed per second.
func (s *State) ClockSpeed() int {
	return s.clockSpeed
}

// CyclesPerTick returns the number of whole instructions executed per timer
// tick. Clock speeds that are not a multiple of the timer frequency execute
// one more instruction on some ticks.
func (s *State) CyclesPerTick() int {
	return s.cyclesPerTick
}

// LoadProgram copies the program into memory at ProgramStart.
// Memory is not modified if the program does not fit.
func (s *State) LoadProgram(program []byte) error {
	return s.LoadProgramAt(ProgramStart, program)
}

// LoadProgramAt copies the program into memory at the given address and
// sets the program counter to it.
func (s *State) LoadProgramAt(address uint16, program []byte) error {
	if len(program) == 0 {
		return ErrEmptyProgram
	}
	if int(address) >= MemorySize || len(program) > MemorySize-int(address) {
		return fmt.Errorf("%w: %d bytes at 0x%03X exceed memory end", ErrProgramTooLarge, len(program), address)
	}
	copy(s.Memory[address:], program)
	s.PC = address
	s.entryPoint = address
	s.program = slices.Clone(program)
	return nil
}

// ReadWord reads a big endian 16 bit word.
func (s *State) ReadWord(address uint16) (uint16, error) {
	if int(address)+1 > MaxAddress {
		return 0, fmt.Errorf("%w: word read at 0x%04X", ErrAddressOutOfRange, address)
	}
	return uint16(s.Memory[address])<<8 | uint16(s.Memory[address+1]), nil
}

// MemoryRange returns a slice of length bytes of memory starting at address.
// The slice aliases machine memory.
func (s *State) MemoryRange(address uint16, length int) ([]byte, error) {
	end := int(address) + length
	if length < 0 || end > MemorySize {
		return nil, fmt.Errorf("%w: %d bytes at 0x%04X", ErrAddressOutOfRange, length, address)
	}
	return s.Memory[address:end], nil
}

// Push pushes a return address onto the stack.
func (s *State) Push(address uint16) error {
	if int(s.SP) >= StackSize {
		return fmt.Errorf("%w: depth %d", ErrStackOverflow, s.SP)
	}
	s.Stack[s.SP] = address
	s.SP++
	return nil
}

// Pop removes and returns the top return address of the stack.
func (s *State) Pop() (uint16, error) {
	if s.SP == 0 {
		return 0, ErrStackUnderflow
	}
	s.SP--
	return s.Stack[s.SP], nil
}

// SetFlag sets VF to 1 if the condition is true, otherwise to 0.
func (s *State) SetFlag(condition bool) {
	if condition {
		s.V[FlagRegister] = 1
	} else {
		s.V[FlagRegister] = 0
	}
}

// TickCycle accounts one executed instruction and decrements both timers
// at TimerFrequency ticks per ClockSpeed instructions, carrying the
// remainder of fractional rates to the next tick.
// It returns whether the timers were ticked.
func (s *State) TickCycle() bool {
	s.timerPhase += TimerFrequency
	if s.timerPhase < s.clockSpeed {
		return false
	}
	s.timerPhase -= s.clockSpeed
	s.TickTimers()
	return true
}

// TickTimers decrements the delay and sound timers if they are not zero.
func (s *State) TickTimers() {
	if s.DelayTimer > 0 {
		s.DelayTimer--
	}
	if s.SoundTimer > 0 {
		s.SoundTimer--
	}
}

// SoundActive returns whether the tone should currently be played.
func (s *State) SoundActive() bool {
	return s.SoundTimer > 0
}

// Reset restores the power on state with the program reloaded as it was
// loaded, discarding any changes the program made to memory. The program
// counter is set to the address the program was loaded to.
func (s *State) Reset() {
	var memory [MemorySize]byte
	copy(memory[FontAddress:], font[:])
	copy(memory[s.entryPoint:], s.program)

	*s = State{
		Memory:        memory,
		PC:            s.entryPoint,
		Display:       s.Display,
		entryPoint:    s.entryPoint,
		program:       s.program,
		clockSpeed:    s.clockSpeed,
		cyclesPerTick: s.cyclesPerTick,
	}
	s.Display.Clear()
}
