package cpu

import (
	"errors"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/assert"
)

// newTestCPU returns a CPU with the given instruction words loaded at the
// program start address.
func newTestCPU(t *testing.T, words ...uint16) *CPU {
	t.Helper()

	m := machine.New(machine.DefaultClockSpeed)
	program := make([]byte, 0, 2*len(words))
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	if len(program) > 0 {
		assert.NoError(t, m.LoadProgram(program))
	}
	return New(m, WithRandom(func() uint8 { return 0xFF }))
}

func mustStep(t *testing.T, c *CPU) Result {
	t.Helper()

	result, err := c.Step()
	if err != nil {
		t.Fatalf("step failed: %v\nstate: %s", err, spew.Sdump(c.m))
	}
	return result
}

func TestStep_LoadIndex(t *testing.T) {
	c := newTestCPU(t, 0xA220)

	assert.Equal(t, Advance, mustStep(t, c))
	assert.Equal(t, uint16(0x0220), c.m.I)
	assert.Equal(t, uint16(0x202), c.m.PC)
}

func TestStep_OnlyExpectedStateChanges(t *testing.T) {
	c := newTestCPU(t, 0x6A42)
	want := *c.m
	want.V[0xA] = 0x42
	want.PC = 0x202

	mustStep(t, c)

	// the cycle accumulator is unexported and ignored by deep
	if diff := deep.Equal(&want, c.m); diff != nil {
		t.Errorf("unexpected state change: %v", diff)
	}
}

func TestStep_CallReturn(t *testing.T) {
	c := newTestCPU(t, 0x2300)
	c.m.Memory[0x300] = 0x00
	c.m.Memory[0x301] = 0xEE

	assert.Equal(t, Jump, mustStep(t, c))
	assert.Equal(t, uint16(0x300), c.m.PC)
	assert.Equal(t, uint8(1), c.m.SP)
	assert.Equal(t, uint16(0x200), c.m.Stack[0])

	assert.Equal(t, Jump, mustStep(t, c))
	assert.Equal(t, uint16(0x202), c.m.PC)
	assert.Equal(t, uint8(0), c.m.SP)
}

func TestStep_ReturnWithEmptyStack(t *testing.T) {
	c := newTestCPU(t, 0x00EE)

	_, err := c.Step()
	assert.Error(t, err)
	assert.True(t, errors.Is(err, machine.ErrStackUnderflow))

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0x200), execErr.PC)
	assert.Equal(t, uint16(0x00EE), execErr.Instruction.Raw)
	assert.Equal(t, "executing Return (0x00EE) at 0x200: stack underflow", err.Error())

	// the CPU stays halted
	_, err = c.Step()
	assert.True(t, errors.Is(err, ErrHalted))
	assert.True(t, errors.Is(err, machine.ErrStackUnderflow))
	assert.Equal(t, uint16(0x200), c.m.PC)

	c.Reset()
	assert.NoError(t, c.Halted())
}

func TestStep_StackOverflow(t *testing.T) {
	// 0x200: CALL 0x200, recursing until the stack is full
	c := newTestCPU(t, 0x2200)

	for range machine.StackSize {
		mustStep(t, c)
	}
	_, err := c.Step()
	assert.True(t, errors.Is(err, machine.ErrStackOverflow))
	assert.Equal(t, uint8(machine.StackSize), c.m.SP)
}

func TestStep_FetchOutOfRange(t *testing.T) {
	c := newTestCPU(t, 0x1FFF)
	mustStep(t, c)

	_, err := c.Step()
	assert.True(t, errors.Is(err, machine.ErrAddressOutOfRange))

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0xFFF), execErr.PC)
}

func TestStep_WaitKey(t *testing.T) {
	c := newTestCPU(t, 0xF50A)

	for range 5 {
		assert.Equal(t, Wait, mustStep(t, c))
		assert.Equal(t, uint16(0x200), c.m.PC)
	}

	c.m.Keyboard.SetKey(0xB, true)
	assert.Equal(t, Advance, mustStep(t, c))
	assert.Equal(t, uint16(0x202), c.m.PC)
	assert.Equal(t, uint8(0xB), c.m.V[5])
	assert.Equal(t, machine.NoKey, c.m.Keyboard.LastKey())
}

func TestStep_WaitKeyKeepsTimersRunning(t *testing.T) {
	c := newTestCPU(t, 0xF00A)
	c.m.DelayTimer = 2

	for range 2 * c.m.CyclesPerTick() {
		mustStep(t, c)
	}
	assert.Equal(t, uint8(0), c.m.DelayTimer)
	assert.Equal(t, uint16(0x200), c.m.PC)
}

func TestStep_TimerDecay(t *testing.T) {
	// 0x200: JP 0x200
	c := newTestCPU(t, 0x1200)
	c.m.DelayTimer = 10

	zeroAt := -1
	for cycle := 1; cycle <= 600; cycle++ {
		mustStep(t, c)
		if c.m.DelayTimer == 0 && zeroAt < 0 {
			zeroAt = cycle
		}
	}

	assert.Equal(t, 10*c.m.CyclesPerTick(), zeroAt)
	assert.Equal(t, uint8(0), c.m.DelayTimer)
}

func TestStep_Hook(t *testing.T) {
	var pcs []uint16
	var ops []opcode.Operation

	c := newTestCPU(t, 0x6001, 0x00E0)
	c.hook = func(pc uint16, ins opcode.Instruction, result Result) {
		pcs = append(pcs, pc)
		ops = append(ops, ins.Op)
	}

	assert.NoError(t, c.Run(2))
	if diff := deep.Equal([]uint16{0x200, 0x202}, pcs); diff != nil {
		t.Error(diff)
	}
	if diff := deep.Equal([]opcode.Operation{opcode.LoadByte, opcode.ClearScreen}, ops); diff != nil {
		t.Error(diff)
	}
}

func TestWithSeed(t *testing.T) {
	m1 := machine.New(0)
	m2 := machine.New(0)
	c1 := New(m1, WithSeed(42))
	c2 := New(m2, WithSeed(42))

	for range 16 {
		assert.Equal(t, c1.random(), c2.random())
	}
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "advance", Advance.String())
	assert.Equal(t, "wait", Wait.String())
	assert.Equal(t, "Result(9)", Result(9).String())
}

func TestReset_SelfModifiedProgram(t *testing.T) {
	// LD V0, $77; LD I, $200; LD [I], V0 overwrites the first program byte
	c := newTestCPU(t, 0x6077, 0xA200, 0xF055)
	assert.NoError(t, c.Run(3))
	assert.Equal(t, byte(0x77), c.m.Memory[0x200])

	c.Reset()
	assert.Equal(t, byte(0x60), c.m.Memory[0x200])

	mustStep(t, c)
	assert.Equal(t, uint8(0x77), c.m.V[0])
	assert.Equal(t, uint16(0x202), c.m.PC)
}
