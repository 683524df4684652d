package cpu

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/opcode"
)

const instructionSize = 2

// Execute executes a decoded instruction and updates the program counter
// according to the result of the instruction. The machine state is not
// modified if an error is returned.
func (c *CPU) Execute(ins opcode.Instruction) (Result, error) {
	result, err := c.dispatch(ins)
	if err != nil {
		return result, err
	}

	switch result {
	case Advance:
		c.m.PC += instructionSize
	case Skip:
		c.m.PC += 2 * instructionSize
	case Jump, Wait:
	}
	return result, nil
}

func (c *CPU) dispatch(ins opcode.Instruction) (Result, error) {
	switch ins.Op {
	case opcode.NoOp, opcode.Sys:
		return Advance, nil
	case opcode.ClearScreen:
		return c.clearScreen()
	case opcode.Return:
		return c.ret()
	case opcode.Jump:
		return c.jump(ins)
	case opcode.CallSubroutine:
		return c.call(ins)
	case opcode.SkipIfEqualByte:
		return skipIf(c.m.V[ins.X] == ins.NN), nil
	case opcode.SkipIfNotEqualByte:
		return skipIf(c.m.V[ins.X] != ins.NN), nil
	case opcode.SkipIfEqualRegister:
		return skipIf(c.m.V[ins.X] == c.m.V[ins.Y]), nil
	case opcode.SkipIfNotEqualRegister:
		return skipIf(c.m.V[ins.X] != c.m.V[ins.Y]), nil
	case opcode.LoadByte:
		c.m.V[ins.X] = ins.NN
		return Advance, nil
	case opcode.AddByte:
		c.m.V[ins.X] += ins.NN
		return Advance, nil
	case opcode.LoadRegister:
		c.m.V[ins.X] = c.m.V[ins.Y]
		return Advance, nil
	case opcode.Or:
		c.m.V[ins.X] |= c.m.V[ins.Y]
		return Advance, nil
	case opcode.And:
		c.m.V[ins.X] &= c.m.V[ins.Y]
		return Advance, nil
	case opcode.Xor:
		c.m.V[ins.X] ^= c.m.V[ins.Y]
		return Advance, nil
	case opcode.AddRegister:
		return c.addRegister(ins)
	case opcode.SubRegister:
		return c.subtract(ins.X, c.m.V[ins.X], c.m.V[ins.Y])
	case opcode.SubNegated:
		return c.subtract(ins.X, c.m.V[ins.Y], c.m.V[ins.X])
	case opcode.ShiftRight:
		return c.shiftRight(ins)
	case opcode.ShiftLeft:
		return c.shiftLeft(ins)
	case opcode.LoadIndex:
		c.m.I = ins.NNN
		return Advance, nil
	case opcode.JumpOffset:
		c.m.PC = (ins.NNN + uint16(c.m.V[0])) & machine.MaxAddress
		return Jump, nil
	case opcode.Random:
		c.m.V[ins.X] = c.random() & ins.NN
		return Advance, nil
	case opcode.Draw:
		return c.draw(ins)
	case opcode.SkipIfKeyPressed:
		return skipIf(c.m.Keyboard.IsPressed(c.m.V[ins.X])), nil
	case opcode.SkipIfKeyNotPressed:
		return skipIf(!c.m.Keyboard.IsPressed(c.m.V[ins.X])), nil
	case opcode.LoadDelayTimer:
		c.m.V[ins.X] = c.m.DelayTimer
		return Advance, nil
	case opcode.WaitKey:
		return c.waitKey(ins)
	case opcode.SetDelayTimer:
		c.m.DelayTimer = c.m.V[ins.X]
		return Advance, nil
	case opcode.SetSoundTimer:
		c.m.SoundTimer = c.m.V[ins.X]
		return Advance, nil
	case opcode.AddIndex:
		c.m.I += uint16(c.m.V[ins.X])
		return Advance, nil
	case opcode.LoadFont:
		c.m.I = machine.FontSprite(c.m.V[ins.X])
		return Advance, nil
	case opcode.StoreBCD:
		return c.storeBCD(ins)
	case opcode.StoreRegisters:
		return c.storeRegisters(ins)
	case opcode.LoadRegisters:
		return c.loadRegisters(ins)
	default:
		return Wait, fmt.Errorf("unsupported operation %s", ins.Op)
	}
}

func skipIf(condition bool) Result {
	if condition {
		return Skip
	}
	return Advance
}

func (c *CPU) clearScreen() (Result, error) {
	c.m.Display.Clear()
	return Advance, nil
}

// ret returns to the instruction following the CALL that pushed the
// return address.
func (c *CPU) ret() (Result, error) {
	address, err := c.m.Pop()
	if err != nil {
		return Wait, err
	}
	c.m.PC = address + instructionSize
	return Jump, nil
}

func (c *CPU) jump(ins opcode.Instruction) (Result, error) {
	c.m.PC = ins.NNN
	return Jump, nil
}

// call pushes the address of the CALL instruction itself, RET skips over it.
func (c *CPU) call(ins opcode.Instruction) (Result, error) {
	if err := c.m.Push(c.m.PC); err != nil {
		return Wait, err
	}
	c.m.PC = ins.NNN
	return Jump, nil
}

func (c *CPU) addRegister(ins opcode.Instruction) (Result, error) {
	sum := uint16(c.m.V[ins.X]) + uint16(c.m.V[ins.Y])
	c.m.V[ins.X] = uint8(sum)
	c.m.SetFlag(sum > 0xFF)
	return Advance, nil
}

// subtract stores minuend - subtrahend in Vx, VF is set if no borrow occurred.
func (c *CPU) subtract(x, minuend, subtrahend uint8) (Result, error) {
	c.m.V[x] = minuend - subtrahend
	c.m.SetFlag(minuend > subtrahend)
	return Advance, nil
}

func (c *CPU) shiftSource(ins opcode.Instruction) uint8 {
	if c.quirks.ShiftSourceVx {
		return c.m.V[ins.X]
	}
	return c.m.V[ins.Y]
}

func (c *CPU) shiftRight(ins opcode.Instruction) (Result, error) {
	value := c.shiftSource(ins)
	c.m.V[ins.X] = value >> 1
	c.m.SetFlag(value&0x01 != 0)
	return Advance, nil
}

func (c *CPU) shiftLeft(ins opcode.Instruction) (Result, error) {
	value := c.shiftSource(ins)
	c.m.V[ins.X] = value << 1
	c.m.SetFlag(value&0x80 != 0)
	return Advance, nil
}

// draw XORs an n byte sprite read from I onto the display at (Vx, Vy).
// VF is set if any lit pixel got erased.
func (c *CPU) draw(ins opcode.Instruction) (Result, error) {
	sprite, err := c.m.MemoryRange(c.m.I, int(ins.N))
	if err != nil {
		return Wait, fmt.Errorf("reading sprite: %w", err)
	}

	x := int(c.m.V[ins.X])
	y := int(c.m.V[ins.Y])
	collision := false

	for row, data := range sprite {
		for bit := range 8 {
			if data&(0x80>>bit) == 0 {
				continue
			}
			if c.m.Display.Toggle(x+bit, y+row) {
				collision = true
			}
		}
	}

	c.m.SetFlag(collision)
	return Advance, nil
}

// waitKey stores the latched key in Vx, without a latched key the
// instruction makes no progress and gets executed again on the next cycle.
func (c *CPU) waitKey(ins opcode.Instruction) (Result, error) {
	key, ok := c.m.Keyboard.PollKey()
	if !ok {
		return Wait, nil
	}
	c.m.V[ins.X] = key
	return Advance, nil
}

func (c *CPU) storeBCD(ins opcode.Instruction) (Result, error) {
	dst, err := c.m.MemoryRange(c.m.I, 3)
	if err != nil {
		return Wait, fmt.Errorf("storing BCD: %w", err)
	}

	value := c.m.V[ins.X]
	dst[0] = value / 100
	dst[1] = value / 10 % 10
	dst[2] = value % 10
	return Advance, nil
}

func (c *CPU) storeRegisters(ins opcode.Instruction) (Result, error) {
	count := int(ins.X) + 1
	dst, err := c.m.MemoryRange(c.m.I, count)
	if err != nil {
		return Wait, fmt.Errorf("storing registers: %w", err)
	}

	copy(dst, c.m.V[:count])
	c.advanceIndex(count)
	return Advance, nil
}

func (c *CPU) loadRegisters(ins opcode.Instruction) (Result, error) {
	count := int(ins.X) + 1
	src, err := c.m.MemoryRange(c.m.I, count)
	if err != nil {
		return Wait, fmt.Errorf("loading registers: %w", err)
	}

	copy(c.m.V[:count], src)
	c.advanceIndex(count)
	return Advance, nil
}

func (c *CPU) advanceIndex(count int) {
	if !c.quirks.KeepIndexOnBlockTransfer {
		c.m.I += uint16(count)
	}
}
