package opcode

import (
	"fmt"
	"math/bits"
	"slices"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Instruction is a decoded instruction word with its operand fields.
type Instruction struct {
	Raw uint16
	Op  Operation

	X   uint8  // register index in bits 8-11
	Y   uint8  // register index in bits 4-7
	N   uint8  // nibble in bits 0-3
	NN  uint8  // byte in bits 0-7
	NNN uint16 // address in bits 0-11
}

func (i Instruction) String() string {
	return fmt.Sprintf("%s(0x%04X)", i.Op, i.Raw)
}

// pattern matches an instruction word if word&mask == value.
type pattern struct {
	mask        uint16
	value       uint16
	op          Operation
	instruction *chip8.Instruction // nil for SYS
}

// operations maps the base encoding of every instruction to its operation.
var operations = map[uint16]Operation{
	0x0000: Sys,
	0x00E0: ClearScreen,
	0x00EE: Return,
	0x1000: Jump,
	0x2000: CallSubroutine,
	0x3000: SkipIfEqualByte,
	0x4000: SkipIfNotEqualByte,
	0x5000: SkipIfEqualRegister,
	0x6000: LoadByte,
	0x7000: AddByte,
	0x8000: LoadRegister,
	0x8001: Or,
	0x8002: And,
	0x8003: Xor,
	0x8004: AddRegister,
	0x8005: SubRegister,
	0x8006: ShiftRight,
	0x8007: SubNegated,
	0x800E: ShiftLeft,
	0x9000: SkipIfNotEqualRegister,
	0xA000: LoadIndex,
	0xB000: JumpOffset,
	0xC000: Random,
	0xD000: Draw,
	0xE09E: SkipIfKeyPressed,
	0xE0A1: SkipIfKeyNotPressed,
	0xF007: LoadDelayTimer,
	0xF00A: WaitKey,
	0xF015: SetDelayTimer,
	0xF018: SetSoundTimer,
	0xF01E: AddIndex,
	0xF029: LoadFont,
	0xF033: StoreBCD,
	0xF055: StoreRegisters,
	0xF065: LoadRegisters,
}

// sysPattern is used if the retrogolib opcode table does not describe
// machine code calls.
var sysPattern = pattern{mask: 0xF000, value: 0x0000, op: Sys}

// patterns contains the encoding table indexed by the high nibble of the
// instruction word, built from the retrogolib CHIP-8 opcode table. Each list
// is ordered from the most to the least specific mask, the first match wins.
var patterns = buildPatterns()

func buildPatterns() [16][]pattern {
	var table [16][]pattern
	hasSys := false

	for nibble := range len(table) {
		for _, op := range chip8.Opcodes[nibble] {
			operation, ok := operations[uint16(op.Info.Value)]
			if !ok || op.Instruction == nil {
				continue // instruction of an extended instruction set
			}
			if operation == Sys {
				hasSys = true
			}
			table[nibble] = append(table[nibble], pattern{
				mask:        uint16(op.Info.Mask),
				value:       uint16(op.Info.Value),
				op:          operation,
				instruction: op.Instruction,
			})
		}
	}
	if !hasSys {
		table[0] = append(table[0], sysPattern)
	}

	for nibble := range table {
		slices.SortStableFunc(table[nibble], func(a, b pattern) int {
			return bits.OnesCount16(b.mask) - bits.OnesCount16(a.mask)
		})
	}
	return table
}

func match(raw uint16) (pattern, bool) {
	for _, p := range patterns[raw>>12] {
		if raw&p.mask == p.value {
			return p, true
		}
	}
	return pattern{}, false
}

// Describe returns the retrogolib description of the instruction encoded by
// the word.
func Describe(raw uint16) (*chip8.Instruction, bool) {
	p, ok := match(raw)
	if !ok || p.instruction == nil {
		return nil, false
	}
	return p.instruction, true
}

// Decode decodes an instruction word. Decoding never fails, words that do
// not match any instruction encoding decode to NoOp.
func Decode(raw uint16) Instruction {
	return Instruction{
		Raw: raw,
		Op:  Classify(raw),
		X:   uint8(raw>>8) & 0x0F,
		Y:   uint8(raw>>4) & 0x0F,
		N:   uint8(raw) & 0x0F,
		NN:  uint8(raw),
		NNN: raw & 0x0FFF,
	}
}

// Classify returns the operation of an instruction word.
func Classify(raw uint16) Operation {
	if p, ok := match(raw); ok {
		return p.op
	}
	return NoOp
}
