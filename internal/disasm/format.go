package disasm

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// mnemonics is used for instructions that the retrogolib opcode table
// does not describe.
var mnemonics = [...]string{
	opcode.Sys:                    "sys",
	opcode.ClearScreen:            "cls",
	opcode.Return:                 "ret",
	opcode.Jump:                   "jp",
	opcode.CallSubroutine:         "call",
	opcode.SkipIfEqualByte:        "se",
	opcode.SkipIfNotEqualByte:     "sne",
	opcode.SkipIfEqualRegister:    "se",
	opcode.LoadByte:               "ld",
	opcode.AddByte:                "add",
	opcode.LoadRegister:           "ld",
	opcode.Or:                     "or",
	opcode.And:                    "and",
	opcode.Xor:                    "xor",
	opcode.AddRegister:            "add",
	opcode.SubRegister:            "sub",
	opcode.ShiftRight:             "shr",
	opcode.SubNegated:             "subn",
	opcode.ShiftLeft:              "shl",
	opcode.SkipIfNotEqualRegister: "sne",
	opcode.LoadIndex:              "ld",
	opcode.JumpOffset:             "jp",
	opcode.Random:                 "rnd",
	opcode.Draw:                   "drw",
	opcode.SkipIfKeyPressed:       "skp",
	opcode.SkipIfKeyNotPressed:    "sknp",
	opcode.LoadDelayTimer:         "ld",
	opcode.WaitKey:                "ld",
	opcode.SetDelayTimer:          "ld",
	opcode.SetSoundTimer:          "ld",
	opcode.AddIndex:               "add",
	opcode.LoadFont:               "ld",
	opcode.StoreBCD:               "ld",
	opcode.StoreRegisters:         "ld",
	opcode.LoadRegisters:          "ld",
}

// Lookup returns the retrogolib instruction description for an instruction
// word, using the encoding table of the decoder.
func Lookup(raw uint16) (*chip8.Instruction, bool) {
	return opcode.Describe(raw)
}

// Mnemonic returns the assembler mnemonic of an instruction.
func Mnemonic(ins opcode.Instruction) string {
	if ins.Op == opcode.NoOp || !ins.Op.Valid() {
		return ".word"
	}
	if instruction, ok := Lookup(ins.Raw); ok {
		return instruction.Name
	}
	return mnemonics[ins.Op]
}

// Format returns the assembler representation of an instruction.
// Words that do not encode an instruction are output as data.
func Format(ins opcode.Instruction) string {
	name := Mnemonic(ins)
	if ins.Op == opcode.NoOp || !ins.Op.Valid() {
		return fmt.Sprintf("%s $%04X", name, ins.Raw)
	}

	if params := formatParams(ins); params != "" {
		return fmt.Sprintf("%s %s", name, params)
	}
	return name
}

// formatParams formats the operands of an instruction.
func formatParams(ins opcode.Instruction) string {
	switch ins.Op {
	case opcode.ClearScreen, opcode.Return:
		return "" // No parameters

	case opcode.Sys, opcode.Jump, opcode.CallSubroutine:
		return fmt.Sprintf("$%03X", ins.NNN)
	case opcode.JumpOffset:
		return fmt.Sprintf("V0, $%03X", ins.NNN)
	case opcode.LoadIndex:
		return fmt.Sprintf("I, $%03X", ins.NNN)

	case opcode.SkipIfEqualByte, opcode.SkipIfNotEqualByte, opcode.LoadByte,
		opcode.AddByte, opcode.Random:
		return fmt.Sprintf("V%X, $%02X", ins.X, ins.NN)

	case opcode.SkipIfEqualRegister, opcode.SkipIfNotEqualRegister, opcode.LoadRegister,
		opcode.Or, opcode.And, opcode.Xor, opcode.AddRegister, opcode.SubRegister, opcode.SubNegated:
		return fmt.Sprintf("V%X, V%X", ins.X, ins.Y)

	case opcode.ShiftRight, opcode.ShiftLeft, opcode.SkipIfKeyPressed, opcode.SkipIfKeyNotPressed:
		return fmt.Sprintf("V%X", ins.X)

	case opcode.Draw:
		return fmt.Sprintf("V%X, V%X, $%X", ins.X, ins.Y, ins.N)

	case opcode.LoadDelayTimer:
		return fmt.Sprintf("V%X, DT", ins.X)
	case opcode.WaitKey:
		return fmt.Sprintf("V%X, K", ins.X)
	case opcode.SetDelayTimer:
		return fmt.Sprintf("DT, V%X", ins.X)
	case opcode.SetSoundTimer:
		return fmt.Sprintf("ST, V%X", ins.X)
	case opcode.AddIndex:
		return fmt.Sprintf("I, V%X", ins.X)
	case opcode.LoadFont:
		return fmt.Sprintf("F, V%X", ins.X)
	case opcode.StoreBCD:
		return fmt.Sprintf("B, V%X", ins.X)
	case opcode.StoreRegisters:
		return fmt.Sprintf("[I], V%X", ins.X)
	case opcode.LoadRegisters:
		return fmt.Sprintf("V%X, [I]", ins.X)
	}
	return ""
}
