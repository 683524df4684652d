package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/opcode"
)

const (
	funcNaming  = "_func_%03x"
	labelNaming = "_label_%03x"
	dataNaming  = "_data_%03x"
)

// processJumpDestinations generates label names for all branch destinations
// and data references.
func (dis *Disasm) processJumpDestinations() {
	for address := range dis.branchDestinations {
		if _, ok := dis.labels[address]; ok {
			continue
		}
		if dis.callDestinations.Contains(address) {
			dis.labels[address] = fmt.Sprintf(funcNaming, address)
		} else {
			dis.labels[address] = fmt.Sprintf(labelNaming, address)
		}
	}

	for address := range dis.dataReferences {
		if _, ok := dis.labels[address]; !ok {
			dis.labels[address] = fmt.Sprintf(dataNaming, address)
		}
	}
}

// convertToLines converts the parsed instructions and the remaining data
// bytes to listing lines in address order.
func (dis *Disasm) convertToLines() []Line {
	var lines []Line

	for address := int(dis.origin); address < dis.end; {
		addr := uint16(address)
		index := address - int(dis.origin)
		line := Line{
			Address: addr,
			Label:   dis.labels[addr],
		}

		ins, ok := dis.instructions[addr]
		if ok {
			if dis.overlapsInstruction(addr) {
				line.Comment = "branch into instruction detected: " + Format(ins)
				ok = false
			} else if _, labeled := dis.labels[addr+1]; labeled {
				line.Comment = "reference into instruction detected: " + Format(ins)
				ok = false
			}
		}

		if ok {
			line.Data = dis.memory[index : index+instructionSize]
			line.Code = Format(ins)
			line.IsCode = true
			if target, isBranch := dis.branchTarget(ins); isBranch {
				line.Comment = target
			}
			address += instructionSize
		} else {
			line.Data = dis.memory[index : index+1]
			line.Code = fmt.Sprintf(".byte $%02X", dis.memory[index])
			address++
		}
		lines = append(lines, line)
	}
	return lines
}

// overlapsInstruction returns whether the second byte of the instruction at
// the given address is the start of another instruction.
func (dis *Disasm) overlapsInstruction(address uint16) bool {
	_, ok := dis.instructions[address+1]
	return ok
}

// branchTarget returns the label of the address referenced by a jump, call
// or index load.
func (dis *Disasm) branchTarget(ins opcode.Instruction) (string, bool) {
	switch ins.Op {
	case opcode.Jump, opcode.CallSubroutine, opcode.LoadIndex:
		label, ok := dis.labels[ins.NNN]
		return label, ok
	default:
		return "", false
	}
}

// Write writes a listing of the disassembled lines.
func Write(w io.Writer, lines []Line) error {
	var b strings.Builder

	for _, line := range lines {
		if line.Label != "" {
			fmt.Fprintf(&b, "%s:\n", line.Label)
		}

		bytes := make([]string, 0, len(line.Data))
		for _, d := range line.Data {
			bytes = append(bytes, fmt.Sprintf("%02X", d))
		}

		code := "  " + line.Code
		comment := fmt.Sprintf("; $%03X %s", line.Address, strings.Join(bytes, " "))
		if line.Comment != "" {
			comment += " " + line.Comment
		}
		fmt.Fprintf(&b, "%-28s%s\n", code, comment)
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("writing listing: %w", err)
	}
	return nil
}
