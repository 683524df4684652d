// Package debug provides textual dumps of the machine state and a monitor
// that pauses execution at breakpoints.
package debug

import (
	"fmt"
	"io"
	"strings"

	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/machine"
)

const (
	separator     = "----------------------------"
	bytesPerLine  = 16
	dumpLookAhead = 4 // instructions listed after the program counter
)

// Registers writes the general purpose registers in hex and binary.
func Registers(w io.Writer, m *machine.State) {
	var b strings.Builder
	b.WriteString(separator + "\nRegisters:\n" + separator + "\n")
	for n, v := range m.V {
		fmt.Fprintf(&b, "V%X -> 0x%02X | %08b\n", n, v, v)
	}
	_, _ = io.WriteString(w, b.String())
}

// State writes the special purpose registers, the timers and the
// instructions at the program counter.
func State(w io.Writer, m *machine.State) {
	var b strings.Builder
	fmt.Fprintf(&b, "PC=0x%03X I=0x%03X SP=%d DT=%d ST=%d\n",
		m.PC, m.I, m.SP, m.DelayTimer, m.SoundTimer)

	for i := range dumpLookAhead {
		address := m.PC + uint16(2*i)
		code, err := disasm.InstructionAt(m.Memory[:], address)
		if err != nil {
			break
		}
		marker := "  "
		if i == 0 {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%03X  %s\n", marker, address, code)
	}
	_, _ = io.WriteString(w, b.String())
}

// Stack writes the used stack slots, the most recent return address last.
func Stack(w io.Writer, m *machine.State) {
	var b strings.Builder
	fmt.Fprintf(&b, "Stack (%d/%d):", m.SP, machine.StackSize)
	for i := range int(m.SP) {
		fmt.Fprintf(&b, " %03X", m.Stack[i])
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(w, b.String())
}

// Keyboard writes the pressed keys and the latched key.
func Keyboard(w io.Writer, m *machine.State) {
	var b strings.Builder
	b.WriteString("Keys:")
	for key, pressed := range m.Keyboard.Pressed() {
		if pressed {
			fmt.Fprintf(&b, " %X", key)
		}
	}
	if key := m.Keyboard.LastKey(); key != machine.NoKey {
		fmt.Fprintf(&b, " latched=%X", key)
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(w, b.String())
}

// Memory writes a hexdump of a memory range, the range is clipped to the
// memory size.
func Memory(w io.Writer, m *machine.State, address uint16, length int) {
	end := min(int(address)+length, machine.MemorySize)

	var b strings.Builder
	for line := int(address); line < end; line += bytesPerLine {
		fmt.Fprintf(&b, "%03X:", line)
		for i := line; i < min(line+bytesPerLine, end); i++ {
			fmt.Fprintf(&b, " %02X", m.Memory[i])
		}
		b.WriteByte('\n')
	}
	_, _ = io.WriteString(w, b.String())
}

// Display writes the display as text, one line per pixel row.
func Display(w io.Writer, m *machine.State) {
	_, _ = io.WriteString(w, m.Display.String())
}

// Dump writes the complete machine state.
func Dump(w io.Writer, m *machine.State) {
	State(w, m)
	Stack(w, m)
	Keyboard(w, m)
	Registers(w, m)
	_, _ = io.WriteString(w, separator+"\n")
	Memory(w, m, m.I, 2*bytesPerLine)
	Display(w, m)
}
