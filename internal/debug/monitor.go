package debug

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// Monitor controls whether the run loop may execute the next instruction.
// It pauses execution when the program counter reaches a breakpoint and
// supports single stepping while paused.
type Monitor struct {
	logger *log.Logger
	out    io.Writer

	breakpoints set.Set[uint16]
	paused      bool
	step        bool

	resumed   bool // ignore the breakpoint at resumeAt once
	resumeAt  uint16
	lastBreak uint16
}

// NewMonitor returns a monitor that writes state dumps on breakpoints to out.
func NewMonitor(logger *log.Logger, out io.Writer, breakpoints []uint16) *Monitor {
	m := &Monitor{
		logger:      logger,
		out:         out,
		breakpoints: set.New[uint16](),
	}
	for _, address := range breakpoints {
		m.AddBreakpoint(address)
	}
	return m
}

// AddBreakpoint adds a breakpoint at the given address.
func (m *Monitor) AddBreakpoint(address uint16) {
	m.breakpoints.Add(address & machine.MaxAddress)
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (m *Monitor) Breakpoints() []uint16 {
	addresses := make([]uint16, 0, len(m.breakpoints))
	for address := range m.breakpoints {
		addresses = append(addresses, address)
	}
	slices.Sort(addresses)
	return addresses
}

// Paused returns whether execution is paused.
func (m *Monitor) Paused() bool {
	return m.paused
}

// Pause pauses execution.
func (m *Monitor) Pause() {
	m.paused = true
	m.step = false
}

// Resume continues execution, a breakpoint at the current program counter
// does not trigger again.
func (m *Monitor) Resume() {
	if !m.paused {
		return
	}
	m.paused = false
	m.resumed = true
	m.resumeAt = m.lastBreak
}

// TogglePause pauses a running or resumes a paused execution.
func (m *Monitor) TogglePause(state *machine.State) {
	if m.paused {
		m.Resume()
		return
	}
	m.lastBreak = state.PC
	m.Pause()
	m.logger.Info("Execution paused", log.Hex("pc", state.PC))
}

// Step allows a single instruction to be executed while paused.
func (m *Monitor) Step() {
	if m.paused {
		m.step = true
	}
}

// Allow returns whether the instruction at the program counter may be
// executed. Reaching a breakpoint pauses execution and writes a dump of
// the machine state.
func (m *Monitor) Allow(state *machine.State) bool {
	if m.paused {
		m.lastBreak = state.PC
		if !m.step {
			return false
		}
		m.step = false
		return true
	}

	pc := state.PC
	if m.resumed {
		m.resumed = false
		if pc == m.resumeAt {
			return true
		}
	}

	if !m.breakpoints.Contains(pc) {
		return true
	}

	m.paused = true
	m.lastBreak = pc
	m.logger.Info("Breakpoint hit", log.Hex("pc", pc))
	if m.out != nil {
		Dump(m.out, state)
	}
	return false
}

// ParseBreakpoints parses a comma separated list of hex addresses with an
// optional 0x or $ prefix.
func ParseBreakpoints(s string) ([]uint16, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var addresses []uint16
	for field := range strings.SplitSeq(s, ",") {
		field = strings.TrimSpace(field)
		field = strings.TrimPrefix(field, "$")
		field = strings.TrimPrefix(strings.ToLower(field), "0x")

		address, err := strconv.ParseUint(field, 16, 16)
		if err != nil || address > machine.MaxAddress {
			return nil, fmt.Errorf("invalid breakpoint address '%s'", field)
		}
		addresses = append(addresses, uint16(address))
	}
	return addresses, nil
}
