// Package disasm implements a CHIP-8 disassembler that follows the execution
// flow of a program to separate code from data.
package disasm

import (
	"errors"
	"fmt"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

const instructionSize = 2

// ErrNoInstruction is returned for addresses that do not contain an instruction word.
var ErrNoInstruction = errors.New("no instruction")

// Line is a single line of a disassembled program.
type Line struct {
	Address uint16
	Data    []byte
	Label   string
	Code    string
	Comment string
	IsCode  bool
}

// Disasm implements a disassembler.
type Disasm struct {
	logger *log.Logger
	memory []byte
	origin uint16
	end    int // exclusive end address of the program

	instructions       map[uint16]opcode.Instruction
	labels             map[uint16]string
	branchDestinations set.Set[uint16] // set of all addresses that are branched to
	callDestinations   set.Set[uint16]
	dataReferences     set.Set[uint16]

	offsetsToParse      []uint16
	offsetsToParseAdded set.Set[uint16]
}

// New creates a new disassembler for a program that is located at the
// given origin address.
func New(logger *log.Logger, program []byte, origin uint16) (*Disasm, error) {
	if len(program) == 0 {
		return nil, machine.ErrEmptyProgram
	}
	end := int(origin) + len(program)
	if end > machine.MemorySize {
		return nil, fmt.Errorf("%w: %d bytes at 0x%03X", machine.ErrProgramTooLarge, len(program), origin)
	}

	return &Disasm{
		logger:              logger,
		memory:              program,
		origin:              origin,
		end:                 end,
		instructions:        make(map[uint16]opcode.Instruction),
		labels:              make(map[uint16]string),
		branchDestinations:  set.New[uint16](),
		callDestinations:    set.New[uint16](),
		dataReferences:      set.New[uint16](),
		offsetsToParseAdded: set.New[uint16](),
	}, nil
}

// Process follows the execution flow starting at the origin and returns
// the disassembled program.
func (dis *Disasm) Process() []Line {
	dis.labels[dis.origin] = "Start"
	dis.addAddressToParse(dis.origin)

	dis.followExecutionFlow()
	dis.processJumpDestinations()

	lines := dis.convertToLines()
	dis.logger.Debug("Disassembled program",
		log.Int("instructions", len(dis.instructions)),
		log.Int("labels", len(dis.labels)))
	return lines
}

// followExecutionFlow parses instructions and follows the execution flow
// to parse all reachable code.
func (dis *Disasm) followExecutionFlow() {
	for len(dis.offsetsToParse) > 0 {
		address := dis.offsetsToParse[0]
		dis.offsetsToParse = dis.offsetsToParse[1:]

		raw, ok := dis.readWord(address)
		if !ok {
			continue
		}

		ins := opcode.Decode(raw)
		if ins.Op == opcode.NoOp {
			// consider an unknown instruction as start of data
			continue
		}
		dis.instructions[address] = ins
		dis.handleControlFlow(address, ins)
	}
}

// handleControlFlow queues all addresses that can be executed after the
// instruction at the given address.
func (dis *Disasm) handleControlFlow(address uint16, ins opcode.Instruction) {
	next := address + instructionSize

	switch {
	case ins.Op == opcode.Jump:
		dis.addBranchDestination(ins.NNN)

	case ins.Op == opcode.CallSubroutine:
		if dis.addBranchDestination(ins.NNN) {
			dis.callDestinations.Add(ins.NNN)
		}
		dis.addAddressToParse(next)

	case ins.Op.IsSkip():
		dis.addAddressToParse(next)
		dis.addAddressToParse(next + instructionSize)

	case ins.Op == opcode.LoadIndex:
		if dis.inProgram(ins.NNN) {
			dis.dataReferences.Add(ins.NNN)
		}
		dis.addAddressToParse(next)

	case ins.Op == opcode.Return, ins.Op == opcode.JumpOffset:
		// target is not known statically

	default:
		dis.addAddressToParse(next)
	}
}

// addBranchDestination marks a branch target and queues it for parsing.
// It returns whether the target is inside the program.
func (dis *Disasm) addBranchDestination(address uint16) bool {
	if !dis.inProgram(address) {
		return false
	}
	dis.branchDestinations.Add(address)
	dis.addAddressToParse(address)
	return true
}

func (dis *Disasm) addAddressToParse(address uint16) {
	if !dis.inProgram(address) || dis.offsetsToParseAdded.Contains(address) {
		return
	}
	dis.offsetsToParseAdded.Add(address)
	dis.offsetsToParse = append(dis.offsetsToParse, address)
}

func (dis *Disasm) inProgram(address uint16) bool {
	return address >= dis.origin && int(address) < dis.end
}

func (dis *Disasm) readWord(address uint16) (uint16, bool) {
	index := int(address - dis.origin)
	if int(address)+1 >= dis.end {
		return 0, false
	}
	return uint16(dis.memory[index])<<8 | uint16(dis.memory[index+1]), true
}

// Disassemble is a convenience function that disassembles a program in one call.
func Disassemble(logger *log.Logger, program []byte, origin uint16) ([]Line, error) {
	dis, err := New(logger, program, origin)
	if err != nil {
		return nil, err
	}
	return dis.Process(), nil
}

// InstructionAt decodes the instruction at the given address of a memory
// image and returns its assembler representation.
func InstructionAt(memory []byte, address uint16) (string, error) {
	if int(address)+1 >= len(memory) {
		return "", fmt.Errorf("%w at 0x%03X", ErrNoInstruction, address)
	}
	raw := uint16(memory[address])<<8 | uint16(memory[address+1])
	return Format(opcode.Decode(raw)), nil
}
