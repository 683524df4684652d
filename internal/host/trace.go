package host

import (
	"errors"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/opcode"
	"github.com/retroenv/retrogolib/log"
)

// TraceHook returns a CPU hook that logs every executed instruction at
// debug level.
func TraceHook(logger *log.Logger) cpu.Hook {
	return func(pc uint16, ins opcode.Instruction, result cpu.Result) {
		msg := "Executed"
		if ins.Op == opcode.NoOp {
			msg = "Unknown instruction"
		}
		logger.Debug(msg,
			log.Hex("pc", pc),
			log.Hex("opcode", ins.Raw),
			log.String("code", disasm.Format(ins)),
			log.Stringer("result", result))
	}
}

// LogExecutionError logs a fatal execution error with the program counter
// and the instruction that caused it. It returns false for other errors.
func LogExecutionError(logger *log.Logger, err error) bool {
	var execErr *cpu.ExecutionError
	if !errors.As(err, &execErr) {
		return false
	}

	logger.Error("Execution failed",
		log.Hex("pc", execErr.PC),
		log.Hex("opcode", execErr.Instruction.Raw),
		log.String("code", disasm.Format(execErr.Instruction)),
		log.Err(execErr.Err))
	return true
}
