// Package opcode decodes raw 16 bit CHIP-8 instruction words into operations.
package opcode

// Operation identifies a decoded CHIP-8 instruction.
type Operation uint8

// All operations of the CHIP-8 instruction set. NoOp is returned for
// encodings that do not match any instruction.
const (
	NoOp                  Operation = iota
	Sys                             // 0nnn - SYS addr
	ClearScreen                     // 00E0 - CLS
	Return                          // 00EE - RET
	Jump                            // 1nnn - JP addr
	CallSubroutine                  // 2nnn - CALL addr
	SkipIfEqualByte                 // 3xkk - SE Vx, byte
	SkipIfNotEqualByte              // 4xkk - SNE Vx, byte
	SkipIfEqualRegister             // 5xy0 - SE Vx, Vy
	LoadByte                        // 6xkk - LD Vx, byte
	AddByte                         // 7xkk - ADD Vx, byte
	LoadRegister                    // 8xy0 - LD Vx, Vy
	Or                              // 8xy1 - OR Vx, Vy
	And                             // 8xy2 - AND Vx, Vy
	Xor                             // 8xy3 - XOR Vx, Vy
	AddRegister                     // 8xy4 - ADD Vx, Vy
	SubRegister                     // 8xy5 - SUB Vx, Vy
	ShiftRight                      // 8xy6 - SHR Vx {, Vy}
	SubNegated                      // 8xy7 - SUBN Vx, Vy
	ShiftLeft                       // 8xyE - SHL Vx {, Vy}
	SkipIfNotEqualRegister          // 9xy0 - SNE Vx, Vy
	LoadIndex                       // Annn - LD I, addr
	JumpOffset                      // Bnnn - JP V0, addr
	Random                          // Cxkk - RND Vx, byte
	Draw                            // Dxyn - DRW Vx, Vy, nibble
	SkipIfKeyPressed                // Ex9E - SKP Vx
	SkipIfKeyNotPressed             // ExA1 - SKNP Vx
	LoadDelayTimer                  // Fx07 - LD Vx, DT
	WaitKey                         // Fx0A - LD Vx, K
	SetDelayTimer                   // Fx15 - LD DT, Vx
	SetSoundTimer                   // Fx18 - LD ST, Vx
	AddIndex                        // Fx1E - ADD I, Vx
	LoadFont                        // Fx29 - LD F, Vx
	StoreBCD                        // Fx33 - LD B, Vx
	StoreRegisters                  // Fx55 - LD [I], Vx
	LoadRegisters                   // Fx65 - LD Vx, [I]

	operationCount
)

var operationNames = [operationCount]string{
	NoOp:                   "NoOp",
	Sys:                    "Sys",
	ClearScreen:            "ClearScreen",
	Return:                 "Return",
	Jump:                   "Jump",
	CallSubroutine:         "CallSubroutine",
	SkipIfEqualByte:        "SkipIfEqualByte",
	SkipIfNotEqualByte:     "SkipIfNotEqualByte",
	SkipIfEqualRegister:    "SkipIfEqualRegister",
	LoadByte:               "LoadByte",
	AddByte:                "AddByte",
	LoadRegister:           "LoadRegister",
	Or:                     "Or",
	And:                    "And",
	Xor:                    "Xor",
	AddRegister:            "AddRegister",
	SubRegister:            "SubRegister",
	ShiftRight:             "ShiftRight",
	SubNegated:             "SubNegated",
	ShiftLeft:              "ShiftLeft",
	SkipIfNotEqualRegister: "SkipIfNotEqualRegister",
	LoadIndex:              "LoadIndex",
	JumpOffset:             "JumpOffset",
	Random:                 "Random",
	Draw:                   "Draw",
	SkipIfKeyPressed:       "SkipIfKeyPressed",
	SkipIfKeyNotPressed:    "SkipIfKeyNotPressed",
	LoadDelayTimer:         "LoadDelayTimer",
	WaitKey:                "WaitKey",
	SetDelayTimer:          "SetDelayTimer",
	SetSoundTimer:          "SetSoundTimer",
	AddIndex:               "AddIndex",
	LoadFont:               "LoadFont",
	StoreBCD:               "StoreBCD",
	StoreRegisters:         "StoreRegisters",
	LoadRegisters:          "LoadRegisters",
}

// String returns the name of the operation.
func (o Operation) String() string {
	if o >= operationCount {
		return "Operation(?)"
	}
	return operationNames[o]
}

// Valid returns whether the operation is part of the closed operation set.
func (o Operation) Valid() bool {
	return o < operationCount
}

// Operations returns all operations, including NoOp.
func Operations() []Operation {
	ops := make([]Operation, 0, operationCount)
	for o := range operationCount {
		ops = append(ops, o)
	}
	return ops
}

// IsSkip returns whether the operation conditionally skips the next instruction.
func (o Operation) IsSkip() bool {
	switch o {
	case SkipIfEqualByte, SkipIfNotEqualByte, SkipIfEqualRegister, SkipIfNotEqualRegister,
		SkipIfKeyPressed, SkipIfKeyNotPressed:
		return true
	default:
		return false
	}
}

// IsControlFlow returns whether the operation sets the program counter absolutely.
func (o Operation) IsControlFlow() bool {
	switch o {
	case Jump, JumpOffset, CallSubroutine, Return:
		return true
	default:
		return false
	}
}
