// Package detector handles detection of the program variant.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/retroenv/retrochip8/internal/machine"
)

// LoadAddress determines the address a program is loaded to. The ETI 660
// load address is used when it is forced or when the file extension marks
// an ETI 660 program, all other programs start at the CHIP-8 program start.
func LoadAddress(filename string, forceETI bool) uint16 {
	if forceETI {
		return machine.ETIProgramStart
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".eti", ".c8e":
		return machine.ETIProgramStart
	default:
		// .ch8, .c8, .rom and unknown extensions
		return machine.ProgramStart
	}
}
