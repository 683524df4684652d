// Package options contains the program options.
package options

import (
	"github.com/retroenv/retrochip8/internal/cpu"
)

// Frontends that can present the emulator.
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendHeadless = "headless"
)

// Keypad layouts that map host keys to the CHIP-8 keys.
const (
	KeymapHex    = "hex"
	KeymapQwerty = "qwerty"
)

// Default option values.
const (
	DefaultScale          = 10
	DefaultHeadlessFrames = 600
	DefaultTurboFactor    = 8
)

// Parameters contains file path options.
type Parameters struct {
	Input       string `arg:"positional" usage:"CHIP-8 ROM file to run"`
	Script      string `flag:"script" usage:"Lua script to automate the emulator"`
	Expect      string `flag:"expect" usage:"expected display dump to verify against after the last frame (headless)"`
	Breakpoints string `flag:"break" usage:"comma separated list of breakpoint addresses, e.g. 0x2A0,0x300"`
}

// Flags contains behavior options.
type Flags struct {
	Frontend    string `flag:"f" usage:"frontend: window, terminal, headless" default:"window"`
	Keymap      string `flag:"keys" usage:"keypad layout: hex, qwerty" default:"hex"`
	ClockSpeed  int    `flag:"clock" usage:"instructions per second" default:"540"`
	Scale       int    `flag:"scale" usage:"window pixel scale factor" default:"10"`
	Frames      int    `flag:"frames" usage:"number of frames to run, 0 runs until quit"`
	Seed        uint64 `flag:"seed" usage:"seed of the random number generator, 0 for a random seed"`
	ETI         bool   `flag:"eti" usage:"load the program at 0x600 for ETI 660 programs"`
	Disassemble bool   `flag:"disasm" usage:"print a disassembly of the program and exit"`
	Trace       bool   `flag:"trace" usage:"log every executed instruction"`
	Mute        bool   `flag:"mute" usage:"disable sound output"`
	Debug       bool   `flag:"debug" usage:"enable debug logging"`
	Quiet       bool   `flag:"q" usage:"quiet mode"`
}

// QuirkFlags contains options selecting interpreter specific behavior.
type QuirkFlags struct {
	ShiftVx   bool `flag:"shift-vx" usage:"SHR and SHL shift Vx instead of Vy"`
	KeepIndex bool `flag:"keep-index" usage:"LD [I], Vx and LD Vx, [I] do not increment I"`
}

// Program options of the emulator.
type Program struct {
	Parameters
	Flags
	QuirkFlags
}

// Emulator defines options to control the emulation.
type Emulator struct {
	ClockSpeed  int        // instructions per second
	LoadAddress uint16     // address the program is loaded to and started at
	Quirks      cpu.Quirks // interpreter quirks
	Seed        uint64     // random number generator seed, 0 for a random seed
	Breakpoints []uint16

	Frames      int // frames to run, 0 runs until quit
	TurboFactor int // cycle multiplier while turbo mode is active
	Trace       bool
}

// CPUOptions returns the CPU options that implement the emulator options.
func (e Emulator) CPUOptions() []cpu.Option {
	opts := []cpu.Option{cpu.WithQuirks(e.Quirks)}
	if e.Seed != 0 {
		opts = append(opts, cpu.WithSeed(e.Seed))
	}
	return opts
}
