// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/debug"
	"github.com/retroenv/retrochip8/internal/detector"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
)

const maxScale = 40

// ParseFlags parses command line flags and returns program and emulator options
func ParseFlags() (options.Program, options.Emulator, error) {
	return parseArgs(os.Args)
}

func parseArgs(osArgs []string) (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(osArgs[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(osArgs[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, options.Emulator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, options.Emulator{}, err
	}
	opts.Input = args[0]

	if err := normalizeOptions(&opts); err != nil {
		return opts, options.Emulator{}, err
	}

	emulatorOptions, err := createEmulatorOptions(opts)
	if err != nil {
		return opts, options.Emulator{}, err
	}
	return opts, emulatorOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: retrochip8 [options] <ROM file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Frontend = strings.ToLower(opts.Frontend)
	if err := validateChoice("frontend", opts.Frontend,
		options.FrontendWindow, options.FrontendTerminal, options.FrontendHeadless); err != nil {
		return err
	}

	opts.Keymap = strings.ToLower(opts.Keymap)
	if err := validateChoice("keypad layout", opts.Keymap, options.KeymapHex, options.KeymapQwerty); err != nil {
		return err
	}

	if opts.ClockSpeed < machine.TimerFrequency {
		return fmt.Errorf("clock speed %d is below the timer frequency of %d Hz", opts.ClockSpeed, machine.TimerFrequency)
	}
	if opts.Scale < 1 || opts.Scale > maxScale {
		return fmt.Errorf("scale %d out of range 1-%d", opts.Scale, maxScale)
	}
	if opts.Frames < 0 {
		return fmt.Errorf("invalid frame count %d", opts.Frames)
	}

	if opts.Frontend == options.FrontendHeadless && opts.Frames == 0 {
		opts.Frames = options.DefaultHeadlessFrames
	}
	if opts.Expect != "" && opts.Frontend != options.FrontendHeadless {
		return fmt.Errorf("display verification is only supported by the %s frontend", options.FrontendHeadless)
	}
	return nil
}

func validateChoice(name, value string, valid ...string) error {
	for _, v := range valid {
		if value == v {
			return nil
		}
	}
	return fmt.Errorf("unsupported %s: %s. Valid options: %s", name, value, strings.Join(valid, ", "))
}

// createEmulatorOptions creates emulator options based on program options
func createEmulatorOptions(opts options.Program) (options.Emulator, error) {
	breakpoints, err := debug.ParseBreakpoints(opts.Breakpoints)
	if err != nil {
		return options.Emulator{}, fmt.Errorf("parsing breakpoints: %w", err)
	}

	emulatorOptions := options.Emulator{
		ClockSpeed:  opts.ClockSpeed,
		LoadAddress: detector.LoadAddress(opts.Input, opts.ETI),
		Quirks: cpu.Quirks{
			ShiftSourceVx:            opts.ShiftVx,
			KeepIndexOnBlockTransfer: opts.KeepIndex,
		},
		Seed:        opts.Seed,
		Breakpoints: breakpoints,
		Frames:      opts.Frames,
		TurboFactor: options.DefaultTurboFactor,
		Trace:       opts.Trace,
	}
	return emulatorOptions, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Script, "script", "", "Lua script to automate the emulator")
	flags.StringVar(&opts.Expect, "expect", "", "expected display dump to verify against after the last frame (headless)")
	flags.StringVar(&opts.Breakpoints, "break", "", "comma separated list of breakpoint addresses, for example 0x2A0,0x300")

	flags.StringVar(&opts.Frontend, "f", options.FrontendWindow, "frontend to use (window/terminal/headless)")
	flags.StringVar(&opts.Keymap, "keys", options.KeymapHex, "keypad layout (hex/qwerty)")
	flags.IntVar(&opts.ClockSpeed, "clock", machine.DefaultClockSpeed, "instructions executed per second")
	flags.IntVar(&opts.Scale, "scale", options.DefaultScale, "window pixel scale factor")
	flags.IntVar(&opts.Frames, "frames", 0, "number of frames to run, 0 runs until quit")
	flags.Uint64Var(&opts.Seed, "seed", 0, "seed of the random number generator, 0 for a random seed")
	flags.BoolVar(&opts.ETI, "eti", false, "load the program at 0x600 for ETI 660 programs, implied by .eti and .c8e files")
	flags.BoolVar(&opts.Disassemble, "disasm", false, "print a disassembly of the program and exit")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.Mute, "mute", false, "disable sound output")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")

	flags.BoolVar(&opts.ShiftVx, "shift-vx", false, "SHR and SHL shift Vx instead of Vy")
	flags.BoolVar(&opts.KeepIndex, "keep-index", false, "LD [I], Vx and LD Vx, [I] do not increment I")
}
