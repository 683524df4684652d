// Package fileprocessor handles loading a program and running the selected
// operation on it.
package fileprocessor

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/app"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/debug"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/frontend/headless"
	"github.com/retroenv/retrochip8/internal/frontend/terminal"
	"github.com/retroenv/retrochip8/internal/frontend/window"
	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/script"
	"github.com/retroenv/retrogolib/log"
)

// streams are the standard streams used by the frontends.
type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

// ProcessFile handles the complete file processing workflow: it loads the
// program and either disassembles it or runs it in the selected frontend.
func ProcessFile(ctx context.Context, logger *log.Logger, opts options.Program, emulatorOptions options.Emulator) error {
	return processFile(ctx, logger, opts, emulatorOptions, streams{
		in:  os.Stdin,
		out: os.Stdout,
		err: os.Stderr,
	})
}

func processFile(ctx context.Context, logger *log.Logger, opts options.Program,
	emulatorOptions options.Emulator, std streams) error {

	rom, err := loader.New(emulatorOptions.LoadAddress).Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}
	app.PrintInfo(logger, opts, emulatorOptions, rom)

	if opts.Disassemble {
		return disassemble(logger, rom, emulatorOptions.LoadAddress, std.out)
	}

	runLogger := config.CreateFrontendLogger(opts)
	runner, err := setupRunner(runLogger, opts, emulatorOptions, rom, std)
	if err != nil {
		return err
	}

	if opts.Script != "" {
		s := script.New(runLogger, runner)
		defer s.Close()
		if err := s.LoadFile(opts.Script); err != nil {
			return fmt.Errorf("loading script: %w", err)
		}
		runner.AddFrameHook(s.FrameHook())
	}

	return runFrontend(ctx, runLogger, opts, runner, rom, std)
}

func disassemble(logger *log.Logger, rom *loader.ROM, origin uint16, w io.Writer) error {
	lines, err := disasm.Disassemble(logger, rom.Data, origin)
	if err != nil {
		return fmt.Errorf("disassembling: %w", err)
	}
	if err := disasm.Write(w, lines); err != nil {
		return fmt.Errorf("writing disassembly: %w", err)
	}
	return nil
}

func setupRunner(logger *log.Logger, opts options.Program, emulatorOptions options.Emulator,
	rom *loader.ROM, std streams) (*host.Runner, error) {

	var cpuOptions []cpu.Option
	if emulatorOptions.Trace {
		cpuOptions = append(cpuOptions, cpu.WithHook(host.TraceHook(logger)))
	}

	c, err := config.CreateEmulator(emulatorOptions, rom.Data, cpuOptions...)
	if err != nil {
		return nil, fmt.Errorf("creating emulator: %w", err)
	}

	// the terminal frontend draws to stdout, dumps would corrupt the display
	dumpOutput := std.err
	if opts.Frontend == options.FrontendTerminal {
		dumpOutput = nil
	}
	monitor := debug.NewMonitor(logger, dumpOutput, emulatorOptions.Breakpoints)

	return host.New(logger, c, emulatorOptions, monitor), nil
}

func runFrontend(ctx context.Context, logger *log.Logger, opts options.Program,
	runner *host.Runner, rom *loader.ROM, std streams) error {

	km, err := keymap.New(opts.Keymap)
	if err != nil {
		return fmt.Errorf("creating keymap: %w", err)
	}

	switch opts.Frontend {
	case options.FrontendHeadless:
		out := std.out
		if opts.Quiet {
			out = nil
		}
		return headless.New(logger, runner, out, opts.Expect).Run(ctx)

	case options.FrontendTerminal:
		return terminal.New(logger, runner, km, std.in, std.out).Run(ctx)

	default:
		return window.New(logger, runner, opts, km, app.WindowTitle(rom)).Run()
	}
}
