// Package config handles application configuration and setup
package config

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/cpu"
	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// CreateLogger creates a logger with appropriate settings
func CreateLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	} else if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

// CreateFrontendLogger creates the logger used while a frontend is running.
// The terminal frontend draws to the same terminal that log messages are
// written to, only errors are logged unless debugging is enabled.
func CreateFrontendLogger(opts options.Program) *log.Logger {
	quiet := opts.Quiet || opts.Frontend == options.FrontendTerminal
	return CreateLogger(opts.Debug, quiet)
}

// CreateEmulator creates the machine state with the program loaded and a CPU
// configured by the emulator options. Additional CPU options are applied
// after the ones derived from the emulator options.
func CreateEmulator(opts options.Emulator, program []byte, cpuOptions ...cpu.Option) (*cpu.CPU, error) {
	m := machine.New(opts.ClockSpeed)

	address := opts.LoadAddress
	if address == 0 {
		address = machine.ProgramStart
	}
	if err := m.LoadProgramAt(address, program); err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	cpuOpts := append(opts.CPUOptions(), cpuOptions...)
	return cpu.New(m, cpuOpts...), nil
}
