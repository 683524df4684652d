// Package app provides the application helpers for printing the banner and
// program information.
package app

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	archsys "github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// Name is the application name.
const Name = "retrochip8"

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}

	logger.Info(Name, log.String("version", buildinfo.Version(version, commit, date)))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// PrintInfo prints the information about the loaded program.
func PrintInfo(logger *log.Logger, opts options.Program, emulator options.Emulator, rom *loader.ROM) {
	if opts.Quiet {
		return
	}

	logger.Info("Loaded program",
		log.String("system", string(archsys.CHIP8System)),
		log.String("file", opts.Input),
		log.Int("size", len(rom.Data)),
		log.Hex("crc32", rom.Checksum),
		log.Hex("address", emulator.LoadAddress),
	)
	if opts.Disassemble {
		return
	}

	logger.Info("Emulation settings",
		log.String("frontend", opts.Frontend),
		log.Int("clock", emulator.ClockSpeed),
		log.String("quirks", Quirks(opts)),
	)
}

// Quirks returns a description of the enabled interpreter quirks.
func Quirks(opts options.Program) string {
	var quirks []string
	if opts.ShiftVx {
		quirks = append(quirks, "shift-vx")
	}
	if opts.KeepIndex {
		quirks = append(quirks, "keep-index")
	}
	if len(quirks) == 0 {
		return "none"
	}
	return strings.Join(quirks, ",")
}

// WindowTitle returns the title of the emulator window.
func WindowTitle(rom *loader.ROM) string {
	if rom.Name == "" {
		return Name
	}
	return fmt.Sprintf("%s - %s", Name, rom.Name)
}
