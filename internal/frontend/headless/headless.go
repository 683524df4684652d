// Package headless runs the emulation without any user interface, for
// automated tests of programs.
package headless

import (
	"context"
	"fmt"
	"io"

	"github.com/retroenv/retrochip8/internal/host"
	"github.com/retroenv/retrochip8/internal/verification"
	"github.com/retroenv/retrogolib/log"
)

// Headless runs a fixed number of frames as fast as possible.
type Headless struct {
	logger *log.Logger
	runner *host.Runner
	out    io.Writer
	expect string
}

// New returns a headless frontend. The final display is written to out if it
// is not nil, a non empty expect path verifies the display against a dump.
func New(logger *log.Logger, runner *host.Runner, out io.Writer, expect string) *Headless {
	return &Headless{
		logger: logger,
		runner: runner,
		out:    out,
		expect: expect,
	}
}

// Run emulates the frames and verifies the final display.
func (h *Headless) Run(ctx context.Context) error {
	if err := h.runner.Run(ctx); err != nil {
		return err
	}

	m := h.runner.Machine()
	h.logger.Info("Emulation finished",
		log.Int("frames", h.runner.Frame()),
		log.Hex("pc", m.PC),
		log.Int("lit_pixels", m.Display.Lit()))

	if h.out != nil {
		if _, err := io.WriteString(h.out, m.Display.String()); err != nil {
			return fmt.Errorf("writing display: %w", err)
		}
	}

	if h.expect == "" {
		return nil
	}
	if err := verification.VerifyFile(h.logger, h.expect, m.Display); err != nil {
		return fmt.Errorf("verifying display: %w", err)
	}
	h.logger.Info("Display matches expected output", log.String("file", h.expect))
	return nil
}
