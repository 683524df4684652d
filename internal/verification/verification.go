// Package verification verifies that the emulated display matches an
// expected display dump.
package verification

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/display"
	"github.com/retroenv/retrogolib/log"
)

const maxLoggedMismatches = 10

// ErrMismatch is returned when the display does not match the expected dump.
var ErrMismatch = errors.New("display mismatch")

// Pixels is a decoded display dump, indexed by row and column.
type Pixels [display.Height][display.Width]bool

// VerifyFile verifies the display against the dump stored in the given file.
func VerifyFile(logger *log.Logger, path string, buf *display.Buffer) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening file '%s': %w", path, err)
	}
	defer func() {
		_ = file.Close()
	}()

	expected, err := Parse(file)
	if err != nil {
		return fmt.Errorf("parsing display dump '%s': %w", path, err)
	}
	return Verify(logger, expected, buf)
}

// Verify compares the display with the expected pixels.
func Verify(logger *log.Logger, expected Pixels, buf *display.Buffer) error {
	var diffs uint64
	firstX, firstY := -1, -1

	for y := range display.Height {
		for x := range display.Width {
			lit := buf.Pixel(x, y)
			if lit == expected[y][x] {
				continue
			}

			diffs++
			if firstX == -1 {
				firstX, firstY = x, y
			}
			if diffs <= maxLoggedMismatches {
				logger.Error("Pixel mismatch",
					log.Int("x", x),
					log.Int("y", y),
					log.String("expected", pixelState(expected[y][x])),
					log.String("got", pixelState(lit)))
			}
		}
	}
	if diffs == 0 {
		return nil
	}
	return fmt.Errorf("%w: %d pixel mismatches, first at x=%d y=%d", ErrMismatch, diffs, firstX, firstY)
}

// Parse reads a display dump with one line per pixel row, '#' marks a lit
// and '.' or a space an unlit pixel. Trailing whitespace is ignored.
func Parse(reader io.Reader) (Pixels, error) {
	var pixels Pixels

	scanner := bufio.NewScanner(reader)
	y := 0
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" && y == display.Height {
			continue
		}
		if y >= display.Height {
			return pixels, fmt.Errorf("more than %d rows", display.Height)
		}
		if len(line) > display.Width {
			return pixels, fmt.Errorf("row %d has %d columns, expected %d", y, len(line), display.Width)
		}

		for x, c := range []byte(line) {
			switch c {
			case '#':
				pixels[y][x] = true
			case '.', ' ':
			default:
				return pixels, fmt.Errorf("invalid character '%c' in row %d", c, y)
			}
		}
		y++
	}
	if err := scanner.Err(); err != nil {
		return pixels, fmt.Errorf("reading display dump: %w", err)
	}
	if y != display.Height {
		return pixels, fmt.Errorf("found %d rows, expected %d", y, display.Height)
	}
	return pixels, nil
}

func pixelState(lit bool) string {
	if lit {
		return "lit"
	}
	return "unlit"
}
