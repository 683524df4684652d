package terminal

import (
	"strings"

	"github.com/retroenv/retrochip8/internal/display"
)

// ANSI escape sequences.
const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	clearLine   = "\x1b[K"
)

// Rows is the number of terminal rows used to draw the display, every row
// shows two pixel rows using half block characters.
const Rows = display.Height / 2

// render returns the display as half block characters, with a status line
// below. Lines are terminated by CR LF as the terminal is in raw mode.
func render(buf *display.Buffer, status string) string {
	var sb strings.Builder
	sb.Grow((display.Width*3 + 2) * (Rows + 1))
	sb.WriteString(cursorHome)

	for row := range Rows {
		y := row * 2
		for x := range display.Width {
			top := buf.Pixel(x, y)
			bottom := buf.Pixel(x, y+1)
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}

	sb.WriteString(status)
	sb.WriteString(clearLine)
	return sb.String()
}
