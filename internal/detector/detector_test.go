package detector

import (
	"testing"

	"github.com/retroenv/retrochip8/internal/machine"
	"github.com/retroenv/retrogolib/assert"
)

func TestLoadAddress(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		forceETI bool
		expected uint16
	}{
		{"ch8 extension", "pong.ch8", false, machine.ProgramStart},
		{"rom extension", "PONG.ROM", false, machine.ProgramStart},
		{"unknown extension", "game", false, machine.ProgramStart},
		{"eti extension", "game.ETI", false, machine.ETIProgramStart},
		{"c8e extension", "dir/game.c8e", false, machine.ETIProgramStart},
		{"forced", "pong.ch8", true, machine.ETIProgramStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, LoadAddress(tt.filename, tt.forceETI))
		})
	}
}
