// Package keymap maps host keyboard characters to the keys of the CHIP-8
// hexadecimal keypad.
package keymap

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/retroenv/retrochip8/internal/options"
)

// Keymap maps lower case host characters to keypad keys.
type Keymap map[rune]int

// The hex layout maps the characters of the key values directly.
var hexLayout = "0123456789abcdef"

// The qwerty layout maps the left block of a QWERTY keyboard to the
// COSMAC VIP keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var qwertyLayout = [...]struct {
	char rune
	key  int
}{
	{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xC},
	{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xD},
	{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xE},
	{'z', 0xA}, {'x', 0x0}, {'c', 0xB}, {'v', 0xF},
}

// New returns the keymap of the given layout name.
func New(name string) (Keymap, error) {
	m := Keymap{}

	switch strings.ToLower(name) {
	case options.KeymapHex, "":
		for key, char := range hexLayout {
			m[char] = key
		}
	case options.KeymapQwerty:
		for _, entry := range qwertyLayout {
			m[entry.char] = entry.key
		}
	default:
		return nil, fmt.Errorf("unsupported keymap '%s'", name)
	}
	return m, nil
}

// Key returns the keypad key of the host character, ignoring the case.
func (m Keymap) Key(char rune) (int, bool) {
	key, ok := m[unicode.ToLower(char)]
	return key, ok
}

// Char returns the host character of a keypad key.
func (m Keymap) Char(key int) (rune, bool) {
	for char, k := range m {
		if k == key {
			return char, true
		}
	}
	return 0, false
}
