package window

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/machine"
)

var hostKeys = map[rune][]ebiten.Key{
	'0': {ebiten.KeyDigit0, ebiten.KeyNumpad0},
	'1': {ebiten.KeyDigit1, ebiten.KeyNumpad1},
	'2': {ebiten.KeyDigit2, ebiten.KeyNumpad2},
	'3': {ebiten.KeyDigit3, ebiten.KeyNumpad3},
	'4': {ebiten.KeyDigit4, ebiten.KeyNumpad4},
	'5': {ebiten.KeyDigit5, ebiten.KeyNumpad5},
	'6': {ebiten.KeyDigit6, ebiten.KeyNumpad6},
	'7': {ebiten.KeyDigit7, ebiten.KeyNumpad7},
	'8': {ebiten.KeyDigit8, ebiten.KeyNumpad8},
	'9': {ebiten.KeyDigit9, ebiten.KeyNumpad9},
	'a': {ebiten.KeyA},
	'b': {ebiten.KeyB},
	'c': {ebiten.KeyC},
	'd': {ebiten.KeyD},
	'e': {ebiten.KeyE},
	'f': {ebiten.KeyF},
	'q': {ebiten.KeyQ},
	'r': {ebiten.KeyR},
	's': {ebiten.KeyS},
	'v': {ebiten.KeyV},
	'w': {ebiten.KeyW},
	'x': {ebiten.KeyX},
	'z': {ebiten.KeyZ},
}

// keyBinding binds host keys to a keypad key.
type keyBinding struct {
	key   int
	hosts []ebiten.Key
}

func bindKeys(km keymap.Keymap) []keyBinding {
	bindings := make([]keyBinding, 0, machine.KeyCount)
	for key := range machine.KeyCount {
		char, ok := km.Char(key)
		if !ok {
			continue
		}
		if hosts, ok := hostKeys[char]; ok {
			bindings = append(bindings, keyBinding{key: key, hosts: hosts})
		}
	}
	return bindings
}

// updateKeys sets the keypad state from the host keys. Only state changes
// are forwarded so that holding a key latches it once.
func updateKeys(bindings []keyBinding, pressed func(ebiten.Key) bool, kb *machine.Keyboard) {
	for _, binding := range bindings {
		down := false
		for _, host := range binding.hosts {
			if pressed(host) {
				down = true
				break
			}
		}
		if down != kb.IsPressed(uint8(binding.key)) {
			kb.SetKey(binding.key, down)
		}
	}
}
