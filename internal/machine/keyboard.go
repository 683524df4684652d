package machine

// KeyCount is the number of keys of the hexadecimal keypad.
const KeyCount = 16

// NoKey is the latch value meaning that no key was pressed since the last poll.
const NoKey = -1

// Keyboard holds the state of the 16 key hexadecimal keypad.
type Keyboard struct {
	pressed [KeyCount]bool
	latched int // latched key + 1, 0 if none
}

// SetKey updates the state of a key. Pressing a key also latches it as the
// most recently pressed key. Keys outside 0x0-0xF are ignored.
func (k *Keyboard) SetKey(key int, pressed bool) {
	if key < 0 || key >= KeyCount {
		return
	}
	k.pressed[key] = pressed
	if pressed {
		k.latched = key + 1
	}
}

// IsPressed returns whether the key is currently held down. Only the low
// nibble of the key is used.
func (k *Keyboard) IsPressed(key uint8) bool {
	return k.pressed[key&0x0F]
}

// LastKey returns the latched key or NoKey.
func (k *Keyboard) LastKey() int {
	return k.latched - 1
}

// PollKey returns the latched key and clears the latch.
// It returns false if no key was pressed since the last poll.
func (k *Keyboard) PollKey() (uint8, bool) {
	if k.latched == 0 {
		return 0, false
	}
	key := uint8(k.latched - 1)
	k.latched = 0
	return key, true
}

// ResetLatch forgets the latched key.
func (k *Keyboard) ResetLatch() {
	k.latched = 0
}

// ReleaseAll releases all keys and resets the latch.
func (k *Keyboard) ReleaseAll() {
	k.pressed = [KeyCount]bool{}
	k.latched = 0
}

// Pressed returns a copy of all key states.
func (k *Keyboard) Pressed() [KeyCount]bool {
	return k.pressed
}
