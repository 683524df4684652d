// Package audio produces the single tone that CHIP-8 programs control
// through the sound timer.
package audio

import (
	"encoding/binary"
	"math"
	"sync/atomic"
)

// Tone parameters.
const (
	SampleRate = 44100
	Frequency  = 440
	Volume     = 0.2

	bytesPerSample = 4 // mono float32
)

// Tone is an io.Reader that generates a square wave as little endian float32
// samples while it is active and silence otherwise.
type Tone struct {
	active atomic.Bool

	sampleRate int
	frequency  int
	phase      int // sample position within the current wave period
}

// NewTone returns a silent square wave generator.
func NewTone(sampleRate, frequency int) *Tone {
	return &Tone{
		sampleRate: sampleRate,
		frequency:  frequency,
	}
}

// SetActive turns the tone on or off. It is safe to call concurrently with Read.
func (t *Tone) SetActive(active bool) {
	t.active.Store(active)
}

// Active returns whether the tone is playing.
func (t *Tone) Active() bool {
	return t.active.Load()
}

// Read fills p with as many whole samples as fit.
func (t *Tone) Read(p []byte) (int, error) {
	samples := len(p) / bytesPerSample
	active := t.active.Load()
	period := max(t.sampleRate/t.frequency, 2)

	for i := range samples {
		var sample float32
		if active {
			if t.phase < period/2 {
				sample = Volume
			} else {
				sample = -Volume
			}
		}
		t.phase = (t.phase + 1) % period
		binary.LittleEndian.PutUint32(p[i*bytesPerSample:], math.Float32bits(sample))
	}
	return samples * bytesPerSample, nil
}
