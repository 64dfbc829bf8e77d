// Package phase accumulates per-bin phase from frequency data across control
// blocks.
package phase

import "math"

const twoPi = 2 * math.Pi

// Tracker owns one voice's unwrapped phase accumulators.
//
// Buffers passed to Advance hold interleaved (amplitude, frequency) pairs, one
// pair per bin. Advance rewrites every frequency slot with the accumulated,
// wrapped phase so that the buffer is in polar form afterwards.
//
// Tracker is not safe for concurrent use.
type Tracker struct {
	phase     []float64
	lastPitch float64
}

// NewTracker returns a tracker for bins phase accumulators, all zero.
func NewTracker(bins int) *Tracker {
	return &Tracker{
		phase:     make([]float64, bins),
		lastPitch: 1,
	}
}

// Bins returns the number of accumulators.
func (t *Tracker) Bins() int { return len(t.phase) }

// LastPitch returns the pitch factor seen by the most recent Advance (1 before
// the first one).
func (t *Tracker) LastPitch() float64 { return t.lastPitch }

// Phase returns the accumulated phases. Callers must not modify them.
func (t *Tracker) Phase() []float64 { return t.phase }

// Reset zeroes the accumulators and the pitch history.
func (t *Tracker) Reset() {
	for i := range t.phase {
		t.phase[i] = 0
	}
	t.lastPitch = 1
}

// Advance converts the frequency slots of buf into phase increments for one
// block of blockSize samples played at pitch, accumulates them and wraps the
// result into (-π, π].
//
// sampleRate is the analysis sample rate of the frames. When pitch differs from the pitch of
// the previous block, every bin receives an extra half-bin correction of
// 0.5*(pitch/lastPitch-1) cycles per bin.
func (t *Tracker) Advance(buf []float64, pitch float64, blockSize int, sampleRate float64) {
	bins := len(t.phase)
	fftSize := float64(2 * (bins - 1))

	incr := pitch * float64(blockSize)
	fixUp := 0.5 * (pitch/t.lastPitch - 1)

	twoPiOnSr := twoPi / sampleRate
	binHz := sampleRate / fftSize
	expectedIncr := twoPi * (incr/fftSize + fixUp)

	expected := 0.0
	for k := range bins {
		dev := buf[2*k+1] - float64(k)*binHz
		p := t.phase[k] + dev*incr*twoPiOnSr + expected

		p = Wrap(p)
		t.phase[k] = p
		buf[2*k+1] = p

		expected = math.Mod(expected+expectedIncr, twoPi)
	}

	t.lastPitch = pitch
}

// Wrap maps p into (-π, π].
func Wrap(p float64) float64 {
	if p > -math.Pi && p <= math.Pi {
		return p
	}

	p = math.Mod(p+math.Pi, twoPi)
	if p <= 0 {
		p += twoPi
	}

	return p - math.Pi
}
