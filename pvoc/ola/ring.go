// Package ola implements the circular accumulation buffer that stitches
// windowed synthesis segments into a continuous block stream.
package ola

import (
	"fmt"

	"github.com/cwbudde/algo-vecmath"
)

// Ring is a fixed-capacity circular accumulator.
type Ring struct {
	buffer []float64
}

// NewRing returns a zeroed ring of the given capacity.
func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ola: ring capacity must be > 0: %d", capacity)
	}

	return &Ring{buffer: make([]float64, capacity)}, nil
}

// Len returns the ring capacity.
func (r *Ring) Len() int { return len(r.buffer) }

// Accumulate adds segment into the ring starting at pos, wrapping at the end.
// len(segment) must not exceed the capacity.
func (r *Ring) Accumulate(segment []float64, pos int) {
	first, rest := r.split(pos, len(segment))
	vecmath.AddBlockInPlace(r.buffer[pos:pos+first], segment[:first])

	if rest > 0 {
		vecmath.AddBlockInPlace(r.buffer[:rest], segment[first:])
	}
}

// Emit copies len(dst) samples starting at pos into dst and zeroes them in
// the ring so the region can accumulate again.
func (r *Ring) Emit(dst []float64, pos int) {
	first, rest := r.split(pos, len(dst))

	copy(dst, r.buffer[pos:pos+first])
	clear(r.buffer[pos : pos+first])

	if rest > 0 {
		copy(dst[first:], r.buffer[:rest])
		clear(r.buffer[:rest])
	}
}

// Advance returns pos moved forward by n, modulo the capacity.
func (r *Ring) Advance(pos, n int) int {
	return (pos + n) % len(r.buffer)
}

// Reset zeroes the ring.
func (r *Ring) Reset() {
	clear(r.buffer)
}

func (r *Ring) split(pos, n int) (first, rest int) {
	size := len(r.buffer)
	if n > size {
		panic(fmt.Sprintf("ola: span %d exceeds ring capacity %d", n, size))
	}

	first = min(n, size-pos)

	return first, n - first
}
