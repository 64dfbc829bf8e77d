package ola

import "fmt"

// Writer overlap-adds 2*block segments into a Ring and emits one block per
// call.
type Writer struct {
	ring  *Ring
	pos   int
	block int
}

// NewWriter returns a writer emitting block samples per call over a ring of
// the given capacity. The capacity must hold at least one segment.
func NewWriter(capacity, block int) (*Writer, error) {
	if block <= 0 {
		return nil, fmt.Errorf("ola: block size must be > 0: %d", block)
	}

	if capacity < 2*block {
		return nil, fmt.Errorf("ola: ring capacity %d below segment length %d", capacity, 2*block)
	}

	ring, err := NewRing(capacity)
	if err != nil {
		return nil, err
	}

	return &Writer{ring: ring, block: block}, nil
}

// Block returns the number of samples emitted per Write.
func (w *Writer) Block() int { return w.block }

// Pos returns the current ring write position.
func (w *Writer) Pos() int { return w.pos }

// Write accumulates segment, emits the finished block into out and advances
// the write position. len(out) must equal Block and len(segment) 2*Block.
func (w *Writer) Write(out, segment []float64) error {
	if len(out) != w.block {
		return fmt.Errorf("ola: output length %d, want %d", len(out), w.block)
	}

	if len(segment) != 2*w.block {
		return fmt.Errorf("ola: segment length %d, want %d", len(segment), 2*w.block)
	}

	w.ring.Accumulate(segment[:w.block], w.pos)
	w.ring.Emit(out, w.pos)
	w.pos = w.ring.Advance(w.pos, w.block)
	w.ring.Accumulate(segment[w.block:], w.pos)

	return nil
}

// Reset clears the ring and rewinds the write position.
func (w *Writer) Reset() {
	w.ring.Reset()
	w.pos = 0
}
