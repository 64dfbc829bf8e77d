package voice

import "fmt"

// Handle names a reader within a Registry.
type Handle int

// Registry is an arena of reader voices. Dependent voices look their
// reference up by Handle once, at setup. The registry must outlive them.
type Registry struct {
	readers []*Reader
}

func (r *Registry) add(rd *Reader) Handle {
	r.readers = append(r.readers, rd)
	return Handle(len(r.readers) - 1)
}

// Reader returns the reader registered under h.
func (r *Registry) Reader(h Handle) (*Reader, error) {
	if h < 0 || int(h) >= len(r.readers) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownReader, h)
	}

	return r.readers[h], nil
}

// Len returns the number of registered readers.
func (r *Registry) Len() int { return len(r.readers) }
