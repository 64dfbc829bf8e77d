package frame

import (
	"errors"
	"fmt"
	"math"
)

const (
	// MinFrameSize is the smallest transform length accepted by NewFile.
	MinFrameSize = 128
	// DefaultMaxFrameSize bounds transform lengths unless a caller overrides it.
	DefaultMaxFrameSize = 8192
)

var (
	ErrChannels  = errors.New("frame: analysis data must be mono")
	ErrFrameSize = errors.New("frame: unsupported frame size")
	ErrNoFrames  = errors.New("frame: file holds no frames")
	ErrDataSize  = errors.New("frame: data length does not match header")
	ErrHeader    = errors.New("frame: invalid header")
)

// Header describes the analysis that produced a File.
type Header struct {
	FrameSize  int     // transform length, power of two
	Overlap    int     // hop between analysis frames, in samples
	SampleRate float64 // sample rate of the analysed signal
	Channels   int

	WindowLength int // analysis window length; informational
	WindowType   int // PVOC-EX window code; informational
}

// Bins returns the number of (amplitude, frequency) pairs per frame.
func (h Header) Bins() int { return h.FrameSize/2 + 1 }

// Stride returns the number of float32 values per frame.
func (h Header) Stride() int { return h.FrameSize + 2 }

// File is a loaded table of analysis frames.
type File struct {
	name   string
	header Header
	data   []float32
	frames int
}

// NewFile validates hdr against data and wraps them. data is not copied and
// must not be modified afterwards.
func NewFile(name string, hdr Header, data []float32) (*File, error) {
	if err := validateStructure(hdr); err != nil {
		return nil, err
	}

	stride := hdr.Stride()
	if len(data) == 0 {
		return nil, ErrNoFrames
	}

	if len(data)%stride != 0 {
		return nil, fmt.Errorf("%w: %d values is not a multiple of frame stride %d", ErrDataSize, len(data), stride)
	}

	return &File{
		name:   name,
		header: hdr,
		data:   data,
		frames: len(data) / stride,
	}, nil
}

// ValidateHeader checks hdr against the engine limits.
func ValidateHeader(hdr Header, maxFrameSize int) error {
	if err := validateStructure(hdr); err != nil {
		return err
	}

	if hdr.FrameSize > maxFrameSize {
		return fmt.Errorf("%w: %d bigger than %d", ErrFrameSize, hdr.FrameSize, maxFrameSize)
	}

	return nil
}

func validateStructure(hdr Header) error {
	if hdr.Channels != 1 {
		return fmt.Errorf("%w: %d channels", ErrChannels, hdr.Channels)
	}

	if hdr.FrameSize < MinFrameSize {
		return fmt.Errorf("%w: %d seems too small (min %d)", ErrFrameSize, hdr.FrameSize, MinFrameSize)
	}

	if hdr.FrameSize&(hdr.FrameSize-1) != 0 {
		return fmt.Errorf("%w: %d is not a power of two", ErrFrameSize, hdr.FrameSize)
	}

	if hdr.Overlap <= 0 {
		return fmt.Errorf("%w: overlap must be > 0: %d", ErrHeader, hdr.Overlap)
	}

	if hdr.SampleRate <= 0 || math.IsNaN(hdr.SampleRate) || math.IsInf(hdr.SampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive and finite: %f", ErrHeader, hdr.SampleRate)
	}

	return nil
}

// Name returns the identifier the file was loaded under.
func (f *File) Name() string { return f.name }

// Header returns the analysis header.
func (f *File) Header() Header { return f.header }

// FrameSize returns the transform length.
func (f *File) FrameSize() int { return f.header.FrameSize }

// SampleRate returns the analysis sample rate.
func (f *File) SampleRate() float64 { return f.header.SampleRate }

// FrameCount returns the number of frames.
func (f *File) FrameCount() int { return f.frames }

// FrameRate returns analysis frames per second.
func (f *File) FrameRate() float64 {
	return f.header.SampleRate / float64(f.header.Overlap)
}

// Duration returns the time of the last frame in seconds. Time pointers in
// [0, Duration()] address the file without truncation.
func (f *File) Duration() float64 {
	return float64(f.frames-1) / f.FrameRate()
}

// Frame returns a read-only view of frame i. It panics if i is out of range.
func (f *File) Frame(i int) []float32 {
	stride := f.header.Stride()
	return f.data[i*stride : (i+1)*stride : (i+1)*stride]
}

// Data returns the whole frame-major table. Callers must not modify it.
func (f *File) Data() []float32 { return f.data }
