package frame

import (
	"errors"
	"log/slog"
	"math"
)

// ErrInvalidTime is returned for negative (or NaN) time pointers.
var ErrInvalidTime = errors.New("frame: time pointer must not be negative")

// indexSlack absorbs rounding in the seconds to index conversion at the last
// frame.
const indexSlack = 1e-9

// Fetcher returns the nearest frame of a File for a fractional frame index.
//
// Requests past the last frame are clamped. The first clamp logs one warning;
// later ones are silent.
type Fetcher struct {
	file   *File
	last   int
	logger *slog.Logger

	pastEnd Latch
	clamped bool
	index   float64
}

// NewFetcher returns a fetcher over f. A nil logger uses slog.Default().
func NewFetcher(f *File, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		file:   f,
		last:   f.FrameCount() - 1,
		logger: logger,
	}
}

// File returns the underlying file.
func (f *Fetcher) File() *File { return f.file }

// Fetch returns the frame nearest to index.
func (f *Fetcher) Fetch(index float64) ([]float32, error) {
	if index < 0 || math.IsNaN(index) {
		return nil, ErrInvalidTime
	}

	f.clamped = false

	if index > float64(f.last) {
		over := index - float64(f.last)
		index = float64(f.last)

		if over <= indexSlack {
			f.index = index
			return f.file.Frame(f.last), nil
		}

		f.clamped = true

		if f.pastEnd.Trip() {
			f.logger.Warn("time pointer truncated to last frame",
				"file", f.file.Name(), "last_frame", f.last)
		}
	}

	f.index = index

	return f.file.Frame(int(math.Floor(index + 0.5))), nil
}

// FetchTime converts seconds into a frame index using the file frame rate and
// calls Fetch.
func (f *Fetcher) FetchTime(seconds float64) ([]float32, error) {
	return f.Fetch(seconds * f.file.FrameRate())
}

// Clamped reports whether the most recent successful Fetch was clamped.
func (f *Fetcher) Clamped() bool { return f.clamped }

// PastEnd returns the state of the truncation latch.
func (f *Fetcher) PastEnd() LatchState { return f.pastEnd.State() }

// Index returns the (clamped) fractional index of the most recent Fetch.
func (f *Fetcher) Index() float64 { return f.index }
