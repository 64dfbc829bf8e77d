package voice

import (
	"log/slog"

	"github.com/cwbudde/algo-pvoc/pvoc/frame"
)

// ReadControls are the per-block inputs of a Reader.
type ReadControls struct {
	Time float64 // seconds into the file
}

// Reader fetches the reference frame for the current block. Its frame is
// shared read-only with every dependent voice paired to it.
type Reader struct {
	name     string
	fetch    *frame.Fetcher
	buf      []float64
	ctrl     ReadControls
	ready    bool
	blocks   int64
	observer Observer
}

func newReader(name string, f *frame.File, logger *slog.Logger, o Observer) *Reader {
	return &Reader{
		name:     name,
		fetch:    frame.NewFetcher(f, logger),
		buf:      make([]float64, f.Header().Stride()),
		observer: o,
	}
}

// Name returns the voice name.
func (r *Reader) Name() string { return r.name }

// File returns the reference file.
func (r *Reader) File() *frame.File {
	if r.fetch == nil {
		return nil
	}

	return r.fetch.File()
}

// FrameSize returns the transform length of the reference file.
func (r *Reader) FrameSize() int { return r.File().FrameSize() }

// SetControls stores the controls used by the next engine block.
func (r *Reader) SetControls(ctrl ReadControls) { r.ctrl = ctrl }

// Process fetches the frame at ctrl.Time. On failure the reader holds no
// frame until a later block succeeds.
func (r *Reader) Process(ctrl ReadControls) error {
	r.ctrl = ctrl
	return r.step()
}

func (r *Reader) step() error {
	if r == nil || r.fetch == nil {
		return &BlockError{Voice: "reader", Err: ErrNotInitialized}
	}

	block := r.blocks
	r.blocks++

	fired := r.fetch.PastEnd()

	fr, err := r.fetch.FetchTime(r.ctrl.Time)
	if err != nil {
		r.ready = false
		r.observer.BlockFailed(r.name, err)

		return &BlockError{Voice: r.name, Block: block, Err: err}
	}

	if fired != r.fetch.PastEnd() {
		r.observer.TimeClamped(r.name)
	}

	copyFrame(r.buf, fr)
	r.ready = true

	return nil
}

// Ready reports whether the most recent block produced a frame.
func (r *Reader) Ready() bool { return r.ready }

// Frame returns the current reference frame, interleaved amplitude and
// frequency pairs. Callers must not modify it.
func (r *Reader) Frame() []float64 { return r.buf }

// Fetcher exposes the reader's frame fetcher.
func (r *Reader) Fetcher() *frame.Fetcher { return r.fetch }

func copyFrame(dst []float64, src []float32) {
	for i, v := range src {
		dst[i] = float64(v)
	}
}
