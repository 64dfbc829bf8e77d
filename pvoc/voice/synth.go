package voice

import (
	"fmt"
	"log/slog"

	"github.com/cwbudde/algo-pvoc/pvoc/blend"
	"github.com/cwbudde/algo-pvoc/pvoc/frame"
	"github.com/cwbudde/algo-pvoc/pvoc/ola"
	"github.com/cwbudde/algo-pvoc/pvoc/phase"
	"github.com/cwbudde/algo-pvoc/pvoc/resynth"
)

// PlaybackState is a snapshot of a dependent voice's persistent state.
type PlaybackState struct {
	Index     float64          // fractional frame index of the last fetch
	LastPitch float64          // pitch of the last rendered block
	PastEnd   frame.LatchState // time truncation latch
	RingPos   int              // overlap-add write position
	Blocks    int64            // blocks processed, failed ones included
}

// synth is the machinery shared by Interp and Cross.
type synth struct {
	name         string
	analysisRate float64 // phase conversion uses the file's rate
	block        int

	ref       *Reader
	fetch     *frame.Fetcher
	tracker   *phase.Tracker
	resampler *resynth.Resampler
	writer    *ola.Writer

	buf     []float64 // working frame
	segment []float64 // 2*block resynthesized samples
	scale   float64

	blocks   int64
	logger   *slog.Logger
	observer Observer
}

func newSynth(name string, f *frame.File, ref *Reader, cfg Config) (*synth, error) {
	if f.FrameSize() != ref.FrameSize() {
		return nil, fmt.Errorf("%w: %d vs %d (%s)", ErrFrameSizeMismatch,
			f.FrameSize(), ref.FrameSize(), ref.Name())
	}

	maxLen := 2 * cfg.MaxFrameSize

	rs, err := resynth.New(f.FrameSize(), 2*cfg.BlockSize, maxLen)
	if err != nil {
		return nil, err
	}

	w, err := ola.NewWriter(maxLen, cfg.BlockSize)
	if err != nil {
		return nil, err
	}

	return &synth{
		name:         name,
		analysisRate: f.SampleRate(),
		block:        cfg.BlockSize,
		ref:          ref,
		fetch:        frame.NewFetcher(f, cfg.Logger),
		tracker:      phase.NewTracker(f.Header().Bins()),
		resampler:    rs,
		writer:       w,
		buf:          make([]float64, f.Header().Stride()),
		segment:      make([]float64, 2*cfg.BlockSize),
		scale:        blend.NormalizationScale(f.FrameSize()),
		logger:       cfg.Logger,
		observer:     cfg.Observer,
	}, nil
}

// begin validates a block and loads the voice's own frame into s.buf. It
// touches no playback state besides the truncation latch.
func (s *synth) begin(out []float64, t, pitch float64) error {
	if len(out) != s.block {
		return fmt.Errorf("%w: output has %d samples, want %d", ErrBlockSize, len(out), s.block)
	}

	if err := s.resampler.Check(pitch); err != nil {
		return err
	}

	if !s.ref.Ready() {
		return fmt.Errorf("%w: reader %s has no frame", ErrNotInitialized, s.ref.Name())
	}

	fired := s.fetch.PastEnd()

	fr, err := s.fetch.FetchTime(t)
	if err != nil {
		return err
	}

	if fired != s.fetch.PastEnd() {
		s.observer.TimeClamped(s.name)
	}

	copyFrame(s.buf, fr)

	return nil
}

// finish advances phase, resynthesizes s.buf (or silence when pass is false)
// and overlap-adds one block into out.
func (s *synth) finish(out []float64, pitch float64, pass bool) error {
	s.tracker.Advance(s.buf, pitch, s.block, s.analysisRate)

	if pass {
		if _, err := s.resampler.Resample(s.segment, s.buf, pitch); err != nil {
			return err
		}
	} else {
		clear(s.segment)
	}

	if err := s.writer.Write(out, s.segment); err != nil {
		return err
	}

	s.observer.BlockRendered(s.name)

	return nil
}

func (s *synth) fail(out []float64, block int64, err error) error {
	clear(out)
	s.observer.BlockFailed(s.name, err)

	return &BlockError{Voice: s.name, Block: block, Err: err}
}

func (s *synth) state() PlaybackState {
	return PlaybackState{
		Index:     s.fetch.Index(),
		LastPitch: s.tracker.LastPitch(),
		PastEnd:   s.fetch.PastEnd(),
		RingPos:   s.writer.Pos(),
		Blocks:    s.blocks,
	}
}
