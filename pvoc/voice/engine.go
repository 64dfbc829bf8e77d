package voice

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-pvoc/pvoc/blend"
	"github.com/cwbudde/algo-pvoc/pvoc/frame"
)

type dependent interface {
	Name() string
	step(out []float64) error
}

// Engine owns a set of voices and processes them block by block.
type Engine struct {
	cfg      Config
	registry Registry
	deps     []dependent
}

// NewEngine validates the configuration and returns an empty engine.
func NewEngine(opts ...Option) (*Engine, error) {
	cfg := ApplyOptions(opts...)

	if cfg.BlockSize < 1 || cfg.BlockSize > MaxBlockSize {
		return nil, &SetupError{Voice: "engine", Err: fmt.Errorf("%w: must be in [1, %d]: %d",
			ErrBlockSize, MaxBlockSize, cfg.BlockSize)}
	}

	if cfg.MaxFrameSize < frame.MinFrameSize || cfg.MaxFrameSize&(cfg.MaxFrameSize-1) != 0 {
		return nil, &SetupError{Voice: "engine", Err: fmt.Errorf("%w: max frame size must be a power of two >= %d: %d",
			ErrFrameSize, frame.MinFrameSize, cfg.MaxFrameSize)}
	}

	return &Engine{cfg: cfg}, nil
}

// Config returns the engine configuration with defaults filled in.
func (e *Engine) Config() Config { return e.cfg }

// Registry returns the reader registry.
func (e *Engine) Registry() *Registry { return &e.registry }

// Voices returns the number of dependent voices, i.e. the number of output
// slices Process expects.
func (e *Engine) Voices() int { return len(e.deps) }

// AddReader loads file and registers a reader voice for it.
func (e *Engine) AddReader(name, file string) (Handle, *Reader, error) {
	f, err := e.load(name, file)
	if err != nil {
		return 0, nil, err
	}

	e.checkRate(name, f)

	rd := newReader(name, f, e.cfg.Logger, e.cfg.Observer)
	h := e.registry.add(rd)

	e.cfg.Logger.Debug("reader voice ready", "voice", name, "file", file,
		"frame_size", f.FrameSize(), "frames", f.FrameCount(), "handle", int(h))

	return h, rd, nil
}

// AddInterp creates an interpolation voice over file paired with the reader
// ref.
func (e *Engine) AddInterp(name, file string, ref Handle) (*Interp, error) {
	s, err := e.newSynth(name, file, ref)
	if err != nil {
		return nil, err
	}

	v := &Interp{s: s, ctrl: DefaultInterpControls()}
	e.deps = append(e.deps, v)

	return v, nil
}

// AddCross creates a cross-synthesis voice over file paired with the reader
// ref. warp selects the spectral warp mode; see blend.WarpGate.
func (e *Engine) AddCross(name, file string, ref Handle, warp int) (*Cross, error) {
	s, err := e.newSynth(name, file, ref)
	if err != nil {
		return nil, err
	}

	v := &Cross{
		s:    s,
		ctrl: DefaultCrossControls(),
		gate: blend.NewWarpGate(warp),
		env:  make([]float64, len(s.buf)/2),
	}
	e.deps = append(e.deps, v)

	return v, nil
}

func (e *Engine) newSynth(name, file string, ref Handle) (*synth, error) {
	rd, err := e.registry.Reader(ref)
	if err != nil {
		return nil, &SetupError{Voice: name, File: file, Err: err}
	}

	f, err := e.load(name, file)
	if err != nil {
		return nil, err
	}

	s, err := newSynth(name, f, rd, e.cfg)
	if err != nil {
		return nil, &SetupError{Voice: name, File: file, Err: err}
	}

	e.checkRate(name, f)

	e.cfg.Logger.Debug("voice ready", "voice", name, "file", file, "reader", rd.Name(),
		"frame_size", f.FrameSize(), "block_size", e.cfg.BlockSize)

	return s, nil
}

// checkRate warns when a file was analysed at a different rate than the
// engine plays at. Playback continues at the engine rate.
func (e *Engine) checkRate(name string, f *frame.File) {
	if f.SampleRate() == e.cfg.SampleRate {
		return
	}

	e.cfg.Logger.Warn("sample rate mismatch",
		"voice", name, "file", f.Name(),
		"file_rate", f.SampleRate(), "engine_rate", e.cfg.SampleRate)
	e.cfg.Observer.Warning(name, ReasonSampleRateMismatch)
}

func (e *Engine) load(name, file string) (*frame.File, error) {
	if e.cfg.Loader == nil {
		return nil, &SetupError{Voice: name, File: file, Err: fmt.Errorf("%w: no loader configured", ErrLoad)}
	}

	f, err := e.cfg.Loader.Load(file)
	if err != nil {
		return nil, &SetupError{Voice: name, File: file, Err: fmt.Errorf("%w: %w", ErrLoad, err)}
	}

	if err := frame.ValidateHeader(f.Header(), e.cfg.MaxFrameSize); err != nil {
		return nil, &SetupError{Voice: name, File: file, Err: err}
	}

	return f, nil
}

// Process runs one block: every reader with its stored controls, then every
// dependent voice in creation order, writing voice i into outs[i]. All voices
// run even when some fail; the first failure is returned.
func (e *Engine) Process(outs [][]float64) error {
	if len(outs) != len(e.deps) {
		return fmt.Errorf("voice: got %d output buffers for %d voices", len(outs), len(e.deps))
	}

	var first error

	for _, rd := range e.registry.readers {
		if err := rd.step(); err != nil && first == nil {
			first = err
		}
	}

	for i, d := range e.deps {
		if err := d.step(outs[i]); err != nil && first == nil {
			first = err
		}
	}

	return first
}

// IsBlockError reports whether err is a recoverable block failure.
func IsBlockError(err error) bool {
	var be *BlockError
	return errors.As(err, &be)
}
