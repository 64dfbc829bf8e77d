package voice

import "github.com/cwbudde/algo-pvoc/pvoc/blend"

// InterpControls are the per-block inputs of an Interp voice. A is the
// voice's own stream, B the reference reader's.
type InterpControls struct {
	Time       float64 // seconds into the voice's own file
	Pitch      float64 // transposition factor, 1 = unchanged
	AmpScaleA  float64
	AmpScaleB  float64
	FreqScaleA float64
	FreqScaleB float64
	AmpMix     float64 // 0 = all A, 1 = all B
	FreqMix    float64
}

// DefaultInterpControls returns unity pitch and scales with a 50/50 mix.
func DefaultInterpControls() InterpControls {
	p := blend.DefaultInterpParams()

	return InterpControls{
		Pitch:      1,
		AmpScaleA:  p.AmpScaleA,
		AmpScaleB:  p.AmpScaleB,
		FreqScaleA: p.FreqScaleA,
		FreqScaleB: p.FreqScaleB,
		AmpMix:     p.AmpMix,
		FreqMix:    p.FreqMix,
	}
}

func (c InterpControls) params() blend.InterpParams {
	return blend.InterpParams{
		AmpScaleA:  c.AmpScaleA,
		AmpScaleB:  c.AmpScaleB,
		FreqScaleA: c.FreqScaleA,
		FreqScaleB: c.FreqScaleB,
		AmpMix:     c.AmpMix,
		FreqMix:    c.FreqMix,
	}
}

// Interp morphs its own stream towards a reference reader's stream.
type Interp struct {
	s    *synth
	ctrl InterpControls
}

// Name returns the voice name.
func (v *Interp) Name() string {
	if v.s == nil {
		return ""
	}

	return v.s.name
}

// SetControls stores the controls used by the next engine block.
func (v *Interp) SetControls(ctrl InterpControls) { v.ctrl = ctrl }

// State returns a snapshot of the voice's playback state.
func (v *Interp) State() PlaybackState { return v.s.state() }

// Process renders one block into out, which must hold exactly the engine
// block size. The paired reader must have processed this block already.
func (v *Interp) Process(out []float64, ctrl InterpControls) error {
	v.ctrl = ctrl
	return v.step(out)
}

func (v *Interp) step(out []float64) error {
	if v == nil || v.s == nil {
		clear(out)
		return &BlockError{Voice: "interp", Err: ErrNotInitialized}
	}

	s := v.s
	block := s.blocks
	s.blocks++

	if err := s.begin(out, v.ctrl.Time, v.ctrl.Pitch); err != nil {
		return s.fail(out, block, err)
	}

	blend.Interpolate(s.buf, s.buf, s.ref.Frame(), v.ctrl.params(), s.scale)

	if err := s.finish(out, v.ctrl.Pitch, true); err != nil {
		return s.fail(out, block, err)
	}

	return nil
}
