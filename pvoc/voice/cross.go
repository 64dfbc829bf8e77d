package voice

import "github.com/cwbudde/algo-pvoc/pvoc/blend"

// CrossControls are the per-block inputs of a Cross voice.
type CrossControls struct {
	Time      float64
	Pitch     float64
	AmpScaleA float64 // own stream
	AmpScaleB float64 // reference stream
}

// DefaultCrossControls returns unity pitch, the own stream at full scale and
// the reference silent.
func DefaultCrossControls() CrossControls {
	return CrossControls{Pitch: 1, AmpScaleA: 1}
}

// Cross imposes a blend of both streams' amplitudes on its own frequencies.
type Cross struct {
	s    *synth
	ctrl CrossControls
	gate blend.WarpGate
	env  []float64

	announced bool
}

// Name returns the voice name.
func (v *Cross) Name() string {
	if v.s == nil {
		return ""
	}

	return v.s.name
}

// WarpMode returns the spectral warp mode the voice was created with.
func (v *Cross) WarpMode() int { return v.gate.Mode() }

// SetControls stores the controls used by the next engine block.
func (v *Cross) SetControls(ctrl CrossControls) { v.ctrl = ctrl }

// State returns a snapshot of the voice's playback state.
func (v *Cross) State() PlaybackState { return v.s.state() }

// LastSegment returns the most recent resynthesized 2*block segment. It is
// all zeros for blocks the warp gate silenced.
func (v *Cross) LastSegment() []float64 { return v.s.segment }

// Process renders one block into out.
func (v *Cross) Process(out []float64, ctrl CrossControls) error {
	v.ctrl = ctrl
	return v.step(out)
}

func (v *Cross) step(out []float64) error {
	if v == nil || v.s == nil {
		clear(out)
		return &BlockError{Voice: "cross", Err: ErrNotInitialized}
	}

	s := v.s
	block := s.blocks
	s.blocks++

	if err := s.begin(out, v.ctrl.Time, v.ctrl.Pitch); err != nil {
		return s.fail(out, block, err)
	}

	blend.Cross(s.buf, s.buf, s.ref.Frame(), v.ctrl.AmpScaleA, v.ctrl.AmpScaleB, s.scale)

	pass := v.gate.Next()
	if pass && v.gate.Mode() != 0 {
		if v.gate.Prewarp() {
			blend.PreWarp(s.buf, v.env, v.ctrl.Pitch)
		} else if !v.announced {
			v.announced = true
			s.logger.Debug("spectral warp passing unwarped frames",
				"voice", s.name, "mode", v.gate.Mode())
		}
	}

	if err := s.finish(out, v.ctrl.Pitch, pass); err != nil {
		return s.fail(out, block, err)
	}

	return nil
}
