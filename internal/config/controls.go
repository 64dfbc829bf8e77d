package config

import "github.com/cwbudde/algo-pvoc/pvoc/voice"

// InterpControls returns the voice's controls at output time t.
func (v VoiceConfig) InterpControls(t float64) voice.InterpControls {
	return voice.InterpControls{
		Time:       v.Time(t),
		Pitch:      Or(v.Pitch, 1),
		AmpScaleA:  Or(v.AmpScaleA, 1),
		AmpScaleB:  Or(v.AmpScaleB, 1),
		FreqScaleA: Or(v.FreqScaleA, 1),
		FreqScaleB: Or(v.FreqScaleB, 1),
		AmpMix:     Or(v.AmpMix, 0.5),
		FreqMix:    Or(v.FreqMix, 0.5),
	}
}

// CrossControls returns the voice's controls at output time t. The reference
// amplitude scale defaults to 1, so an unconfigured cross voice sums both
// streams.
func (v VoiceConfig) CrossControls(t float64) voice.CrossControls {
	return voice.CrossControls{
		Time:      v.Time(t),
		Pitch:     Or(v.Pitch, 1),
		AmpScaleA: Or(v.AmpScaleA, 1),
		AmpScaleB: Or(v.AmpScaleB, 1),
	}
}

// EngineOptions returns the engine options implied by cfg.
func (cfg *Config) EngineOptions() []voice.Option {
	opts := []voice.Option{
		voice.WithSampleRate(cfg.SampleRate),
		voice.WithBlockSize(cfg.BlockSize),
	}
	if cfg.MaxFrameSize != 0 {
		opts = append(opts, voice.WithMaxFrameSize(cfg.MaxFrameSize))
	}
	return opts
}
