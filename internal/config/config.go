// Package config defines the YAML render description read by cmd/pvrender.
package config

import "log/slog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Level converts l to a slog level. The empty level is info.
func (l LogLevel) Level() slog.Level {
	switch l {
	case LogDebug:
		return slog.LevelDebug
	case LogWarn:
		return slog.LevelWarn
	case LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// VoiceKind selects the dependent voice type.
type VoiceKind string

const (
	KindInterp VoiceKind = "interp"
	KindCross  VoiceKind = "cross"
)

// IsValid reports whether k is a known voice kind.
func (k VoiceKind) IsValid() bool {
	return k == KindInterp || k == KindCross
}

// Config is the top-level render description.
type Config struct {
	LogLevel LogLevel `yaml:"log_level"`

	// SampleRate is the output sample rate in Hz.
	SampleRate float64 `yaml:"sample_rate"`

	// BlockSize is the control block length in samples, 1 to 4000.
	BlockSize int `yaml:"block_size"`

	// MaxFrameSize bounds accepted analysis frames. Zero keeps the engine default.
	MaxFrameSize int `yaml:"max_frame_size"`

	// Duration is the render length in seconds.
	Duration float64 `yaml:"duration"`

	// Output is the path of the float32 WAV file to write.
	Output string `yaml:"output"`

	Bank   BankConfig    `yaml:"bank"`
	Reader ReaderConfig  `yaml:"reader"`
	Voices []VoiceConfig `yaml:"voices"`
}

// BankConfig points at a directory of PVOC-EX files.
type BankConfig struct {
	Dir   string `yaml:"dir"`
	Start int    `yaml:"start"`
}

// ReaderConfig describes the reference stream.
type ReaderConfig struct {
	Name string `yaml:"name"`
	File string `yaml:"file"`

	// TimeRate is file seconds per output second. Default 1.
	TimeRate   *float64 `yaml:"time_rate"`
	TimeOffset float64  `yaml:"time_offset"`
}

// VoiceConfig describes one dependent voice. Unset scales and rates default
// to 1, unset mixes to 0.5.
type VoiceConfig struct {
	Name string    `yaml:"name"`
	Kind VoiceKind `yaml:"kind"`
	File string    `yaml:"file"`

	TimeRate   *float64 `yaml:"time_rate"`
	TimeOffset float64  `yaml:"time_offset"`
	Pitch      *float64 `yaml:"pitch"`
	Gain       *float64 `yaml:"gain"`

	AmpScaleA  *float64 `yaml:"amp_scale_a"`
	AmpScaleB  *float64 `yaml:"amp_scale_b"`
	FreqScaleA *float64 `yaml:"freq_scale_a"`
	FreqScaleB *float64 `yaml:"freq_scale_b"`
	AmpMix     *float64 `yaml:"amp_mix"`
	FreqMix    *float64 `yaml:"freq_mix"`

	// Warp is the cross-synthesis spectral warp mode.
	Warp int `yaml:"warp"`
}

// Or returns *p, or def when p is nil.
func Or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

// Time returns the file time for output time t.
func (r ReaderConfig) Time(t float64) float64 {
	return r.TimeOffset + Or(r.TimeRate, 1)*t
}

// Time returns the file time for output time t.
func (v VoiceConfig) Time(t float64) float64 {
	return v.TimeOffset + Or(v.TimeRate, 1)*t
}
