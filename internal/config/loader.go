package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-pvoc/pvoc/frame"
	"github.com/cwbudde/algo-pvoc/pvoc/voice"
)

// Load reads the YAML configuration file at path and returns a validated [Config].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg describes a renderable setup. It returns a joined
// error listing every problem found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}
	if !(cfg.SampleRate > 0) || math.IsInf(cfg.SampleRate, 0) {
		errs = append(errs, fmt.Errorf("sample_rate must be > 0: %v", cfg.SampleRate))
	}
	if cfg.BlockSize < 1 || cfg.BlockSize > voice.MaxBlockSize {
		errs = append(errs, fmt.Errorf("block_size %d is out of range [1, %d]", cfg.BlockSize, voice.MaxBlockSize))
	}
	if n := cfg.MaxFrameSize; n != 0 && (n < frame.MinFrameSize || n&(n-1) != 0) {
		errs = append(errs, fmt.Errorf("max_frame_size %d must be a power of two >= %d", n, frame.MinFrameSize))
	}
	if !(cfg.Duration > 0) {
		errs = append(errs, fmt.Errorf("duration must be > 0: %v", cfg.Duration))
	}
	if cfg.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if cfg.Bank.Dir == "" {
		errs = append(errs, errors.New("bank.dir is required"))
	}

	if cfg.Reader.File == "" {
		errs = append(errs, errors.New("reader.file is required"))
	}
	if rate := Or(cfg.Reader.TimeRate, 1); rate < 0 {
		errs = append(errs, fmt.Errorf("reader.time_rate must be >= 0: %v", rate))
	}

	if len(cfg.Voices) == 0 {
		errs = append(errs, errors.New("at least one voice is required"))
	}

	seen := map[string]int{}
	if cfg.Reader.Name != "" {
		seen[cfg.Reader.Name] = -1
	}

	for i, v := range cfg.Voices {
		prefix := fmt.Sprintf("voices[%d]", i)

		if v.Name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", prefix))
		} else {
			if prev, ok := seen[v.Name]; ok {
				if prev < 0 {
					errs = append(errs, fmt.Errorf("%s.name %q is already used by the reader", prefix, v.Name))
				} else {
					errs = append(errs, fmt.Errorf("%s.name %q is a duplicate of voices[%d]", prefix, v.Name, prev))
				}
			}
			seen[v.Name] = i
		}
		if !v.Kind.IsValid() {
			errs = append(errs, fmt.Errorf("%s.kind %q is invalid; valid values: interp, cross", prefix, v.Kind))
		}
		if v.File == "" {
			errs = append(errs, fmt.Errorf("%s.file is required", prefix))
		}
		if v.Warp != 0 && v.Kind != KindCross {
			errs = append(errs, fmt.Errorf("%s.warp is only valid for cross voices", prefix))
		}
		if p := Or(v.Pitch, 1); !(p > 0) {
			errs = append(errs, fmt.Errorf("%s.pitch must be > 0: %v", prefix, p))
		}
		if rate := Or(v.TimeRate, 1); rate < 0 {
			errs = append(errs, fmt.Errorf("%s.time_rate must be >= 0: %v", prefix, rate))
		}
		for _, mix := range []struct {
			name string
			val  *float64
		}{{"amp_mix", v.AmpMix}, {"freq_mix", v.FreqMix}} {
			if m := Or(mix.val, 0.5); m < 0 || m > 1 {
				errs = append(errs, fmt.Errorf("%s.%s %.2f is out of range [0, 1]", prefix, mix.name, m))
			}
		}
		if v.Kind == KindCross && (v.FreqScaleA != nil || v.FreqScaleB != nil || v.AmpMix != nil || v.FreqMix != nil) {
			errs = append(errs, fmt.Errorf("%s: cross voices take only amp_scale_a and amp_scale_b", prefix))
		}
	}

	return errors.Join(errs...)
}
