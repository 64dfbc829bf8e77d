package voice

import (
	"log/slog"

	"github.com/cwbudde/algo-pvoc/pvoc/frame"
)

// MaxBlockSize is the largest supported control block.
const MaxBlockSize = 4000

// Loader resolves a file name to a spectral file at setup time.
type Loader interface {
	Load(name string) (*frame.File, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(name string) (*frame.File, error)

// Load calls f(name).
func (f LoaderFunc) Load(name string) (*frame.File, error) { return f(name) }

// Config holds engine-wide settings.
type Config struct {
	SampleRate   float64
	BlockSize    int
	MaxFrameSize int
	Logger       *slog.Logger
	Observer     Observer
	Loader       Loader
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:   48000,
		BlockSize:    64,
		MaxFrameSize: frame.DefaultMaxFrameSize,
	}
}

// WithSampleRate sets the playback sample rate.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the control block size. Out-of-range values are
// rejected by NewEngine.
func WithBlockSize(blockSize int) Option {
	return func(cfg *Config) {
		cfg.BlockSize = blockSize
	}
}

// WithMaxFrameSize sets the largest accepted analysis frame. The overlap-add
// ring and the transpose range are sized from it.
func WithMaxFrameSize(size int) Option {
	return func(cfg *Config) {
		cfg.MaxFrameSize = size
	}
}

// WithLogger sets the logger for one-shot notices.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *Config) {
		cfg.Logger = logger
	}
}

// WithObserver sets the diagnostics sink.
func WithObserver(o Observer) Option {
	return func(cfg *Config) {
		cfg.Observer = o
	}
}

// WithLoader sets the file loader used by the Add methods.
func WithLoader(l Loader) Option {
	return func(cfg *Config) {
		cfg.Loader = l
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}

	return cfg
}
