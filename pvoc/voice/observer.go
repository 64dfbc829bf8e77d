package voice

// Observer receives per-voice diagnostics. Implementations are called from
// the block path and must not block.
type Observer interface {
	BlockRendered(voice string)
	BlockFailed(voice string, err error)
	TimeClamped(voice string)
	Warning(voice, reason string)
}

// NopObserver discards everything.
type NopObserver struct{}

func (NopObserver) BlockRendered(string)      {}
func (NopObserver) BlockFailed(string, error) {}
func (NopObserver) TimeClamped(string)        {}
func (NopObserver) Warning(string, string)    {}

// Warning reasons.
const (
	ReasonSampleRateMismatch = "sample_rate_mismatch"
	ReasonTimeTruncated      = "time_truncated"
)
