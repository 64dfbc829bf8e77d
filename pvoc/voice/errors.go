package voice

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-pvoc/pvoc/frame"
	"github.com/cwbudde/algo-pvoc/pvoc/resynth"
)

// Setup failures.
var (
	ErrLoad              = errors.New("voice: cannot load spectral file")
	ErrChannels          = frame.ErrChannels
	ErrFrameSize         = frame.ErrFrameSize
	ErrFrameSizeMismatch = errors.New("voice: frame size differs from reference reader")
	ErrUnknownReader     = errors.New("voice: unknown reader handle")
	ErrBlockSize         = errors.New("voice: invalid block size")
)

// Block failures.
var (
	ErrInvalidTime      = frame.ErrInvalidTime
	ErrTransposeTooHigh = resynth.ErrTransposeTooHigh
	ErrTransposeTooLow  = resynth.ErrTransposeTooLow
	ErrInvalidPitch     = resynth.ErrInvalidPitch
	ErrNotInitialized   = errors.New("voice: not initialized")
)

// SetupError reports a voice that could not be created.
type SetupError struct {
	Voice string
	File  string
	Err   error
}

func (e *SetupError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("voice %s: setup: %v", e.Voice, e.Err)
	}

	return fmt.Sprintf("voice %s: setup %q: %v", e.Voice, e.File, e.Err)
}

func (e *SetupError) Unwrap() error { return e.Err }

// BlockError reports a failed block. The block's output was zero-filled and
// the voice state left as it was.
type BlockError struct {
	Voice string
	Block int64
	Err   error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("voice %s: block %d: %v", e.Voice, e.Block, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }
