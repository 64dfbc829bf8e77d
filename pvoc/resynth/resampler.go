package resynth

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"

	"github.com/cwbudde/algo-pvoc/dsp/window"
)

var (
	// ErrTransposeTooHigh means sourceLen/pitch fell below the segment length.
	ErrTransposeTooHigh = errors.New("resynth: transpose too high")
	// ErrTransposeTooLow means sourceLen/pitch exceeded the maximum transform length.
	ErrTransposeTooLow = errors.New("resynth: transpose too low")
	// ErrInvalidPitch means the pitch factor is not positive and finite.
	ErrInvalidPitch = errors.New("resynth: pitch factor must be positive and finite")
	// ErrLength means a caller buffer is too short.
	ErrLength = errors.New("resynth: buffer too short")
)

// Resampler inverse-transforms polar frames of sourceLen into windowed
// segments of targetLen samples.
//
// All buffers are allocated by New; Resample does not allocate. A Resampler
// is not safe for concurrent use.
type Resampler struct {
	sourceLen int
	targetLen int
	maxLen    int

	plan     *algofft.Plan[complex128]
	spectrum []complex128
	frame    []float64
	window   []float64
}

// New returns a resampler for frames of transform length sourceLen producing
// targetLen-sample segments. maxTransformLen bounds sourceLen/pitch.
func New(sourceLen, targetLen, maxTransformLen int) (*Resampler, error) {
	if sourceLen < 4 || sourceLen&(sourceLen-1) != 0 {
		return nil, fmt.Errorf("resynth: source length must be a power of two >= 4: %d", sourceLen)
	}

	if targetLen < 2 || targetLen%2 != 0 {
		return nil, fmt.Errorf("resynth: target length must be even and >= 2: %d", targetLen)
	}

	if maxTransformLen < sourceLen {
		return nil, fmt.Errorf("resynth: max transform length %d below source length %d", maxTransformLen, sourceLen)
	}

	plan, err := algofft.NewPlan64(sourceLen)
	if err != nil {
		return nil, fmt.Errorf("resynth: failed to create FFT plan: %w", err)
	}

	win, err := window.Hann(targetLen, window.WithPeriodic())
	if err != nil {
		return nil, fmt.Errorf("resynth: %w", err)
	}

	return &Resampler{
		sourceLen: sourceLen,
		targetLen: targetLen,
		maxLen:    maxTransformLen,
		plan:      plan,
		spectrum:  make([]complex128, sourceLen),
		frame:     make([]float64, sourceLen),
		window:    win,
	}, nil
}

// SourceLen returns the transform length.
func (r *Resampler) SourceLen() int { return r.sourceLen }

// TargetLen returns the segment length.
func (r *Resampler) TargetLen() int { return r.targetLen }

// Window returns the half-overlap window applied to every segment.
func (r *Resampler) Window() []float64 { return r.window }

// Check validates pitch against the transform geometry.
func (r *Resampler) Check(pitch float64) error {
	if !(pitch > 0) || math.IsInf(pitch, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidPitch, pitch)
	}

	outLen := float64(r.sourceLen) / pitch
	if outLen > float64(r.maxLen) {
		return ErrTransposeTooLow
	}

	if int(outLen) < r.targetLen {
		return ErrTransposeTooHigh
	}

	return nil
}

// Resample converts the polar frame (interleaved magnitude, phase pairs;
// sourceLen/2+1 of them) into a windowed segment written to dst[:TargetLen()]
// and returns the number of samples written. On error nothing is written.
func (r *Resampler) Resample(dst, polar []float64, pitch float64) (int, error) {
	if err := r.Check(pitch); err != nil {
		return 0, err
	}

	if len(dst) < r.targetLen {
		return 0, fmt.Errorf("%w: dst has %d samples, need %d", ErrLength, len(dst), r.targetLen)
	}

	if len(polar) < r.sourceLen+2 {
		return 0, fmt.Errorf("%w: frame has %d values, need %d", ErrLength, len(polar), r.sourceLen+2)
	}

	if err := r.toTime(polar); err != nil {
		return 0, err
	}

	out := dst[:r.targetLen]
	if pitch == 1 {
		off := (r.sourceLen - r.targetLen) / 2
		copy(out, r.frame[off:off+r.targetLen])
	} else {
		start := 0.5 * (float64(r.sourceLen) - pitch*float64(r.targetLen))
		interpolate(out, r.frame, start, pitch)
	}

	if err := window.ApplyCoefficientsInPlace(out, r.window); err != nil {
		return 0, fmt.Errorf("resynth: %w", err)
	}

	return r.targetLen, nil
}

// toTime builds the conjugate-symmetric spectrum of polar and inverse
// transforms it into r.frame.
func (r *Resampler) toTime(polar []float64) error {
	half := r.sourceLen / 2

	for k := 0; k <= half; k++ {
		mag := polar[2*k]
		if k&1 == 1 {
			mag = -mag
		}

		sin, cos := math.Sincos(polar[2*k+1])

		if k == 0 || k == half {
			r.spectrum[k] = complex(mag*cos, 0)
			continue
		}

		r.spectrum[k] = complex(mag*cos, mag*sin)
		r.spectrum[r.sourceLen-k] = complex(mag*cos, -mag*sin)
	}

	err := r.plan.Inverse(r.spectrum, r.spectrum)
	if err != nil {
		return fmt.Errorf("resynth: inverse FFT failed: %w", err)
	}

	for i, v := range r.spectrum {
		r.frame[i] = real(v)
	}

	return nil
}
