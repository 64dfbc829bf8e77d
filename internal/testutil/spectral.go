package testutil

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cwbudde/algo-pvoc/pvoc/frame"
)

// SineHeader returns a mono header with hop frameSize/4.
func SineHeader(frameSize int, sampleRate float64) frame.Header {
	return frame.Header{
		FrameSize:    frameSize,
		Overlap:      frameSize / 4,
		SampleRate:   sampleRate,
		Channels:     1,
		WindowLength: frameSize,
	}
}

// SineFile builds frames that each hold one stationary partial of amplitude
// amp centred on bin. Every bin carries its own centre frequency, so the
// phase deviation is zero everywhere.
func SineFile(t *testing.T, frameSize, frames int, sampleRate float64, bin int, amp float64) *frame.File {
	t.Helper()

	hdr := SineHeader(frameSize, sampleRate)
	binHz := sampleRate / float64(frameSize)
	data := make([]float32, frames*hdr.Stride())

	for j := range frames {
		fr := data[j*hdr.Stride() : (j+1)*hdr.Stride()]
		for k := range hdr.Bins() {
			fr[2*k+1] = float32(float64(k) * binHz)
		}
		fr[2*bin] = float32(amp)
	}

	return mustFile(t, "sine", hdr, data)
}

// SweepFile builds frames whose single partial glides linearly from startHz to
// endHz. Each frame stores the exact instantaneous frequency in the nearest
// bin, so phase deviations are non-zero.
func SweepFile(t *testing.T, frameSize, frames int, sampleRate, startHz, endHz, amp float64) *frame.File {
	t.Helper()

	hdr := SineHeader(frameSize, sampleRate)
	binHz := sampleRate / float64(frameSize)
	data := make([]float32, frames*hdr.Stride())

	for j := range frames {
		fr := data[j*hdr.Stride() : (j+1)*hdr.Stride()]
		for k := range hdr.Bins() {
			fr[2*k+1] = float32(float64(k) * binHz)
		}

		pos := 0.0
		if frames > 1 {
			pos = float64(j) / float64(frames-1)
		}

		hz := startHz + (endHz-startHz)*pos
		bin := int(math.Round(hz / binHz))
		fr[2*bin] = float32(amp)
		fr[2*bin+1] = float32(hz)
	}

	return mustFile(t, "sweep", hdr, data)
}

// NoiseFile builds frames with seeded random amplitudes in [0, amp) and
// centre frequencies.
func NoiseFile(t *testing.T, frameSize, frames int, sampleRate float64, seed int64, amp float64) *frame.File {
	t.Helper()

	hdr := SineHeader(frameSize, sampleRate)
	binHz := sampleRate / float64(frameSize)
	rng := rand.New(rand.NewSource(seed))
	data := make([]float32, frames*hdr.Stride())

	for j := range frames {
		fr := data[j*hdr.Stride() : (j+1)*hdr.Stride()]
		for k := range hdr.Bins() {
			fr[2*k] = float32(rng.Float64() * amp)
			fr[2*k+1] = float32(float64(k) * binHz)
		}
	}

	return mustFile(t, "noise", hdr, data)
}

func mustFile(t *testing.T, name string, hdr frame.Header, data []float32) *frame.File {
	t.Helper()

	f, err := frame.NewFile(name, hdr, data)
	if err != nil {
		t.Fatalf("frame.NewFile() error = %v", err)
	}

	return f
}
