package blend

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-pvoc/internal/testutil"
)

func TestNormalizationScale(t *testing.T) {
	for _, n := range []int{128, 1024, 8192} {
		if got, want := NormalizationScale(n), float64(n)/2; got != want {
			t.Fatalf("NormalizationScale(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestInterpolateMixEndpoints(t *testing.T) {
	a := []float64{1, 100, 2, 200}
	b := []float64{3, 300, 4, 400}

	tests := []struct {
		name string
		p    InterpParams
		want []float64
	}{
		{
			name: "pure A",
			p:    InterpParams{AmpScaleA: 1, AmpScaleB: 1, FreqScaleA: 1, FreqScaleB: 1},
			want: []float64{2, 100, 4, 200},
		},
		{
			name: "pure B",
			p:    InterpParams{AmpScaleA: 1, AmpScaleB: 1, FreqScaleA: 1, FreqScaleB: 1, AmpMix: 1, FreqMix: 1},
			want: []float64{6, 300, 8, 400},
		},
		{
			name: "half",
			p:    DefaultInterpParams(),
			want: []float64{4, 200, 6, 300},
		},
		{
			name: "independent scales",
			p:    InterpParams{AmpScaleA: 2, AmpScaleB: 0, FreqScaleA: 0.5, FreqScaleB: 1, AmpMix: 0.25, FreqMix: 0},
			want: []float64{3, 50, 6, 100},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := make([]float64, len(a))
			Interpolate(dst, a, b, tt.p, 2)
			testutil.RequireSliceNearlyEqual(t, dst, tt.want, 1e-12)
		})
	}
}

func TestInterpolateDoesNotTouchReference(t *testing.T) {
	a := []float64{1, 10, 1, 20}
	b := []float64{5, 50, 6, 60}
	orig := append([]float64(nil), b...)

	Interpolate(a, a, b, InterpParams{AmpScaleA: 3, AmpScaleB: 7, FreqScaleA: 2, FreqScaleB: 9, AmpMix: 0.3, FreqMix: 0.6}, 1)

	testutil.RequireSliceNearlyEqual(t, b, orig, 0)
}

func TestCross(t *testing.T) {
	a := []float64{1, 100, 2, 200}
	b := []float64{3, 300, 4, 400}
	dst := make([]float64, 4)

	Cross(dst, a, b, 0.5, 2, 10)

	testutil.RequireSliceNearlyEqual(t, dst, []float64{65, 100, 90, 200}, 1e-12)
}

func TestCrossInPlace(t *testing.T) {
	a := []float64{1, 100, 2, 200}
	b := []float64{1, 1, 1, 1}

	Cross(a, a, b, 1, 1, 1)

	testutil.RequireSliceNearlyEqual(t, a, []float64{2, 100, 3, 200}, 0)
}

func TestWarpGateModes(t *testing.T) {
	tests := []struct {
		mode int
		want string
	}{
		{0, "xxxxxxxxxx"},
		{1, "xxxxxxxxxx"},
		{-1, "xxxxxxxxxx"},
		{3, "..x..x..x."},
		{-5, "....x....x"},
		{math.MinInt, ".........."},
		{math.MaxInt, ".........."},
	}
	for _, tt := range tests {
		g := NewWarpGate(tt.mode)

		got := make([]byte, len(tt.want))
		for i := range got {
			got[i] = '.'
			if g.Next() {
				got[i] = 'x'
			}
		}

		if string(got) != tt.want {
			t.Fatalf("mode %d: got %s, want %s", tt.mode, got, tt.want)
		}

		if g.Prewarp() != (tt.mode > 0) {
			t.Fatalf("mode %d: Prewarp() = %v", tt.mode, g.Prewarp())
		}
	}
}

func TestWarpGateReset(t *testing.T) {
	g := NewWarpGate(-3)
	g.Next()
	g.Next()
	g.Reset()

	if g.Next() || g.Next() || !g.Next() {
		t.Fatal("gate did not restart its count after Reset")
	}
}

func TestPreWarpIdentity(t *testing.T) {
	spectrum := []float64{0.2, 0, 1, 0.1, 0.4, 0.2, 0.9, 0.3, 0.3, 0.4, 0.1, 0.5}
	want := append([]float64(nil), spectrum...)
	env := make([]float64, len(spectrum)/2)

	PreWarp(spectrum, env, 1)

	testutil.RequireSliceNearlyEqual(t, spectrum, want, 1e-12)
}

func TestPreWarpEnvelopeInterpolatesPeaks(t *testing.T) {
	// Peaks at bins 1 and 5, valleys in between.
	spectrum := make([]float64, 2*8)
	for i, m := range []float64{0.5, 1, 0.2, 0.1, 0.3, 0.6, 0.2, 0.1} {
		spectrum[2*i] = m
	}

	env := make([]float64, 8)
	PreWarp(spectrum, env, 1)

	for i, want := range []float64{0.5, 1, 0.9, 0.8, 0.7, 0.6} {
		if math.Abs(env[i]-want) > 1e-12 {
			t.Fatalf("env[%d] = %v, want %v", i, env[i], want)
		}
	}
}

func TestPreWarpUpwardMovesEnvelope(t *testing.T) {
	const bins = 16

	spectrum := make([]float64, 2*bins)
	for i := range bins {
		spectrum[2*i] = 1
	}

	env := make([]float64, bins)
	PreWarp(spectrum, env, 2)

	// Flat envelope: bins whose warped index is in range keep their
	// magnitude, the rest are cleared.
	for i := range bins {
		want := 0.0
		if 2*i < bins {
			want = 1
		}

		if spectrum[2*i] != want {
			t.Fatalf("bin %d magnitude = %v, want %v", i, spectrum[2*i], want)
		}
	}
}
