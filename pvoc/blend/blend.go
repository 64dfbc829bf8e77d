package blend

// InterpParams controls Interpolate. A is the driven voice, B the reference
// voice. A mix of 0 yields pure A, 1 yields pure B.
type InterpParams struct {
	AmpScaleA  float64
	AmpScaleB  float64
	FreqScaleA float64
	FreqScaleB float64
	AmpMix     float64
	FreqMix    float64
}

// DefaultInterpParams returns unity scales and a 50/50 mix.
func DefaultInterpParams() InterpParams {
	return InterpParams{
		AmpScaleA:  1,
		AmpScaleB:  1,
		FreqScaleA: 1,
		FreqScaleB: 1,
		AmpMix:     0.5,
		FreqMix:    0.5,
	}
}

// InverseFFTScale returns the scaling the inverse transform applies on top of
// its built-in 1/n normalization. algo-fft's Plan.Inverse already divides by n,
// so this is 1 for every length.
func InverseFFTScale(_ int) float64 {
	return 1
}

// NormalizationScale is the amplitude factor that maps analysis magnitudes to
// time-domain amplitude for a transform of length frameSize. Interpolation and
// cross-synthesis both use it so that their reconstructions match in energy.
func NormalizationScale(frameSize int) float64 {
	return float64(frameSize) * 0.5 * InverseFFTScale(frameSize)
}

// Interpolate writes the morph of a and b into dst. Amplitudes are scaled by
// scale after mixing, frequencies are not. dst may alias a; b is only read.
// All three slices must have the same even length.
func Interpolate(dst, a, b []float64, p InterpParams, scale float64) {
	n := len(dst)
	a = a[:n]
	b = b[:n]

	for i := 0; i+1 < n; i += 2 {
		ampA := a[i] * p.AmpScaleA
		ampB := b[i] * p.AmpScaleB
		frqA := a[i+1] * p.FreqScaleA
		frqB := b[i+1] * p.FreqScaleB

		dst[i] = (ampA + (ampB-ampA)*p.AmpMix) * scale
		dst[i+1] = frqA + (frqB-frqA)*p.FreqMix
	}
}

// Cross writes a cross-synthesis frame into dst: amplitudes are the scaled sum
// of both inputs, frequencies come from a unchanged. dst may alias a.
func Cross(dst, a, b []float64, ampScaleA, ampScaleB, scale float64) {
	n := len(dst)
	a = a[:n]
	b = b[:n]

	for i := 0; i+1 < n; i += 2 {
		dst[i] = (a[i]*ampScaleA + b[i]*ampScaleB) * scale
		dst[i+1] = a[i+1]
	}
}
