package resynth

import (
	"math"
	"sync"

	"github.com/cwbudde/algo-pvoc/dsp/window"
)

const (
	kernelLobes         = 6   // zero crossings on each side
	kernelPointsPerLobe = 16  // table resolution per input sample
	kernelBandwidth     = 0.9 // fraction of Nyquist passed
)

// kernel is the Hamming-tapered sinc table shared by every Resampler. It
// depends on the constants above only.
var kernel = sync.OnceValue(buildKernel)

func buildKernel() []float64 {
	n := kernelLobes * kernelPointsPerLobe

	taper, err := window.RightHalf(window.TypeHamming, n)
	if err != nil {
		panic(err)
	}

	tab := make([]float64, n+1)
	tab[0] = 1

	dtheta := kernelBandwidth * math.Pi / kernelPointsPerLobe
	for i := 1; i <= n; i++ {
		theta := float64(i) * dtheta
		tab[i] = math.Sin(theta) / theta * taper[i]
	}

	return tab
}

// kernelAt returns the tabulated kernel at distance u input samples, linearly
// interpolated between table points.
func kernelAt(tab []float64, u float64) float64 {
	pos := math.Abs(u) * kernelPointsPerLobe

	i := int(pos)
	if i >= len(tab)-1 {
		return 0
	}

	frac := pos - float64(i)

	return tab[i] + frac*(tab[i+1]-tab[i])
}

// interpolate reads in at positions start + step*i into out with
// band-limited sinc interpolation. The cutoff follows the read rate so that
// reading faster than 1 sample per output does not alias. Each output is
// normalized by its kernel weight sum, which gives unity gain at DC.
// Samples outside in count as zero.
func interpolate(out, in []float64, start, step float64) {
	tab := kernel()

	cutoff := 1.0
	if step > 1 {
		cutoff = 1 / step
	}

	reach := float64(kernelLobes) / cutoff
	last := len(in) - 1

	for i := range out {
		x := start + step*float64(i)

		lo := max(int(math.Ceil(x-reach)), 0)
		hi := min(int(math.Floor(x+reach)), last)

		var sum, weight float64
		for n := lo; n <= hi; n++ {
			k := kernelAt(tab, (x-float64(n))*cutoff)
			sum += in[n] * k
			weight += k
		}

		if weight != 0 {
			sum /= weight
		}

		out[i] = sum
	}
}
