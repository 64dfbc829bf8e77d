package blend

// WarpGate decides per block whether a cross-synthesis frame is passed.
//
// Mode 0 passes every block. For mode n != 0 a block counter runs and every
// |n|-th block (the |n|-th, 2|n|-th, ...) passes while all others are
// silenced. Positive modes additionally prewarp the spectral envelope of the
// passed frames by the pitch factor; negative modes pass the frame as is.
type WarpGate struct {
	mode   int
	period uint
	count  uint
}

// NewWarpGate returns a gate for mode.
func NewWarpGate(mode int) WarpGate {
	return WarpGate{mode: mode, period: magnitude(mode)}
}

// magnitude returns |n| without overflowing at math.MinInt.
func magnitude(n int) uint {
	if n < 0 {
		return uint(-(n + 1)) + 1
	}
	return uint(n)
}

// Mode returns the warp mode.
func (g *WarpGate) Mode() int { return g.mode }

// Prewarp reports whether passed frames get envelope prewarping.
func (g *WarpGate) Prewarp() bool { return g.mode > 0 }

// Next advances the gate by one block and reports whether that block passes.
func (g *WarpGate) Next() bool {
	if g.mode == 0 {
		return true
	}

	g.count++
	if g.count < g.period {
		return false
	}

	g.count = 0

	return true
}

// Reset restarts the block counter.
func (g *WarpGate) Reset() { g.count = 0 }

// PreWarp scales the magnitudes of the polar frame spectrum so that its spectral
// envelope is moved by factor. env is scratch of at least len(spectrum)/2 values.
//
// The envelope is estimated by linking spectral peaks with straight lines. A
// bin is a peak when it is a local maximum and the slope from the previous
// peak is not steeper than -64/bins per bin (relative).
func PreWarp(spectrum, env []float64, factor float64) {
	bins := len(spectrum) / 2
	if bins < 2 {
		return
	}

	env = env[:bins]
	eps := -64.0 / float64(bins)

	pk := 0
	env[0] = spectrum[0]
	last := spectrum[0]

	for i := 1; i < bins; i++ {
		mag := spectrum[2*i]

		next := 0.0
		if i < bins-1 {
			next = spectrum[2*(i+1)]
		}

		slope := -10.0
		if env[pk] != 0 {
			slope = (mag - env[pk]) / (env[pk] * float64(i-pk))
		}

		if mag >= last && mag > next && slope > eps {
			env[i] = mag
			fillLinear(env, pk, i)
			pk = i
		}

		last = mag
	}

	if pk < bins-1 {
		env[bins-1] = spectrum[2*(bins-1)]
		fillLinear(env, pk, bins-1)
	}

	for i := range bins {
		j := int(float64(i) * factor)
		if j >= 0 && j < bins && env[i] != 0 {
			spectrum[2*i] *= env[j] / env[i]
		} else {
			spectrum[2*i] = 0
		}
	}
}

func fillLinear(env []float64, from, to int) {
	span := float64(to - from)
	lo, hi := env[from], env[to]

	for j := from + 1; j < to; j++ {
		env[j] = lo + (hi-lo)*float64(j-from)/span
	}
}
