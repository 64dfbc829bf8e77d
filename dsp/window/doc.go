// Package window generates the window functions used by the phase-vocoder
// resynthesis path: the periodic Hann half window and the Hamming taper of the
// interpolation kernel.
package window
