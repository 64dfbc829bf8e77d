// Package resynth turns a polar phase-vocoder frame back into a windowed
// time-domain segment, optionally resampled to realize pitch scaling.
//
// The inverse transform is centred: odd bins are negated before the IFFT so
// that the frame's time origin sits in the middle of the output. Segments are
// always 2*blockSize samples long and carry a periodic Hann window, so
// consecutive segments overlap-added at hop blockSize sum to unity gain.
package resynth
