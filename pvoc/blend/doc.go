// Package blend merges the spectral frames of two voices.
//
// Frames are interleaved (amplitude, frequency) pairs, one pair per bin.
// [Interpolate] morphs between a driven frame A and a reference frame B with
// independent amplitude and frequency mixes. [Cross] adds the amplitudes of
// both frames on top of A's frequencies. [WarpGate] and [PreWarp] implement
// the spectral warp modes of cross-synthesis.
package blend
