// Package voice wires frame fetching, spectral blending, phase tracking,
// resynthesis and overlap-add into block-rate voices.
//
// A Reader voice fetches frames of a reference stream. Interp and Cross
// voices read their own stream, merge it with a reader's current frame and
// emit blockSize output samples per block. An Engine owns the voices and runs
// them in the required order: every reader before any dependent voice.
//
// Setup (NewEngine, AddReader, AddInterp, AddCross) may allocate and load
// files. Block processing does neither.
package voice
