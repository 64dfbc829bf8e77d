// Package frame holds loaded phase-vocoder analysis data and the
// nearest-frame lookup used by every voice.
//
// A [File] is immutable after [NewFile] and may be shared by any number of
// voices. A [Fetcher] is per-voice: it owns the one-shot truncation [Latch].
package frame
