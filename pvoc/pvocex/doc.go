// Package pvocex reads and writes PVOC-EX analysis files and loads whole
// directories of them into a Bank.
//
// PVOC-EX is a RIFF/WAVE container whose WAVE_FORMAT_EXTENSIBLE format chunk
// carries the PVOC-EX sub-format GUID followed by a PVOCDATA block. Only
// single-precision amplitude/frequency data is supported.
package pvocex
