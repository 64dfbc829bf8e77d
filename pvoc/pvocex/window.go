package pvocex

import "github.com/cwbudde/algo-pvoc/dsp/window"

// PVOC-EX analysis window codes.
const (
	WindowDefault = iota
	WindowHamming
	WindowHann
	WindowKaiser
	WindowRectangular
	WindowCustom
)

var windowNames = [...]string{"default", "hamming", "hann", "kaiser", "rectangular", "custom"}

// WindowName returns the name of a PVOC-EX window code.
func WindowName(code int) string {
	if code < 0 || code >= len(windowNames) {
		return "unknown"
	}
	return windowNames[code]
}

// WindowType maps a PVOC-EX window code to a generator type. ok is false for
// windows the generator does not provide.
func WindowType(code int) (t window.Type, ok bool) {
	switch code {
	case WindowHamming:
		return window.TypeHamming, true
	case WindowDefault, WindowHann:
		return window.TypeHann, true
	case WindowRectangular:
		return window.TypeRectangular, true
	}
	return 0, false
}
