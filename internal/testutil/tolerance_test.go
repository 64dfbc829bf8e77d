package testutil

import (
	"math"
	"testing"
)

func TestMaxAbsDiff(t *testing.T) {
	tests := []struct {
		name string
		a, b []float64
		want float64
	}{
		{"identical", []float64{0.25, -0.5, 1}, []float64{0.25, -0.5, 1}, 0},
		{"largest wins", []float64{0, 0.5, -0.5}, []float64{0.125, 0.25, 0.5}, 1},
		{"empty", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MaxAbsDiff(tt.a, tt.b)
			if err != nil {
				t.Fatalf("MaxAbsDiff() error = %v", err)
			}
			if math.Abs(got-tt.want) > 1e-15 {
				t.Fatalf("MaxAbsDiff() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := MaxAbsDiff(make([]float64, 3), make([]float64, 4)); err == nil {
		t.Fatal("MaxAbsDiff() with unequal lengths returned nil error")
	}
}

func TestMaxStepAndMaxAbs(t *testing.T) {
	data := []float64{0, 0.5, -0.25, 0.25}

	if got := MaxStep(data); got != 0.75 {
		t.Fatalf("MaxStep = %v, want 0.75", got)
	}

	if got := MaxAbs(data); got != 0.5 {
		t.Fatalf("MaxAbs = %v, want 0.5", got)
	}

	if got := MaxStep(nil); got != 0 {
		t.Fatalf("MaxStep(nil) = %v, want 0", got)
	}
}
