// Package window provides the analysis window functions used by the feature
// extractor.
package window

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Type identifies a window function.
type Type int

const (
	TypeRectangular Type = iota
	TypeHann
	TypeHamming
	TypeBlackman
)

// String returns the window name.
func (t Type) String() string {
	switch t {
	case TypeRectangular:
		return "rectangular"
	case TypeHann:
		return "hann"
	case TypeHamming:
		return "hamming"
	case TypeBlackman:
		return "blackman"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// Generate returns the window coefficients for the given type and length.
// Length <= 0 returns nil; length 1 returns [1].
func Generate(t Type, length int) []float64 {
	if length <= 0 {
		return nil
	}

	coeffs := make([]float64, length)
	if length == 1 {
		coeffs[0] = 1
		return coeffs
	}

	n := float64(length - 1)
	for i := range coeffs {
		x := float64(i) / n
		switch t {
		case TypeHann:
			coeffs[i] = 0.5 - 0.5*math.Cos(2*math.Pi*x)
		case TypeHamming:
			coeffs[i] = 0.54 - 0.46*math.Cos(2*math.Pi*x)
		case TypeBlackman:
			coeffs[i] = 0.42 - 0.5*math.Cos(2*math.Pi*x) + 0.08*math.Cos(4*math.Pi*x)
		default:
			coeffs[i] = 1
		}
	}

	return coeffs
}

// Apply multiplies samples by coeffs element-wise into out. All three slices
// must have equal length.
func Apply(out, samples, coeffs []float64) error {
	if len(samples) != len(coeffs) || len(out) != len(samples) {
		return fmt.Errorf("window apply length mismatch: out=%d samples=%d coeffs=%d",
			len(out), len(samples), len(coeffs))
	}

	vecmath.MulBlock(out, samples, coeffs)

	return nil
}

// ApplyInPlace multiplies samples by coeffs element-wise in place.
func ApplyInPlace(samples, coeffs []float64) error {
	if len(samples) != len(coeffs) {
		return fmt.Errorf("window apply length mismatch: samples=%d coeffs=%d",
			len(samples), len(coeffs))
	}

	vecmath.MulBlockInPlace(samples, coeffs)

	return nil
}

// CoherentGain returns the mean of the window coefficients, used to
// normalize spectral magnitudes.
func CoherentGain(coeffs []float64) float64 {
	if len(coeffs) == 0 {
		return 0
	}

	sum := 0.0
	for _, c := range coeffs {
		sum += c
	}

	return sum / float64(len(coeffs))
}
