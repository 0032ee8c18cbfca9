// Package dcblock implements a first-order DC blocking filter:
//
//	y[n] = x[n] - x[n-1] + R * y[n-1]
//
// R sets the pole radius; values close to 1 give a lower cutoff and less
// low-frequency loss.
package dcblock

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

// DefaultPole is a common pole radius for audio-rate DC blocking.
const DefaultPole = 0.995

// Filter is a one-pole, one-zero DC blocker.
type Filter struct {
	pole float64
	x1   float64
	y1   float64
}

// New creates a DC blocker with the given pole radius in [0, 1).
func New(pole float64) (*Filter, error) {
	if pole < 0 || pole >= 1 || math.IsNaN(pole) {
		return nil, fmt.Errorf("dc blocker pole must be in [0, 1): %f", pole)
	}

	return &Filter{pole: pole}, nil
}

// Pole returns the pole radius.
func (f *Filter) Pole() float64 { return f.pole }

// Process processes one sample.
func (f *Filter) Process(x float64) float64 {
	y := x - f.x1 + f.pole*f.y1
	f.x1 = x
	f.y1 = core.FlushDenormals(y)
	return y
}

// ProcessInPlace applies the filter to buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.Process(buf[i])
	}
}

// Reset clears filter state.
func (f *Filter) Reset() {
	f.x1 = 0
	f.y1 = 0
}
