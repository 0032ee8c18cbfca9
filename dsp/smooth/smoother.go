// Package smooth provides the realtime parameter-conditioning primitives:
// a multi-channel one-pole smoother and a hysteresis gate that debounces a
// smoothed control value into a stable boolean mode flag.
//
// Both types are stateful, allocation-free after construction, and owned by
// exactly one execution context; they are not safe for concurrent use.
package smooth

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

// Smoother is an N-channel one-pole exponential smoother. Each channel blends
// its previous output toward the corresponding input by a fixed per-sample
// coefficient derived from the time constant, so a step input settles to
// within [core.SettleTolerance] of its target in approximately that time,
// monotonically and without overshoot.
type Smoother struct {
	coef     float64
	channels int
	state    []float64
}

// NewSmoother creates a smoother with the given time constant in
// milliseconds at the given sample rate.
func NewSmoother(timeMs, sampleRate float64, channels int) (*Smoother, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("smoother sample rate must be > 0: %f", sampleRate)
	}

	if timeMs < 0 {
		return nil, fmt.Errorf("smoother time constant must be >= 0: %f", timeMs)
	}

	if channels <= 0 {
		return nil, fmt.Errorf("smoother channel count must be > 0: %d", channels)
	}

	return &Smoother{
		coef:     core.SmoothingCoefficient(timeMs, sampleRate),
		channels: channels,
		state:    make([]float64, channels),
	}, nil
}

// Channels returns the channel count.
func (s *Smoother) Channels() int { return s.channels }

// Coefficient returns the per-sample blend factor in [0, 1].
func (s *Smoother) Coefficient() float64 { return s.coef }

// Process advances every channel by one sample, blending state toward in and
// writing the result to out. Extra input or output elements beyond the
// channel count are ignored; missing ones leave the corresponding channel at
// its previous value. Called once per audio sample (or block) by its owner.
func (s *Smoother) Process(in, out []float64) {
	n := s.channels
	if len(in) < n {
		n = len(in)
	}

	for i := 0; i < n; i++ {
		s.state[i] += (in[i] - s.state[i]) * s.coef
		s.state[i] = core.FlushDenormals(s.state[i])
	}

	m := s.channels
	if len(out) < m {
		m = len(out)
	}
	copy(out[:m], s.state[:m])
}

// ProcessSample advances channel 0 by one sample and returns its output.
// Convenience for single-channel smoothers.
func (s *Smoother) ProcessSample(in float64) float64 {
	s.state[0] += (in - s.state[0]) * s.coef
	s.state[0] = core.FlushDenormals(s.state[0])
	return s.state[0]
}

// Value returns the current output of channel i without advancing state.
func (s *Smoother) Value(i int) float64 {
	if i < 0 || i >= s.channels {
		return 0
	}
	return s.state[i]
}

// Reset forces every channel to value immediately.
func (s *Smoother) Reset(value float64) {
	for i := range s.state {
		s.state[i] = value
	}
}
