package engine

import (
	"fmt"
	"math/rand"

	"github.com/cwbudde/algo-fxcore/analysis"
	"github.com/cwbudde/algo-fxcore/dsp/core"
)

// ParamSource produces the parameter vectors the control context delivers to
// the audio context. Implementations are chosen at construction; the engine
// never swaps sources at runtime.
//
// Observe feeds the most recent analysis vector back into the source, Next
// returns the vector to deliver this tick. Both run on the control context
// only, so implementations need no internal locking.
type ParamSource interface {
	Observe(features []float64)
	Next() []float64
}

// ConstantSource always returns the same vector. Useful as a pedal-style
// static preset and as the deterministic source in tests.
type ConstantSource struct {
	vector [ParamCount]float64
}

// NewConstantSource copies v (wire order, short vectors zero-fill).
func NewConstantSource(v []float64) *ConstantSource {
	s := &ConstantSource{}
	copy(s.vector[:], v)
	return s
}

// Set replaces the emitted vector. Control context only.
func (s *ConstantSource) Set(v []float64) {
	s.vector = [ParamCount]float64{}
	copy(s.vector[:], v)
}

// Observe ignores the analysis feed.
func (s *ConstantSource) Observe([]float64) {}

// Next returns the stored vector.
func (s *ConstantSource) Next() []float64 { return s.vector[:] }

// RandomWalkSource drifts every parameter through [0, 1] with a bounded
// random step, optionally steered by the analysis feed: louder input speeds
// the walk up, silence freezes it. The generative mode of the original
// hardware build.
type RandomWalkSource struct {
	rng      *rand.Rand
	step     float64
	reactive bool

	energy float64
	vector [ParamCount]float64
}

// RandomWalkOption mutates a RandomWalkSource at construction.
type RandomWalkOption func(*RandomWalkSource) error

// WithWalkStep sets the maximum per-tick step size.
func WithWalkStep(step float64) RandomWalkOption {
	return func(s *RandomWalkSource) error {
		if step <= 0 || step > 1 {
			return fmt.Errorf("walk step must be in (0, 1]: %f", step)
		}
		s.step = step
		return nil
	}
}

// WithReactiveWalk scales the walk speed by observed signal energy.
func WithReactiveWalk(reactive bool) RandomWalkOption {
	return func(s *RandomWalkSource) error {
		s.reactive = reactive
		return nil
	}
}

// NewRandomWalkSource creates a walk seeded for reproducibility.
func NewRandomWalkSource(seed int64, opts ...RandomWalkOption) (*RandomWalkSource, error) {
	s := &RandomWalkSource{
		rng:    rand.New(rand.NewSource(seed)),
		step:   0.02,
		energy: 1,
	}

	for i := range s.vector {
		s.vector[i] = s.rng.Float64()
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Observe records the RMS feature as the walk-speed scale.
func (s *RandomWalkSource) Observe(features []float64) {
	if !s.reactive || len(features) <= analysis.FeatureRMS {
		return
	}
	s.energy = core.ClampUnit(features[analysis.FeatureRMS])
}

// Next advances the walk one tick and returns the current vector.
func (s *RandomWalkSource) Next() []float64 {
	scale := s.step
	if s.reactive {
		scale *= s.energy
	}

	for i := range s.vector {
		s.vector[i] = core.ClampUnit(s.vector[i] + (s.rng.Float64()*2-1)*scale)
	}

	return s.vector[:]
}
