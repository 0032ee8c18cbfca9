package smooth

import (
	"fmt"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

// Gate converts a noisy control value into a stable boolean mode flag. The
// input is smoothed by an internal single-channel [Smoother], thresholded at
// 0.5, then debounced: a candidate flag must be observed continuously for
// the full hold time before it replaces the current flag, and any
// interruption restarts the hold timer.
type Gate struct {
	smoother *Smoother

	currentFlag bool
	pendingFlag bool
	counter     int
	holdSamples int
}

// NewGate creates a gate with the given smoothing time constant and
// hysteresis hold time, both in milliseconds, at the given sample rate.
func NewGate(sampleRate, smoothingMs, holdMs float64) (*Gate, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("gate sample rate must be > 0: %f", sampleRate)
	}

	if holdMs < 0 {
		return nil, fmt.Errorf("gate hold time must be >= 0: %f", holdMs)
	}

	smoother, err := NewSmoother(smoothingMs, sampleRate, 1)
	if err != nil {
		return nil, err
	}

	return &Gate{
		smoother:    smoother,
		holdSamples: core.DurationSamples(holdMs, sampleRate),
	}, nil
}

// HoldSamples returns the debounce threshold in samples.
func (g *Gate) HoldSamples() int { return g.holdSamples }

// Process feeds one sample and returns the stable flag. Deterministic given
// the sample stream; called once per audio sample by its owner.
func (g *Gate) Process(x float64) bool {
	target := g.smoother.ProcessSample(x) >= 0.5

	switch {
	case target == g.currentFlag:
		// Stable; discard any pending candidate.
		g.counter = 0
		g.pendingFlag = g.currentFlag

	case target == g.pendingFlag:
		// Candidate held another sample.
		g.counter++
		if g.counter >= g.holdSamples {
			g.currentFlag = target
			g.counter = 0
		}

	default:
		// New candidate; restart the hold timer.
		g.pendingFlag = target
		g.counter = 1
	}

	return g.currentFlag
}

// Value returns the stable flag without advancing state.
func (g *Gate) Value() bool { return g.currentFlag }

// Reset clears smoother and debounce state back to the false flag.
func (g *Gate) Reset() {
	g.smoother.Reset(0)
	g.currentFlag = false
	g.pendingFlag = false
	g.counter = 0
}
