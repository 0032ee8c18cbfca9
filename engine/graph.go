package engine

import (
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/delay"
	"github.com/cwbudde/algo-fxcore/dsp/effects/pitch"
	"github.com/cwbudde/algo-fxcore/dsp/effects/wah"
	"github.com/cwbudde/algo-fxcore/dsp/filter/dcblock"
	"github.com/cwbudde/algo-fxcore/dsp/mapping"
	"github.com/cwbudde/algo-fxcore/dsp/smooth"
	"github.com/cwbudde/algo-fxcore/rt/xfer"
)

const delayedMix = 0.5

// Graph is the per-sample effect chain. It conditions the most recently
// delivered parameter vector (smoothing, biased mode gating, series mapping)
// and renders one stereo output sample per call. Every input is clamped at
// the point of use and the final stage saturates, so ProcessSample is total:
// no error path exists at audio rate.
//
// A Graph is owned by the audio context. SetParameters and ProcessSample
// must be called from that single context; cross-context delivery goes
// through the channels owned by [Engine].
type Graph struct {
	cfg Config

	paramSmoother *smooth.Smoother
	biasSmoother  *smooth.Smoother
	switchGate    *smooth.Gate

	line *delay.Line
	tap  int

	wahFx  *wah.Wah
	voice1 *pitch.Shifter
	voice2 *pitch.Shifter
	dcb    *dcblock.Filter

	pitchBias *xfer.FloatCell

	target   [ParamCount]float64
	smoothed [ParamCount]float64
	params   Params

	mode       bool
	mix1, mix2 float64
	transpose1 float64
	transpose2 float64
}

// Snapshot is a read-only view of graph state for presentation surfaces
// (MIDI feedback, displays). No invariant depends on its freshness.
type Snapshot struct {
	Mode       bool
	MixVoice1  float64
	MixVoice2  float64
	Transpose1 float64
	Transpose2 float64
	Params     Params
}

// NewGraph constructs the effect chain. pitchBias is the externally written
// bias cell; nil allocates a private one.
func NewGraph(cfg Config, pitchBias *xfer.FloatCell) (*Graph, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if pitchBias == nil {
		pitchBias = &xfer.FloatCell{}
	}

	paramSmoother, err := smooth.NewSmoother(cfg.ParamSmoothingMs, cfg.SampleRate, ParamCount)
	if err != nil {
		return nil, err
	}

	biasSmoother, err := smooth.NewSmoother(cfg.BiasSmoothingMs, cfg.SampleRate, 1)
	if err != nil {
		return nil, err
	}

	switchGate, err := smooth.NewGate(cfg.SampleRate, cfg.SwitchSmoothingMs, cfg.SwitchHoldMs)
	if err != nil {
		return nil, err
	}

	lineLen := int(cfg.DelaySeconds * cfg.SampleRate)
	line, err := delay.New(lineLen)
	if err != nil {
		return nil, err
	}

	wahFx, err := wah.New(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	voice1, err := pitch.New(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	voice2, err := pitch.New(cfg.SampleRate)
	if err != nil {
		return nil, err
	}

	dcb, err := dcblock.New(dcblock.DefaultPole)
	if err != nil {
		return nil, err
	}

	return &Graph{
		cfg:           cfg,
		paramSmoother: paramSmoother,
		biasSmoother:  biasSmoother,
		switchGate:    switchGate,
		line:          line,
		tap:           lineLen - 2,
		wahFx:         wahFx,
		voice1:        voice1,
		voice2:        voice2,
		dcb:           dcb,
		pitchBias:     pitchBias,
		mix2:          0,
		mix1:          1,
	}, nil
}

// SetParameters replaces the raw parameter target. The graph smooths toward
// it over the configured time constant; it never blocks waiting for a fresh
// vector. Audio context only.
func (g *Graph) SetParameters(v []float64) {
	copy(g.target[:], v)
}

// PitchBias returns the shared bias cell so external writers can steer the
// mode-switch range.
func (g *Graph) PitchBias() *xfer.FloatCell { return g.pitchBias }

// ProcessSample renders one stereo sample. Called exactly once per sample at
// the audio rate.
func (g *Graph) ProcessSample(left, right float64) (float64, float64) {
	bias := g.biasSmoother.ProcessSample(g.pitchBias.Load())

	g.paramSmoother.Process(g.target[:], g.smoothed[:])
	g.params.FromVector(g.smoothed[:])
	p := g.params.Clamped()

	// Mode selection: bias slides the switch threshold, the gate debounces.
	biasedSwitch := mapping.BiasedScale(p.WhichShift, bias)
	g.mode = g.switchGate.Process(biasedSwitch)

	if g.mode {
		g.transpose1 = mapping.MapToSeries(p.Shift, g.cfg.SemitoneSeries)
		g.voice1.SetTransposition(g.transpose1)
		g.mix1, g.mix2 = 1, 0
	} else {
		thirdDown := -8.0
		if p.Shift > 0.5 {
			thirdDown = -9
		}
		fifthDown := -7.0

		g.transpose1 = thirdDown
		g.transpose2 = fifthDown
		g.voice1.SetTransposition(thirdDown)
		g.voice2.SetTransposition(fifthDown)
		g.mix1, g.mix2 = 0.5, 0.5
	}

	g.wahFx.SetLevel(p.WahLevel)
	g.wahFx.SetDryWet(p.WahDryWet)
	g.wahFx.SetWah(p.WahWah)

	// Signal path: mono sum -> tempo-locked delay tap -> wah -> pitch
	// voices -> DC blocker -> mix back -> soft clip.
	y := left + right
	// The tempo-locked delay runs open loop; DelayFeedback is delivered and
	// smoothed but not yet routed into the regeneration path.
	dly := g.line.Process(y, g.tap, 0)
	dly = g.wahFx.Process(dly)

	shifted := g.voice1.Process(dly)*g.mix1 + g.voice2.Process(dly)*g.mix2
	dly = g.dcb.Process(shifted)

	y += dly * delayedMix
	y = math.Tanh(y)

	return y, y
}

// Snapshot returns a point-in-time view of mode and parameter state.
func (g *Graph) Snapshot() Snapshot {
	return Snapshot{
		Mode:       g.mode,
		MixVoice1:  g.mix1,
		MixVoice2:  g.mix2,
		Transpose1: g.transpose1,
		Transpose2: g.transpose2,
		Params:     g.params,
	}
}

// Reset clears every stateful stage. Not for steady-state use.
func (g *Graph) Reset() {
	g.paramSmoother.Reset(0)
	g.biasSmoother.Reset(0)
	g.switchGate.Reset()
	g.line.Reset()
	g.wahFx.Reset()
	g.voice1.Reset()
	g.voice2.Reset()
	g.dcb.Reset()

	g.target = [ParamCount]float64{}
	g.smoothed = [ParamCount]float64{}
	g.params = Params{}
	g.mode = false
	g.mix1, g.mix2 = 1, 0
	g.transpose1, g.transpose2 = 0, 0
}
