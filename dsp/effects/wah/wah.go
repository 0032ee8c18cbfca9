// Package wah implements an envelope-followed band-pass wah effect with the
// three normalized controls the effect graph drives per sample: Level (wet
// gain), DryWet (mix), and Wah (sweep depth).
package wah

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/core"
)

const (
	defaultMinFreqHz = 300.0
	defaultMaxFreqHz = 2200.0
	defaultQ         = 0.8
	defaultAttackMs  = 2.0
	defaultReleaseMs = 80.0

	envelopeSensitivity = 2.0
	wetGainBoost        = 2.0

	nyquistSafetyRatio = 0.49
)

// Option mutates wah construction parameters.
type Option func(*config) error

type config struct {
	minFreqHz float64
	maxFreqHz float64
	q         float64
	attackMs  float64
	releaseMs float64
}

func defaultConfig() config {
	return config{
		minFreqHz: defaultMinFreqHz,
		maxFreqHz: defaultMaxFreqHz,
		q:         defaultQ,
		attackMs:  defaultAttackMs,
		releaseMs: defaultReleaseMs,
	}
}

// WithFrequencyRangeHz sets the envelope-swept band-pass center range in Hz.
func WithFrequencyRangeHz(minFreqHz, maxFreqHz float64) Option {
	return func(cfg *config) error {
		if minFreqHz <= 0 || math.IsNaN(minFreqHz) || math.IsInf(minFreqHz, 0) {
			return fmt.Errorf("wah min frequency must be > 0 and finite: %f", minFreqHz)
		}

		if maxFreqHz <= minFreqHz || math.IsNaN(maxFreqHz) || math.IsInf(maxFreqHz, 0) {
			return fmt.Errorf("wah max frequency must be > min frequency and finite: min=%f max=%f", minFreqHz, maxFreqHz)
		}

		cfg.minFreqHz = minFreqHz
		cfg.maxFreqHz = maxFreqHz

		return nil
	}
}

// WithQ sets filter Q (> 0).
func WithQ(q float64) Option {
	return func(cfg *config) error {
		if q <= 0 || math.IsNaN(q) || math.IsInf(q, 0) {
			return fmt.Errorf("wah Q must be > 0 and finite: %f", q)
		}

		cfg.q = q

		return nil
	}
}

// WithEnvelopeMs sets envelope attack and release times in milliseconds.
func WithEnvelopeMs(attackMs, releaseMs float64) Option {
	return func(cfg *config) error {
		if attackMs < 0 || math.IsNaN(attackMs) || math.IsInf(attackMs, 0) {
			return fmt.Errorf("wah attack must be >= 0 and finite: %f", attackMs)
		}

		if releaseMs < 0 || math.IsNaN(releaseMs) || math.IsInf(releaseMs, 0) {
			return fmt.Errorf("wah release must be >= 0 and finite: %f", releaseMs)
		}

		cfg.attackMs = attackMs
		cfg.releaseMs = releaseMs

		return nil
	}
}

// Wah is an envelope-following band-pass effect. The three runtime controls
// are normalized to [0, 1] and clamped on write, so the per-sample path has
// no failure modes.
type Wah struct {
	sampleRate float64
	minFreqHz  float64
	maxFreqHz  float64
	q          float64

	level  float64
	dryWet float64
	wah    float64

	envelope      float64
	currentFreqHz float64

	attackCoef  float64
	releaseCoef float64

	b0 float64
	b2 float64
	a1 float64
	a2 float64

	z1 float64
	z2 float64
}

// New creates a wah with practical defaults and optional overrides.
func New(sampleRate float64, opts ...Option) (*Wah, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("wah sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	maxAllowed := sampleRate * nyquistSafetyRatio
	if cfg.maxFreqHz >= maxAllowed {
		return nil, fmt.Errorf("wah max frequency must be below %0.2f * sampleRate (%f): %f", nyquistSafetyRatio, maxAllowed, cfg.maxFreqHz)
	}

	w := &Wah{
		sampleRate: sampleRate,
		minFreqHz:  cfg.minFreqHz,
		maxFreqHz:  cfg.maxFreqHz,
		q:          cfg.q,
		level:      1,
		dryWet:     1,
		wah:        1,
	}

	w.attackCoef = core.SmoothingCoefficient(cfg.attackMs, sampleRate)
	w.releaseCoef = core.SmoothingCoefficient(cfg.releaseMs, sampleRate)
	w.currentFreqHz = w.minFreqHz
	w.updateFilterCoefficients(w.currentFreqHz)

	return w, nil
}

// SetLevel sets the wet gain control, clamped to [0, 1].
func (w *Wah) SetLevel(level float64) {
	w.level = core.ClampUnit(level)
}

// SetDryWet sets the dry/wet mix, clamped to [0, 1].
func (w *Wah) SetDryWet(mix float64) {
	w.dryWet = core.ClampUnit(mix)
}

// SetWah sets the sweep depth, clamped to [0, 1]. Zero parks the filter at
// its minimum center frequency.
func (w *Wah) SetWah(amount float64) {
	w.wah = core.ClampUnit(amount)
}

// Level returns the wet gain control.
func (w *Wah) Level() float64 { return w.level }

// DryWet returns the dry/wet mix.
func (w *Wah) DryWet() float64 { return w.dryWet }

// WahAmount returns the sweep depth.
func (w *Wah) WahAmount() float64 { return w.wah }

// SampleRate returns the sample rate in Hz.
func (w *Wah) SampleRate() float64 { return w.sampleRate }

// CurrentCenterHz returns the instantaneous swept center frequency in Hz.
func (w *Wah) CurrentCenterHz() float64 { return w.currentFreqHz }

// Process processes one sample.
func (w *Wah) Process(x float64) float64 {
	absSample := math.Abs(x)
	if absSample > w.envelope {
		w.envelope += (absSample - w.envelope) * w.attackCoef
	} else {
		w.envelope += (absSample - w.envelope) * w.releaseCoef
	}

	envNorm := w.envelope * envelopeSensitivity
	if envNorm > 1 {
		envNorm = 1
	}

	sweep := envNorm * w.wah
	w.currentFreqHz = w.minFreqHz + sweep*(w.maxFreqHz-w.minFreqHz)
	w.updateFilterCoefficients(w.currentFreqHz)

	wet := w.processBandPass(x) * w.level * wetGainBoost

	return x*(1-w.dryWet) + wet*w.dryWet
}

// ProcessInPlace applies the wah to buf in place.
func (w *Wah) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = w.Process(buf[i])
	}
}

// Reset clears detector and filter state.
func (w *Wah) Reset() {
	w.envelope = 0
	w.currentFreqHz = w.minFreqHz
	w.z1 = 0
	w.z2 = 0
	w.updateFilterCoefficients(w.currentFreqHz)
}

func (w *Wah) updateFilterCoefficients(centerHz float64) {
	freqHz := core.Clamp(centerHz, w.minFreqHz, w.maxFreqHz)
	w0 := 2 * math.Pi * freqHz / w.sampleRate
	sinW0 := math.Sin(w0)
	cosW0 := math.Cos(w0)
	alpha := sinW0 / (2 * w.q)

	invA0 := 1 / (1 + alpha)
	w.b0 = alpha * invA0
	w.b2 = -alpha * invA0
	w.a1 = -2 * cosW0 * invA0
	w.a2 = (1 - alpha) * invA0
}

func (w *Wah) processBandPass(input float64) float64 {
	output := w.b0*input + w.z1
	w.z1 = -w.a1*output + w.z2
	w.z2 = w.b2*input - w.a2*output
	w.z1 = core.FlushDenormals(w.z1)
	w.z2 = core.FlushDenormals(w.z2)
	return output
}
