// Package pitch implements a per-sample delay-line pitch shifter.
//
// Two taps scan a circular delay line at a rate set by the pitch ratio and
// are crossfaded with complementary triangular gains, so a tap is silent
// whenever its delay wraps. This trades the fidelity of block-based
// time-domain stretching for a strictly bounded per-sample cost, which is
// what a hard audio deadline requires.
package pitch

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-fxcore/dsp/delay"
)

const (
	defaultWindowMs = 80.0

	minWindowMs = 5.0
	maxWindowMs = 250.0

	// MinSemitones and MaxSemitones bound SetTransposition.
	MinSemitones = -24.0
	MaxSemitones = 24.0
)

// Shifter transposes a mono signal by a semitone amount that can change at
// audio rate. Latency is half the scan window.
type Shifter struct {
	sampleRate float64
	windowMs   float64

	window    float64 // scan window in samples
	line      *delay.Line
	phase     float64
	semitones float64
	ratio     float64
}

// Option mutates shifter construction parameters.
type Option func(*Shifter) error

// WithWindowMs sets the scan window length in milliseconds. Shorter windows
// lower latency but modulate low frequencies more audibly.
func WithWindowMs(windowMs float64) Option {
	return func(s *Shifter) error {
		if windowMs < minWindowMs || windowMs > maxWindowMs || math.IsNaN(windowMs) {
			return fmt.Errorf("pitch shifter window must be in [%v, %v] ms: %f", minWindowMs, maxWindowMs, windowMs)
		}

		s.windowMs = windowMs

		return nil
	}
}

// New constructs a pitch shifter at unity transposition.
func New(sampleRate float64, opts ...Option) (*Shifter, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("pitch shifter sample rate must be > 0 and finite: %f", sampleRate)
	}

	s := &Shifter{
		sampleRate: sampleRate,
		windowMs:   defaultWindowMs,
		ratio:      1,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.window = math.Floor(s.windowMs * 0.001 * sampleRate)

	// Headroom for the interpolation kernel beyond the deepest tap.
	line, err := delay.New(int(s.window) + 4)
	if err != nil {
		return nil, err
	}
	s.line = line

	return s, nil
}

// SampleRate returns the sample rate in Hz.
func (s *Shifter) SampleRate() float64 { return s.sampleRate }

// WindowMs returns the scan window in milliseconds.
func (s *Shifter) WindowMs() float64 { return s.windowMs }

// Semitones returns the current transposition in semitones.
func (s *Shifter) Semitones() float64 { return s.semitones }

// Ratio returns the current pitch ratio (2.0 = one octave up).
func (s *Shifter) Ratio() float64 { return s.ratio }

// SetTransposition sets the shift in semitones, clamped to
// [MinSemitones, MaxSemitones]. NaN is ignored. Safe to call per sample.
func (s *Shifter) SetTransposition(semitones float64) {
	if math.IsNaN(semitones) {
		return
	}

	if semitones < MinSemitones {
		semitones = MinSemitones
	} else if semitones > MaxSemitones {
		semitones = MaxSemitones
	}

	if semitones == s.semitones {
		return
	}

	s.semitones = semitones
	s.ratio = math.Exp2(semitones / 12)
}

// Process shifts one sample.
func (s *Shifter) Process(x float64) float64 {
	w := s.window
	half := w * 0.5

	phaseA := s.phase
	phaseB := phaseA + half
	if phaseB >= w {
		phaseB -= w
	}

	// Complementary triangular gains; a tap is silent at its wrap point.
	gainA := triangularGain(phaseA, half)
	gainB := triangularGain(phaseB, half)

	a := s.line.ReadFractional(1 + phaseA)
	b := s.line.ReadFractional(1 + phaseB)

	s.line.Write(x)

	s.phase += 1 - s.ratio
	for s.phase >= w {
		s.phase -= w
	}
	for s.phase < 0 {
		s.phase += w
	}

	return a*gainA + b*gainB
}

// ProcessInPlace shifts buf in place.
func (s *Shifter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = s.Process(buf[i])
	}
}

// Reset clears line state and rewinds the scan phase.
func (s *Shifter) Reset() {
	s.line.Reset()
	s.phase = 0
}

func triangularGain(phase, half float64) float64 {
	if phase < half {
		return phase / half
	}
	return (2*half - phase) / half
}
