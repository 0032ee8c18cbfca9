// Package analysis implements the machine-listening front end of the audio
// context. It accumulates rendered samples into fixed-size blocks and emits a
// fixed-length feature vector per block: RMS level, spectral centroid,
// spectral flatness, and spectral flux, each normalized to [0, 1].
//
// The extractor allocates only at construction; the per-sample Push and the
// per-block analysis run allocation-free, so the audio context can drive it
// inside its deadline.
package analysis

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/dsp/window"
)

// FeatureCount is the analysis vector length.
const FeatureCount = 4

// Feature vector indices.
const (
	FeatureRMS = iota
	FeatureCentroid
	FeatureFlatness
	FeatureFlux
)

const fluxFloor = 1e-9

// Extractor converts a mono sample stream into per-block feature vectors.
// Owned by the audio context; not safe for concurrent use.
type Extractor struct {
	sampleRate float64
	blockSize  int

	coeffs []float64

	block    []float64
	fill     int
	windowed []float64

	fftIn  []complex128
	fftOut []complex128
	re     []float64
	im     []float64
	mag    []float64
	prev   []float64

	features []float64

	plan *algofft.Plan[complex128]
}

// New creates an extractor. The block size must be a power of two so the FFT
// plan stays radix-2.
func New(sampleRate float64, opts ...core.ProcessorOption) (*Extractor, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("extractor sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := core.ApplyProcessorOptions(opts...)
	cfg.SampleRate = sampleRate

	blockSize := cfg.BlockSize
	if blockSize <= 0 || blockSize&(blockSize-1) != 0 {
		return nil, fmt.Errorf("extractor block size must be a power of two: %d", blockSize)
	}

	plan, err := algofft.NewPlan64(blockSize)
	if err != nil {
		return nil, err
	}

	bins := blockSize/2 + 1

	return &Extractor{
		sampleRate: sampleRate,
		blockSize:  blockSize,
		coeffs:     window.Generate(window.TypeHann, blockSize),
		block:      make([]float64, blockSize),
		windowed:   make([]float64, blockSize),
		fftIn:      make([]complex128, blockSize),
		fftOut:     make([]complex128, blockSize),
		re:         make([]float64, bins),
		im:         make([]float64, bins),
		mag:        make([]float64, bins),
		prev:       make([]float64, bins),
		features:   make([]float64, FeatureCount),
		plan:       plan,
	}, nil
}

// SampleRate returns the sample rate in Hz.
func (e *Extractor) SampleRate() float64 { return e.sampleRate }

// BlockSize returns the analysis block size in samples.
func (e *Extractor) BlockSize() int { return e.blockSize }

// Push accumulates one sample. When a block completes it returns the feature
// vector and true; the returned slice is reused by the next block, so the
// caller must copy it before the next Push if it needs to keep it. (Copying
// into a channel slot, the usual destination, does exactly that.)
func (e *Extractor) Push(x float64) ([]float64, bool) {
	e.block[e.fill] = x
	e.fill++

	if e.fill < e.blockSize {
		return nil, false
	}

	e.fill = 0
	e.analyze()

	return e.features, true
}

// Reset clears block fill and spectral history.
func (e *Extractor) Reset() {
	e.fill = 0
	for i := range e.prev {
		e.prev[i] = 0
	}
}

func (e *Extractor) analyze() {
	// Time-domain level before windowing.
	sum := 0.0
	for _, v := range e.block {
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(e.blockSize))

	if err := window.Apply(e.windowed, e.block, e.coeffs); err != nil {
		// Lengths are fixed at construction; treat as silence.
		for i := range e.features {
			e.features[i] = 0
		}
		return
	}

	for i, v := range e.windowed {
		e.fftIn[i] = complex(v, 0)
	}

	if err := e.plan.Forward(e.fftOut, e.fftIn); err != nil {
		for i := range e.features {
			e.features[i] = 0
		}
		return
	}

	for i := range e.mag {
		e.re[i] = real(e.fftOut[i])
		e.im[i] = imag(e.fftOut[i])
	}
	vecmath.Magnitude(e.mag, e.re, e.im)

	e.features[FeatureRMS] = core.ClampUnit(rms * math.Sqrt2)
	e.features[FeatureCentroid] = e.centroid()
	e.features[FeatureFlatness] = e.flatness()
	e.features[FeatureFlux] = e.flux()

	copy(e.prev, e.mag)
}

// centroid returns the spectral centroid as a fraction of Nyquist.
func (e *Extractor) centroid() float64 {
	var weighted, total float64
	for i, m := range e.mag {
		weighted += float64(i) * m
		total += m
	}

	if total <= fluxFloor {
		return 0
	}

	return core.ClampUnit(weighted / total / float64(len(e.mag)-1))
}

// flatness returns the ratio of geometric to arithmetic mean of the power
// spectrum: 1 for white noise, near 0 for a pure tone.
func (e *Extractor) flatness() float64 {
	var logSum, sum float64
	n := float64(len(e.mag))
	for _, m := range e.mag {
		p := m*m + fluxFloor
		logSum += math.Log(p)
		sum += p
	}

	arith := sum / n
	if arith <= 0 {
		return 0
	}

	geo := math.Exp(logSum / n)

	return core.ClampUnit(geo / arith)
}

// flux returns the positive spectral difference against the previous block,
// normalized by the current spectral energy.
func (e *Extractor) flux() float64 {
	var rise, total float64
	for i, m := range e.mag {
		if d := m - e.prev[i]; d > 0 {
			rise += d
		}
		total += m
	}

	if total <= fluxFloor {
		return 0
	}

	return core.ClampUnit(rise / total)
}
