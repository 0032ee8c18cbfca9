package analysis

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxcore/dsp/core"
	"github.com/cwbudde/algo-fxcore/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for sample rate 0")
	}

	if _, err := New(48000, core.WithBlockSize(1000)); err == nil {
		t.Fatal("expected error for non-power-of-two block size")
	}
}

func feedBlocks(t *testing.T, e *Extractor, signal []float64) [][]float64 {
	t.Helper()

	var out [][]float64
	for _, x := range signal {
		if features, ok := e.Push(x); ok {
			cp := make([]float64, len(features))
			copy(cp, features)
			out = append(out, cp)
		}
	}
	return out
}

func TestEmitsOneVectorPerBlock(t *testing.T) {
	e, err := New(48000, core.WithBlockSize(256))
	if err != nil {
		t.Fatal(err)
	}

	vectors := feedBlocks(t, e, make([]float64, 256*5))
	if len(vectors) != 5 {
		t.Fatalf("got %d vectors want 5", len(vectors))
	}

	for _, v := range vectors {
		if len(v) != FeatureCount {
			t.Fatalf("vector length: got %d want %d", len(v), FeatureCount)
		}
	}
}

func TestFeaturesInUnitRange(t *testing.T) {
	e, err := New(48000, core.WithBlockSize(512))
	if err != nil {
		t.Fatal(err)
	}

	signal := testutil.DeterministicNoise(11, 1.0, 512*8)
	for _, v := range feedBlocks(t, e, signal) {
		for i, f := range v {
			if f < 0 || f > 1 || math.IsNaN(f) {
				t.Fatalf("feature %d out of range: %v", i, f)
			}
		}
	}
}

func TestSilenceYieldsZeroFeatures(t *testing.T) {
	e, err := New(48000, core.WithBlockSize(256))
	if err != nil {
		t.Fatal(err)
	}

	vectors := feedBlocks(t, e, make([]float64, 256))
	if len(vectors) != 1 {
		t.Fatalf("got %d vectors want 1", len(vectors))
	}

	v := vectors[0]
	if v[FeatureRMS] != 0 || v[FeatureCentroid] != 0 || v[FeatureFlux] != 0 {
		t.Fatalf("silence produced non-zero level features: %v", v)
	}
}

func TestSineRMS(t *testing.T) {
	e, err := New(48000, core.WithBlockSize(4096))
	if err != nil {
		t.Fatal(err)
	}

	// Full-scale sine: RMS 1/sqrt(2), normalized by sqrt(2) to ~1.
	signal := testutil.DeterministicSine(1000, 48000, 1, 4096)
	vectors := feedBlocks(t, e, signal)

	if got := vectors[0][FeatureRMS]; math.Abs(got-1) > 0.05 {
		t.Fatalf("sine RMS feature: got %v want ~1", got)
	}
}

func TestCentroidTracksFrequency(t *testing.T) {
	const (
		sampleRate = 48000.0
		blockSize  = 4096
	)

	e, err := New(sampleRate, core.WithBlockSize(blockSize))
	if err != nil {
		t.Fatal(err)
	}

	lowVecs := feedBlocks(t, e, testutil.DeterministicSine(500, sampleRate, 1, blockSize))
	e.Reset()
	highVecs := feedBlocks(t, e, testutil.DeterministicSine(8000, sampleRate, 1, blockSize))

	low := lowVecs[0][FeatureCentroid]
	high := highVecs[0][FeatureCentroid]

	if low >= high {
		t.Fatalf("centroid should rise with frequency: low=%v high=%v", low, high)
	}

	// A 8 kHz tone sits at a third of Nyquist.
	if math.Abs(high-8000/(sampleRate/2)) > 0.1 {
		t.Fatalf("high centroid off: %v", high)
	}
}

func TestFlatnessSeparatesToneFromNoise(t *testing.T) {
	const blockSize = 2048

	e, err := New(48000, core.WithBlockSize(blockSize))
	if err != nil {
		t.Fatal(err)
	}

	toneVecs := feedBlocks(t, e, testutil.DeterministicSine(1000, 48000, 1, blockSize))
	e.Reset()
	noiseVecs := feedBlocks(t, e, testutil.DeterministicNoise(5, 1, blockSize))

	tone := toneVecs[0][FeatureFlatness]
	noise := noiseVecs[0][FeatureFlatness]

	if tone >= noise {
		t.Fatalf("flatness should separate tone from noise: tone=%v noise=%v", tone, noise)
	}
}

func TestFluxSpikesOnOnset(t *testing.T) {
	const blockSize = 1024

	e, err := New(48000, core.WithBlockSize(blockSize))
	if err != nil {
		t.Fatal(err)
	}

	// Silence, then a tone: the onset block shows high flux, the following
	// steady block low flux.
	silence := make([]float64, blockSize)
	tone := testutil.DeterministicSine(1000, 48000, 1, 2*blockSize)

	feedBlocks(t, e, silence)
	vectors := feedBlocks(t, e, tone)

	if len(vectors) != 2 {
		t.Fatalf("got %d vectors want 2", len(vectors))
	}

	onset := vectors[0][FeatureFlux]
	steady := vectors[1][FeatureFlux]

	if onset < 0.5 {
		t.Fatalf("onset flux too low: %v", onset)
	}

	if steady >= onset {
		t.Fatalf("steady flux should drop: onset=%v steady=%v", onset, steady)
	}
}
