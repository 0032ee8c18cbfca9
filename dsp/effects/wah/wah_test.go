package wah

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fxcore/internal/testutil"
)

func TestNewValidation(t *testing.T) {
	if _, err := New(0); err == nil {
		t.Fatal("expected error for sample rate 0")
	}

	if _, err := New(48000, WithQ(0)); err == nil {
		t.Fatal("expected error for Q=0")
	}

	if _, err := New(48000, WithFrequencyRangeHz(500, 400)); err == nil {
		t.Fatal("expected error for inverted frequency range")
	}

	if _, err := New(48000, WithFrequencyRangeHz(300, 40000)); err == nil {
		t.Fatal("expected error for range above Nyquist safety margin")
	}

	if _, err := New(48000, WithEnvelopeMs(-1, 80)); err == nil {
		t.Fatal("expected error for negative attack")
	}
}

func TestControlsClampToUnitRange(t *testing.T) {
	w, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}

	w.SetLevel(2)
	w.SetDryWet(-1)
	w.SetWah(1.5)

	if w.Level() != 1 || w.DryWet() != 0 || w.WahAmount() != 1 {
		t.Fatalf("controls not clamped: level=%v dryWet=%v wah=%v",
			w.Level(), w.DryWet(), w.WahAmount())
	}
}

func TestFullyDryIsPassthrough(t *testing.T) {
	w, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}
	w.SetDryWet(0)

	in := testutil.DeterministicSine(440, 48000, 0.5, 256)
	for i, x := range in {
		if got := w.Process(x); got != x {
			t.Fatalf("sample %d: got %v want dry %v", i, got, x)
		}
	}
}

func TestOutputFiniteUnderNoise(t *testing.T) {
	w, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}

	buf := testutil.DeterministicNoise(1, 1.0, 48000)
	w.ProcessInPlace(buf)
	testutil.RequireFinite(t, buf)
}

func TestEnvelopeSweepsCenterFrequency(t *testing.T) {
	w, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}

	if got := w.CurrentCenterHz(); got != defaultMinFreqHz {
		t.Fatalf("idle center: got %v want %v", got, defaultMinFreqHz)
	}

	// A loud signal must push the center frequency up.
	for i := 0; i < 4800; i++ {
		w.Process(1)
	}

	if got := w.CurrentCenterHz(); got < defaultMinFreqHz+500 {
		t.Fatalf("center did not sweep up: %v", got)
	}
}

func TestZeroWahParksSweep(t *testing.T) {
	w, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}
	w.SetWah(0)

	for i := 0; i < 4800; i++ {
		w.Process(1)
	}

	if got := w.CurrentCenterHz(); got != defaultMinFreqHz {
		t.Fatalf("center moved with wah=0: %v", got)
	}
}

func TestZeroLevelSilencesWetPath(t *testing.T) {
	w, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}
	w.SetLevel(0)
	w.SetDryWet(1)

	for i, x := range testutil.DeterministicSine(440, 48000, 0.5, 256) {
		if got := w.Process(x); got != 0 {
			t.Fatalf("sample %d: got %v want 0", i, got)
		}
	}
}

func TestReset(t *testing.T) {
	w, err := New(48000)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 1000; i++ {
		w.Process(1)
	}
	w.Reset()

	if w.CurrentCenterHz() != defaultMinFreqHz {
		t.Fatalf("center not reset: %v", w.CurrentCenterHz())
	}

	if got := w.Process(0); math.Abs(got) > 1e-12 {
		t.Fatalf("state not cleared: %v", got)
	}
}
