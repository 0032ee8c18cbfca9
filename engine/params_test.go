package engine

import "testing"

func TestParamsRoundTrip(t *testing.T) {
	p := Params{
		WhichShift:    0.1,
		Shift:         0.2,
		Shift2:        0.3,
		DelayFeedback: 0.4,
		WahLevel:      0.5,
		WahDryWet:     0.6,
		WahWah:        0.7,
	}

	var v [ParamCount]float64
	if n := p.ToVector(v[:]); n != ParamCount {
		t.Fatalf("ToVector wrote %d elements want %d", n, ParamCount)
	}

	var q Params
	q.FromVector(v[:])

	if q != p {
		t.Fatalf("round trip mismatch: got %+v want %+v", q, p)
	}
}

func TestFromVectorShortZeroFills(t *testing.T) {
	p := Params{WahWah: 0.9}
	p.FromVector([]float64{0.5, 0.25})

	if p.WhichShift != 0.5 || p.Shift != 0.25 {
		t.Fatalf("prefix not applied: %+v", p)
	}

	if p.WahWah != 0 {
		t.Fatalf("missing element should zero-fill, got %v", p.WahWah)
	}
}

func TestClamped(t *testing.T) {
	p := Params{WhichShift: -0.5, Shift: 1.5, WahLevel: 0.5}
	c := p.Clamped()

	if c.WhichShift != 0 || c.Shift != 1 || c.WahLevel != 0.5 {
		t.Fatalf("clamp failed: %+v", c)
	}
}
