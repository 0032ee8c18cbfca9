package engine

import "github.com/cwbudde/algo-fxcore/dsp/core"

// ParamCount is the length of the raw parameter vector the control context
// delivers, one slot per field of [Params].
const ParamCount = 7

// Parameter vector indices, in wire order.
const (
	ParamWhichShift = iota
	ParamShift
	ParamShift2
	ParamDelayFeedback
	ParamWahLevel
	ParamWahDryWet
	ParamWahWah
)

// Params is the named form of one parameter vector. All fields are nominal
// in [0, 1]; consumers clamp at the point of use.
type Params struct {
	WhichShift    float64
	Shift         float64
	Shift2        float64
	DelayFeedback float64
	WahLevel      float64
	WahDryWet     float64
	WahWah        float64
}

// FromVector fills p from a flat vector in wire order. Missing elements
// leave the corresponding fields at zero; extra elements are ignored.
func (p *Params) FromVector(v []float64) {
	var buf [ParamCount]float64
	copy(buf[:], v)

	p.WhichShift = buf[ParamWhichShift]
	p.Shift = buf[ParamShift]
	p.Shift2 = buf[ParamShift2]
	p.DelayFeedback = buf[ParamDelayFeedback]
	p.WahLevel = buf[ParamWahLevel]
	p.WahDryWet = buf[ParamWahDryWet]
	p.WahWah = buf[ParamWahWah]
}

// ToVector writes p into dst in wire order and returns the number of
// elements written. dst shorter than [ParamCount] receives a prefix.
func (p Params) ToVector(dst []float64) int {
	src := [ParamCount]float64{
		ParamWhichShift:    p.WhichShift,
		ParamShift:         p.Shift,
		ParamShift2:        p.Shift2,
		ParamDelayFeedback: p.DelayFeedback,
		ParamWahLevel:      p.WahLevel,
		ParamWahDryWet:     p.WahDryWet,
		ParamWahWah:        p.WahWah,
	}

	return copy(dst, src[:])
}

// Clamped returns a copy with every field limited to [0, 1].
func (p Params) Clamped() Params {
	return Params{
		WhichShift:    core.ClampUnit(p.WhichShift),
		Shift:         core.ClampUnit(p.Shift),
		Shift2:        core.ClampUnit(p.Shift2),
		DelayFeedback: core.ClampUnit(p.DelayFeedback),
		WahLevel:      core.ClampUnit(p.WahLevel),
		WahDryWet:     core.ClampUnit(p.WahDryWet),
		WahWah:        core.ClampUnit(p.WahWah),
	}
}
