// Package mapping provides deterministic scalar transforms for routing
// normalized control values onto effect parameters. All functions are pure
// and clamp their inputs, so they are safe on realtime paths.
package mapping

import "github.com/cwbudde/algo-fxcore/dsp/core"

// MapToSeries quantizes value in [0, 1] onto one element of series by
// partitioning the unit interval into len(series) equal segments. An empty
// series yields 0; a single-element series always yields that element;
// value == 1.0 selects the last element.
func MapToSeries(value float64, series []float64) float64 {
	if len(series) == 0 {
		return 0
	}

	if len(series) == 1 {
		return series[0]
	}

	value = core.ClampUnit(value)

	index := int(value * float64(len(series)))
	if index >= len(series) {
		index = len(series) - 1
	}

	return series[index]
}

// BiasedScale maps value into a sliding half-width window of the unit
// interval positioned by bias:
//
//	bias = 0.0 -> [0.0, 0.5]
//	bias = 0.5 -> [0.0, 1.0]
//	bias = 1.0 -> [0.5, 1.0]
//
// Both inputs are clamped to [0, 1]; the output range always has width at
// least 0.5 and lies within [0, 1].
func BiasedScale(value, bias float64) float64 {
	value = core.ClampUnit(value)
	bias = core.ClampUnit(bias)

	var rangeMin, rangeMax float64
	if bias <= 0.5 {
		rangeMin = 0
		rangeMax = bias + 0.5
	} else {
		rangeMin = bias - 0.5
		rangeMax = 1
	}

	return rangeMin + value*(rangeMax-rangeMin)
}
