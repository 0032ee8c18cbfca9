package core

import "math"

const defaultEpsilon = 1e-12

// SettleTolerance is the fraction of a step remaining when a smoothed value
// is considered settled. Smoothing coefficients are derived so a one-pole
// stage settles to within this tolerance in one time constant.
const SettleTolerance = 0.01

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampUnit limits value to [0, 1].
func ClampUnit(value float64) float64 {
	return Clamp(value, 0, 1)
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// FlushDenormals converts tiny denormal-like values to exact zero.
// This can reduce denormal-related CPU slowdowns in hot DSP loops.
func FlushDenormals(x float64) float64 {
	const epsilon = 1e-30
	if x > -epsilon && x < epsilon {
		return 0
	}

	return x
}

// SmoothingCoefficient derives a per-sample one-pole blend factor from a time
// constant in milliseconds and a sample rate in Hz. The factor is chosen so
// that a step input settles to within [SettleTolerance] of its target after
// timeMs of processing. timeMs <= 0 yields 1 (no smoothing); the result is
// always in [0, 1].
func SmoothingCoefficient(timeMs, sampleRate float64) float64 {
	if timeMs <= 0 || sampleRate <= 0 {
		return 1
	}

	tauSamples := timeMs * 0.001 * sampleRate
	coef := 1 - math.Exp(math.Log(SettleTolerance)/tauSamples)

	return Clamp(coef, 0, 1)
}

// DurationSamples converts a duration in milliseconds to a whole number of
// samples at the given rate, never negative.
func DurationSamples(timeMs, sampleRate float64) int {
	if timeMs <= 0 || sampleRate <= 0 {
		return 0
	}

	return int(timeMs * 0.001 * sampleRate)
}
