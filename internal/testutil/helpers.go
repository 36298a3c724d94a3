// Package testutil provides reusable test helpers for signal generator tests.
package testutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Default tolerances for various test scenarios.
const (
	// Float32Tolerance covers one float32 rounding of a unit-range value.
	Float32Tolerance = 1e-6

	// DBTolerance is used when comparing levels in dB.
	DBTolerance = 0.01

	// FrequencyTolerance is the relative tolerance for measured frequencies.
	FrequencyTolerance = 0.01
)

// SineReference returns float32(amp*sin(k*2π*freq/rate + theta)) for k in
// [start, start+n).
func SineReference(start, n int, freq, rate, amp, theta float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		k := float64(start + i)
		out[i] = float32(amp * math.Sin(k*2*math.Pi*freq/rate+theta))
	}
	return out
}

// AssertSamplesInDelta verifies element-wise closeness of two sample runs.
func AssertSamplesInDelta(t *testing.T, expected, actual []float32, delta float64, msgAndArgs ...any) bool {
	t.Helper()
	if !assert.Len(t, actual, len(expected), msgAndArgs...) {
		return false
	}
	for i := range expected {
		if !assert.InDelta(t, expected[i], actual[i], delta,
			"sample %d: expected %f, got %f", i, expected[i], actual[i]) {
			return false
		}
	}
	return true
}

// AssertNoNaNOrInf verifies that no samples are NaN or Inf.
func AssertNoNaNOrInf(t *testing.T, s []float32, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		f := float64(v)
		if math.IsNaN(f) {
			return assert.Fail(t, "found NaN", "s[%d] is NaN", i)
		}
		if math.IsInf(f, 0) {
			return assert.Fail(t, "found Inf", "s[%d] is Inf", i)
		}
	}
	return true
}

// AssertAllInRange verifies that all samples are within [min, max].
func AssertAllInRange(t *testing.T, s []float32, minVal, maxVal float64, msgAndArgs ...any) bool {
	t.Helper()
	for i, v := range s {
		if float64(v) < minVal || float64(v) > maxVal {
			return assert.Fail(t, "value out of range",
				"s[%d]=%f is outside range [%f, %f]", i, v, minVal, maxVal)
		}
	}
	return true
}

// AssertRelativeError verifies that the relative error between actual and expected is within tolerance.
func AssertRelativeError(t *testing.T, expected, actual, tolerance float64, msgAndArgs ...any) bool {
	t.Helper()
	if expected == 0 {
		return assert.InDelta(t, expected, actual, tolerance, msgAndArgs...)
	}
	relError := math.Abs(actual-expected) / math.Abs(expected)
	return assert.LessOrEqual(t, relError, tolerance,
		"relative error %e exceeds tolerance %e (expected=%f, actual=%f)",
		relError, tolerance, expected, actual)
}

// CountEqual returns how many samples equal v exactly.
func CountEqual(s []float32, v float32) int {
	n := 0
	for _, x := range s {
		if x == v {
			n++
		}
	}
	return n
}
