package calculator

import "math"

// RollingMean returns the trailing simple moving average of values over period.
// Positions before the window is full are NaN.
func RollingMean(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 0 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		out[i] = windowMean(values[i-period+1 : i+1])
	}
	return out
}

// RollingStd returns the trailing sample standard deviation (divisor n-1) of
// values over period. Positions before the window is full are NaN.
func RollingStd(values []float64, period int) []float64 {
	out := nanSlice(len(values))
	if period <= 1 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		window := values[i-period+1 : i+1]
		if constantWindow(window) {
			out[i] = 0
			continue
		}
		mean := windowMean(window)
		ss := 0.0
		for _, v := range window {
			d := v - mean
			ss += d * d
		}
		out[i] = math.Sqrt(ss / float64(period-1))
	}
	return out
}

// PctChange returns values[i]/values[i-1] - 1, NaN at position 0.
func PctChange(values []float64) []float64 {
	out := nanSlice(len(values))
	for i := 1; i < len(values); i++ {
		out[i] = (values[i] - values[i-1]) / values[i-1]
	}
	return out
}

// windowMean is recomputed per window instead of kept as a running sum. A
// window of identical values returns that value unchanged; summing 0.1 twenty
// times does not give 2.0.
func windowMean(window []float64) float64 {
	if constantWindow(window) {
		return window[0]
	}
	sum := 0.0
	for _, v := range window {
		sum += v
	}
	return sum / float64(len(window))
}

func constantWindow(window []float64) bool {
	for _, v := range window[1:] {
		if v != window[0] {
			return false
		}
	}
	return true
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
