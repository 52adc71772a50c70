package calculator

import (
	"errors"
	"math"
)

// WindowHigh returns the highest of the last n values (all values if fewer).
func WindowHigh(values []float64, n int) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values provided")
	}
	high := math.Inf(-1)
	for _, v := range tail(values, n) {
		if v > high {
			high = v
		}
	}
	return high, nil
}

// WindowLow returns the lowest of the last n values (all values if fewer).
func WindowLow(values []float64, n int) (float64, error) {
	if len(values) == 0 {
		return 0, errors.New("no values provided")
	}
	low := math.Inf(1)
	for _, v := range tail(values, n) {
		if v < low {
			low = v
		}
	}
	return low, nil
}

func tail(values []float64, n int) []float64 {
	start := len(values) - n
	if start < 0 {
		start = 0
	}
	return values[start:]
}
