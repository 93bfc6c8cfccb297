package dsp

import "math"

// FloorDB is the sentinel returned instead of -Inf for silent content.
const FloorDB = -120.0

// AmpToDB converts a linear amplitude to decibels (20*log10), returning the
// floor sentinel for non-positive values.
func AmpToDB(v float64) float64 {
	if v <= 0 {
		return FloorDB
	}

	db := 20 * math.Log10(v)
	if db < FloorDB {
		return FloorDB
	}

	return db
}

// PowerToDB converts a linear power to decibels (10*log10), returning the
// floor sentinel for non-positive values.
func PowerToDB(v float64) float64 {
	if v <= 0 {
		return FloorDB
	}

	db := 10 * math.Log10(v)
	if db < FloorDB {
		return FloorDB
	}

	return db
}

// DBToAmp converts dB to linear amplitude (20*log10 convention).
func DBToAmp(db float64) float64 {
	return math.Pow(10, db/20)
}

// Clamp limits value to the inclusive range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}

	if value > hi {
		return hi
	}

	return value
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}

	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}

	return math.Sqrt(sumSq / float64(len(signal)))
}

// Peak returns the peak absolute amplitude of the signal.
func Peak(signal []float64) float64 {
	peak := 0.0
	for _, x := range signal {
		a := math.Abs(x)
		if a > peak {
			peak = a
		}
	}

	return peak
}

// Energy returns the sum of squares of the signal.
func Energy(signal []float64) float64 {
	var sum float64
	for _, x := range signal {
		sum += x * x
	}

	return sum
}
