package dsp

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Hann returns a symmetric Hann window of the given length.
func Hann(length int) []float64 {
	out := make([]float64, length)
	if length == 1 {
		out[0] = 1
		return out
	}

	for i := range out {
		out[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(length-1)))
	}

	return out
}

// ApplyWindow multiplies src by the window coefficients into dst. All three
// slices must have the same length.
func ApplyWindow(dst, src, coeffs []float64) {
	vecmath.MulBlock(dst, src, coeffs)
}
