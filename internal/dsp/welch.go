package dsp

import (
	"fmt"
	"math"

	algofft "github.com/cwbudde/algo-fft"
	"github.com/cwbudde/algo-vecmath"
)

// WelchSpectrum is an averaged single-sided power spectrum.
type WelchSpectrum struct {
	// Freqs holds the bin center frequencies in Hz, [0 .. Nyquist].
	Freqs []float64
	// Power holds the per-bin power with amplitude-spectrum scaling: a full
	// scale sine of amplitude A concentrates approximately A*A/2 in its bin.
	Power []float64
	// BinHz is the frequency spacing between adjacent bins.
	BinHz float64

	// enbw is the window's equivalent noise bandwidth in bins. Summed bin
	// powers divide by it so band integrals read true power.
	enbw float64
}

// Welch estimates the power spectrum by averaging Hann-windowed
// periodograms over 50%-overlapping segments.
//
// segmentSize is rounded down to a power of two and clamped to the signal
// length. Deterministic for a given input.
func Welch(samples []float64, sampleRate float64, segmentSize int) (*WelchSpectrum, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("welch: need at least 2 samples, got %d", len(samples))
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) {
		return nil, fmt.Errorf("welch: invalid sample rate %.3f", sampleRate)
	}

	if segmentSize <= 0 {
		segmentSize = 4096
	}

	if segmentSize > len(samples) {
		segmentSize = len(samples)
	}

	segmentSize = previousPowerOf2(segmentSize)
	if segmentSize < 2 {
		return nil, fmt.Errorf("welch: segment size %d too small", segmentSize)
	}

	coeffs := Hann(segmentSize)

	var windowSum, windowSumSq float64
	for _, w := range coeffs {
		windowSum += w
		windowSumSq += w * w
	}

	plan, err := algofft.NewPlan64(segmentSize)
	if err != nil {
		return nil, fmt.Errorf("welch: fft plan: %w", err)
	}

	binCount := segmentSize/2 + 1
	power := make([]float64, binCount)
	windowed := make([]float64, segmentSize)
	inData := make([]complex128, segmentSize)
	outData := make([]complex128, segmentSize)
	re := make([]float64, binCount)
	im := make([]float64, binCount)
	binPower := make([]float64, binCount)

	hop := segmentSize / 2
	segments := 0

	for start := 0; start+segmentSize <= len(samples); start += hop {
		vecmath.MulBlock(windowed, samples[start:start+segmentSize], coeffs)

		for i, v := range windowed {
			inData[i] = complex(v, 0)
		}

		if err := plan.Forward(outData, inData); err != nil {
			return nil, fmt.Errorf("welch: fft: %w", err)
		}

		for i := 0; i < binCount; i++ {
			re[i] = real(outData[i])
			im[i] = imag(outData[i])
		}

		vecmath.Power(binPower, re, im)
		vecmath.AddBlockInPlace(power, binPower)

		segments++
	}

	if segments == 0 {
		return nil, fmt.Errorf("welch: no full segment in %d samples", len(samples))
	}

	// Amplitude-spectrum scaling: 2/windowSum^2, without doubling DC and
	// Nyquist, averaged across segments.
	scale := 2 / (windowSum * windowSum) / float64(segments)
	halfScale := scale / 2

	for i := range power {
		if i == 0 || i == binCount-1 {
			power[i] *= halfScale
		} else {
			power[i] *= scale
		}
	}

	binHz := sampleRate / float64(segmentSize)

	freqs := make([]float64, binCount)
	for i := range freqs {
		freqs[i] = float64(i) * binHz
	}

	enbw := float64(segmentSize) * windowSumSq / (windowSum * windowSum)

	return &WelchSpectrum{Freqs: freqs, Power: power, BinHz: binHz, enbw: enbw}, nil
}

// BandPower integrates the spectrum over [lowHz, highHz), corrected for
// the window's noise bandwidth. A sine of amplitude A inside the band
// contributes A*A/2; for white noise the bands sum to the signal's total
// power.
func (w *WelchSpectrum) BandPower(lowHz, highHz float64) float64 {
	lo, hi := w.BinRange(lowHz, highHz)

	var sum float64
	for _, p := range w.Power[lo:hi] {
		sum += p
	}

	return sum / w.enbw
}

// BinRange returns the half-open bin index range [lo, hi) covering
// [lowHz, highHz).
func (w *WelchSpectrum) BinRange(lowHz, highHz float64) (int, int) {
	lo := int(math.Ceil(lowHz / w.BinHz))
	hi := int(math.Ceil(highHz / w.BinHz))

	if lo < 0 {
		lo = 0
	}

	if hi > len(w.Power) {
		hi = len(w.Power)
	}

	if lo > hi {
		lo = hi
	}

	return lo, hi
}

func previousPowerOf2(n int) int {
	p := 1
	for p*2 <= n {
		p <<= 1
	}

	return p
}
