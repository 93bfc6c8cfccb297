// Package testutil provides deterministic signal generators and
// tolerance helpers shared by the analyzer tests.
package testutil

import (
	"math"
	"math/rand"

	"github.com/cwbudde/algo-mixcompare/signal"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Mix sums the given slices sample by sample. All slices must share the
// length of the first.
func Mix(parts ...[]float64) []float64 {
	if len(parts) == 0 {
		return nil
	}
	out := make([]float64, len(parts[0]))
	for _, part := range parts {
		for i := range out {
			out[i] += part[i]
		}
	}
	return out
}

// Scale returns samples multiplied by gain.
func Scale(samples []float64, gain float64) []float64 {
	out := make([]float64, len(samples))
	for i, v := range samples {
		out[i] = v * gain
	}
	return out
}

// MonoSignal wraps samples in a single-channel Signal, failing the
// test on invalid input is left to the caller.
func MonoSignal(samples []float64, sampleRate float64) *signal.Signal {
	sig, err := signal.FromMono(samples, sampleRate)
	if err != nil {
		panic(err)
	}
	return sig
}

// SineSignal builds a mono sine Signal in one call.
func SineSignal(freqHz, sampleRate, amplitude float64, length int) *signal.Signal {
	return MonoSignal(DeterministicSine(freqHz, sampleRate, amplitude, length), sampleRate)
}

// NoiseSignal builds a mono seeded-noise Signal in one call.
func NoiseSignal(seed int64, amplitude float64, sampleRate float64, length int) *signal.Signal {
	return MonoSignal(DeterministicNoise(seed, amplitude, length), sampleRate)
}
