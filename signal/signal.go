// Package signal provides the immutable audio signal value passed into the
// analysis engine, together with mixdown and analysis-rate decimation.
//
// A Signal is created once by a decoding collaborator and is read-only for
// the lifetime of a comparison. Analyzers never write to it.
package signal

import (
	"fmt"
	"math"
	"time"
)

// MinAnalysisSamples is the smallest channel length the analyzers accept.
// Shorter inputs cannot fill a single analysis window.
const MinAnalysisSamples = 1024

// Signal holds decoded PCM audio as non-interleaved per-channel buffers.
type Signal struct {
	channels   [][]float64
	sampleRate float64
}

// New creates a Signal from per-channel sample buffers.
//
// All channels must have the same length, there must be at least one
// channel, and the sample rate must be positive. The buffers are retained,
// not copied; the caller must not mutate them afterwards.
func New(channels [][]float64, sampleRate float64) (*Signal, error) {
	if len(channels) == 0 {
		return nil, &InvalidSignalError{Reason: "no channels"}
	}

	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, &InvalidSignalError{Reason: fmt.Sprintf("sample rate %.3f", sampleRate)}
	}

	n := len(channels[0])
	for i, ch := range channels {
		if len(ch) != n {
			return nil, &InvalidSignalError{
				Reason: fmt.Sprintf("channel %d has %d samples, channel 0 has %d", i, len(ch), n),
			}
		}
	}

	return &Signal{channels: channels, sampleRate: sampleRate}, nil
}

// FromMono wraps a single mono buffer as a Signal.
func FromMono(samples []float64, sampleRate float64) (*Signal, error) {
	return New([][]float64{samples}, sampleRate)
}

// SampleRate returns the sample rate in Hz.
func (s *Signal) SampleRate() float64 { return s.sampleRate }

// Channels returns the channel count.
func (s *Signal) Channels() int { return len(s.channels) }

// Frames returns the per-channel sample count.
func (s *Signal) Frames() int {
	if len(s.channels) == 0 {
		return 0
	}

	return len(s.channels[0])
}

// Duration returns the signal duration.
func (s *Signal) Duration() time.Duration {
	return time.Duration(float64(s.Frames()) / s.sampleRate * float64(time.Second))
}

// Channel returns the sample buffer for channel i. The returned slice is
// shared with the Signal and must be treated as read-only.
func (s *Signal) Channel(i int) []float64 { return s.channels[i] }

// Mono returns a freshly allocated mono mixdown (arithmetic mean across
// channels). For a single-channel signal it still returns a copy, so the
// result is always safe to filter in place.
func (s *Signal) Mono() []float64 {
	out := make([]float64, s.Frames())
	if len(s.channels) == 1 {
		copy(out, s.channels[0])
		return out
	}

	scale := 1.0 / float64(len(s.channels))
	for _, ch := range s.channels {
		for i, v := range ch {
			out[i] += v * scale
		}
	}

	return out
}
