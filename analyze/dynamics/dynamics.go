// Package dynamics measures the level and dynamic-range profile of a
// signal: RMS, sample peak, integrated loudness per ITU-R BS.1770, crest
// factor, and peak-to-loudness ratio.
//
// Unlike a streaming loudness meter, everything here is a one-shot offline
// computation over the full signal.
package dynamics

import (
	"math"

	"github.com/cwbudde/algo-mixcompare/internal/dsp"
	"github.com/cwbudde/algo-mixcompare/signal"
)

const (
	// K-weighting filter parameters from BS.1770.
	kWeightingShelfFreq = 1500.0
	kWeightingShelfGain = 4.0
	kWeightingHpfFreq   = 38.0

	// Gating parameters for integrated loudness.
	absGateThreshold = -70.0
	relGateThreshold = -10.0
)

// Report holds the dynamics measurements for one signal.
//
// PLRDB always equals PeakDB - LUFSIntegrated exactly.
type Report struct {
	RMSDB          float64 `json:"rms_db"`
	PeakDB         float64 `json:"peak_db"`
	LUFSIntegrated float64 `json:"lufs_integrated"`
	CrestFactorDB  float64 `json:"crest_factor_db"`
	PLRDB          float64 `json:"plr_db"`
}

// Config holds the tunable measurement parameters.
type Config struct {
	// BlockSeconds is the gating block duration (BS.1770: 400 ms).
	BlockSeconds float64
	// Overlap is the gating block overlap fraction (BS.1770: 0.75).
	Overlap float64
	// SilenceFloorDB is the RMS level below which the signal is treated as
	// silent and loudness is not computable.
	SilenceFloorDB float64
	MinSamples     int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns BS.1770 gating parameters and a -90 dB silence
// floor.
func DefaultConfig() Config {
	return Config{
		BlockSeconds:   0.4,
		Overlap:        0.75,
		SilenceFloorDB: -90,
		MinSamples:     signal.MinAnalysisSamples,
	}
}

// WithSilenceFloor sets the RMS floor below which SilentSignalError is
// returned.
func WithSilenceFloor(db float64) Option {
	return func(cfg *Config) { cfg.SilenceFloorDB = db }
}

// WithGatingBlock overrides the gating block duration and overlap.
func WithGatingBlock(seconds, overlap float64) Option {
	return func(cfg *Config) {
		if seconds > 0 {
			cfg.BlockSeconds = seconds
		}

		if overlap >= 0 && overlap < 1 {
			cfg.Overlap = overlap
		}
	}
}

// ApplyOptions applies zero or more options to the default config.
func ApplyOptions(opts ...Option) Config {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return cfg
}

// Analyze measures the dynamics of a signal across all of its channels.
//
// Returns signal.InvalidSignalError for inputs shorter than the minimum
// analysis window and signal.SilentSignalError when the overall RMS is
// below the silence floor.
func Analyze(sig *signal.Signal, opts ...Option) (Report, error) {
	cfg := ApplyOptions(opts...)

	if sig == nil || sig.Frames() < cfg.MinSamples {
		return Report{}, &signal.InvalidSignalError{
			Reason: "sample count below minimum analysis window",
		}
	}

	var (
		sumSq float64
		peak  float64
		count int
	)

	for ch := 0; ch < sig.Channels(); ch++ {
		samples := sig.Channel(ch)
		sumSq += dsp.Energy(samples)
		count += len(samples)

		if p := dsp.Peak(samples); p > peak {
			peak = p
		}
	}

	rmsDB := dsp.AmpToDB(math.Sqrt(sumSq / float64(count)))
	if rmsDB < cfg.SilenceFloorDB {
		return Report{}, &signal.SilentSignalError{RMSDB: rmsDB, FloorDB: cfg.SilenceFloorDB}
	}

	peakDB := dsp.AmpToDB(peak)
	lufs := integratedLoudness(sig, cfg)

	return Report{
		RMSDB:          rmsDB,
		PeakDB:         peakDB,
		LUFSIntegrated: lufs,
		CrestFactorDB:  peakDB - rmsDB,
		PLRDB:          peakDB - lufs,
	}, nil
}

// integratedLoudness computes gated integrated loudness per BS.1770:
// K-weighting per channel, mean square over overlapping blocks summed
// across channels, absolute then relative gating.
func integratedLoudness(sig *signal.Signal, cfg Config) float64 {
	rate := sig.SampleRate()
	frames := sig.Frames()

	blockLen := int(math.Round(cfg.BlockSeconds * rate))
	if blockLen > frames {
		blockLen = frames
	}

	step := max(int(math.Round(cfg.BlockSeconds*(1-cfg.Overlap)*rate)), 1)

	// Per-channel K-weighted squared samples.
	weighted := make([][]float64, sig.Channels())

	shelf := dsp.HighShelf(kWeightingShelfFreq, kWeightingShelfGain, dsp.DefaultQ, rate)
	hpf := dsp.Highpass(kWeightingHpfFreq, dsp.DefaultQ, rate)

	for ch := range weighted {
		buf := make([]float64, frames)
		copy(buf, sig.Channel(ch))

		dsp.NewSection(shelf).ProcessBlock(buf)
		dsp.NewSection(hpf).ProcessBlock(buf)

		for i, v := range buf {
			buf[i] = v * v
		}

		weighted[ch] = buf
	}

	// Gating blocks: sum of per-channel block mean squares.
	var blocks []float64

	for start := 0; start+blockLen <= frames; start += step {
		var meanSqSum float64

		for _, sq := range weighted {
			var s float64
			for _, v := range sq[start : start+blockLen] {
				s += v
			}

			meanSqSum += s / float64(blockLen)
		}

		blocks = append(blocks, meanSqSum)
	}

	if len(blocks) == 0 {
		return dsp.FloorDB
	}

	// Absolute gating at -70 LUFS.
	var (
		absGated    []float64
		absGatedSum float64
	)

	for _, b := range blocks {
		if toLUFS(b) > absGateThreshold {
			absGated = append(absGated, b)
			absGatedSum += b
		}
	}

	if len(absGated) == 0 {
		return dsp.FloorDB
	}

	// Relative gating 10 LU below the absolute-gated mean.
	gammaRel := toLUFS(absGatedSum/float64(len(absGated))) + relGateThreshold

	var (
		relGatedSum   float64
		relGatedCount int
	)

	for _, b := range absGated {
		if toLUFS(b) > gammaRel {
			relGatedSum += b
			relGatedCount++
		}
	}

	if relGatedCount == 0 {
		return dsp.FloorDB
	}

	return toLUFS(relGatedSum / float64(relGatedCount))
}

func toLUFS(meanSquare float64) float64 {
	if meanSquare <= 0 {
		return dsp.FloorDB
	}

	return -0.691 + 10*math.Log10(meanSquare)
}
