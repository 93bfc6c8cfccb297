// Package resonance detects narrow spectral peaks that stick out of a
// signal's smoothed spectrum, the kind that read as harshness, ringing, or
// boominess in a mix.
//
// Peaks are qualified by their prominence above the local spectral baseline
// and described by an estimated Q factor from the -3 dB bandwidth.
package resonance

import (
	"math"
	"sort"

	"github.com/cwbudde/algo-mixcompare/analyze"
	"github.com/cwbudde/algo-mixcompare/internal/dsp"
	"github.com/cwbudde/algo-mixcompare/signal"
)

// Resonance is one detected spectral peak.
type Resonance struct {
	FrequencyHz  float64          `json:"frequency_hz"`
	LevelDB      float64          `json:"level_db"`
	ProminenceDB float64          `json:"prominence_db"`
	Q            float64          `json:"q_factor"`
	Severity     analyze.Severity `json:"severity"`
}

// SeverityPolicy maps prominence and sharpness onto severity buckets. The
// cut points are tunable mixing heuristics, not derived from a standard.
type SeverityPolicy struct {
	// HighProminenceDB with HighQ marks a peak as high severity.
	HighProminenceDB float64
	HighQ            float64
	// HarshProminenceDB marks a peak as high severity inside a harsh range.
	HarshProminenceDB float64
	// HarshRanges are frequency ranges where the ear is least forgiving.
	HarshRanges [][2]float64
	// ModerateProminenceDB alone, or SharpProminenceDB with SharpQ, marks
	// a peak as moderate severity.
	ModerateProminenceDB float64
	SharpProminenceDB    float64
	SharpQ               float64
}

// DefaultSeverityPolicy returns the default bucket cut points.
func DefaultSeverityPolicy() SeverityPolicy {
	return SeverityPolicy{
		HighProminenceDB:     6,
		HighQ:                2,
		HarshProminenceDB:    5,
		HarshRanges:          [][2]float64{{2000, 4000}, {6000, 8000}},
		ModerateProminenceDB: 4,
		SharpProminenceDB:    3,
		SharpQ:               2,
	}
}

// Classify buckets a peak.
func (p SeverityPolicy) Classify(prominenceDB, q, freqHz float64) analyze.Severity {
	harsh := false

	for _, r := range p.HarshRanges {
		if freqHz >= r[0] && freqHz <= r[1] {
			harsh = true
			break
		}
	}

	switch {
	case prominenceDB >= p.HighProminenceDB && q >= p.HighQ:
		return analyze.SeverityHigh
	case prominenceDB >= p.HarshProminenceDB && harsh:
		return analyze.SeverityHigh
	case prominenceDB >= p.ModerateProminenceDB:
		return analyze.SeverityModerate
	case prominenceDB >= p.SharpProminenceDB && q >= p.SharpQ:
		return analyze.SeverityModerate
	default:
		return analyze.SeverityLow
	}
}

// Config holds the tunable detection parameters.
type Config struct {
	SampleRate float64
	FFTSize    int
	// MinProminenceDB is the prominence below which a local maximum is not
	// a resonance candidate.
	MinProminenceDB float64
	// MinLevelDB discards peaks buried in the noise floor.
	MinLevelDB float64
	// MinFreqHz/MaxFreqHz bound the analyzed range; the upper bound is
	// additionally capped at Nyquist.
	MinFreqHz float64
	MaxFreqHz float64
	// MaxResonances caps the report length.
	MaxResonances int
	// MaxQ caps the Q estimate for peaks narrower than one bin pair.
	MaxQ       float64
	Policy     SeverityPolicy
	MinSamples int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the default detection setup at the engine's
// analysis rate.
func DefaultConfig() Config {
	return Config{
		SampleRate:      signal.DefaultAnalysisRate,
		FFTSize:         4096,
		MinProminenceDB: 3,
		MinLevelDB:      -40,
		MinFreqHz:       20,
		MaxFreqHz:       20000,
		MaxResonances:   10,
		MaxQ:            20,
		Policy:          DefaultSeverityPolicy(),
		MinSamples:      signal.MinAnalysisSamples,
	}
}

// WithSampleRate sets the sample rate of the input samples.
func WithSampleRate(sampleRate float64) Option {
	return func(cfg *Config) {
		if sampleRate > 0 {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithFFTSize sets the Welch segment size.
func WithFFTSize(size int) Option {
	return func(cfg *Config) {
		if size > 0 {
			cfg.FFTSize = size
		}
	}
}

// WithMinProminence sets the candidate prominence threshold in dB.
func WithMinProminence(db float64) Option {
	return func(cfg *Config) {
		if db > 0 {
			cfg.MinProminenceDB = db
		}
	}
}

// WithMaxResonances caps the number of reported peaks.
func WithMaxResonances(n int) Option {
	return func(cfg *Config) {
		if n > 0 {
			cfg.MaxResonances = n
		}
	}
}

// WithPolicy replaces the severity policy.
func WithPolicy(p SeverityPolicy) Option {
	return func(cfg *Config) {
		cfg.Policy = p
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

// Detect finds the most prominent spectral peaks in mono samples, sorted
// descending by prominence (ties broken by ascending frequency) and capped
// at MaxResonances.
//
// Returns signal.InvalidSignalError for inputs shorter than the minimum
// analysis window.
func Detect(samples []float64, opts ...Option) ([]Resonance, error) {
	cfg := ApplyOptions(opts...)

	if len(samples) < cfg.MinSamples {
		return nil, &signal.InvalidSignalError{
			Reason: "sample count below minimum analysis window",
		}
	}

	spec, err := dsp.Welch(samples, cfg.SampleRate, cfg.FFTSize)
	if err != nil {
		return nil, err
	}

	maxHz := math.Min(cfg.MaxFreqHz, cfg.SampleRate/2)
	lo, hi := spec.BinRange(cfg.MinFreqHz, maxHz)

	if hi-lo < 3 {
		return []Resonance{}, nil
	}

	mag := make([]float64, hi-lo)
	for i := range mag {
		mag[i] = dsp.PowerToDB(spec.Power[lo+i])
	}

	freqs := spec.Freqs[lo:hi]

	minDistance := len(mag) / 200
	if minDistance < 1 {
		minDistance = 1
	}

	peaks := findPeaks(mag, minDistance)
	out := make([]Resonance, 0, len(peaks))

	for _, idx := range peaks {
		level := mag[idx]
		if level < cfg.MinLevelDB {
			continue
		}

		prom := prominence(mag, idx)
		if prom < cfg.MinProminenceDB {
			continue
		}

		q := estimateQ(mag, freqs, idx, cfg.MaxQ)
		freq := refinePeakHz(mag, freqs, idx, spec.BinHz)

		out = append(out, Resonance{
			FrequencyHz:  freq,
			LevelDB:      level,
			ProminenceDB: prom,
			Q:            q,
			Severity:     cfg.Policy.Classify(prom, q, freq),
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ProminenceDB != out[j].ProminenceDB {
			return out[i].ProminenceDB > out[j].ProminenceDB
		}

		return out[i].FrequencyHz < out[j].FrequencyHz
	})

	if len(out) > cfg.MaxResonances {
		out = out[:cfg.MaxResonances]
	}

	return out, nil
}

// findPeaks returns indices of local maxima at least minDistance bins
// apart. When two maxima fall within minDistance, the higher one wins.
func findPeaks(mag []float64, minDistance int) []int {
	candidates := make([]int, 0, 32)

	for i := 1; i+1 < len(mag); i++ {
		if mag[i] > mag[i-1] && mag[i] >= mag[i+1] {
			candidates = append(candidates, i)
		}
	}

	if minDistance <= 1 || len(candidates) < 2 {
		return candidates
	}

	// Suppress neighbors of higher peaks first.
	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return mag[candidates[order[a]]] > mag[candidates[order[b]]]
	})

	keep := make([]bool, len(candidates))
	for i := range keep {
		keep[i] = true
	}

	for _, oi := range order {
		if !keep[oi] {
			continue
		}

		for j := range candidates {
			if j == oi || !keep[j] {
				continue
			}

			if abs(candidates[j]-candidates[oi]) < minDistance {
				keep[j] = false
			}
		}
	}

	out := make([]int, 0, len(candidates))

	for i, idx := range candidates {
		if keep[i] {
			out = append(out, idx)
		}
	}

	return out
}

// prominence measures how far the peak rises above the higher of the two
// lowest points separating it from taller peaks (or the spectrum edges).
func prominence(mag []float64, peak int) float64 {
	level := mag[peak]

	leftBase := level
	for i := peak - 1; i >= 0; i-- {
		if mag[i] > level {
			break
		}

		if mag[i] < leftBase {
			leftBase = mag[i]
		}
	}

	rightBase := level
	for i := peak + 1; i < len(mag); i++ {
		if mag[i] > level {
			break
		}

		if mag[i] < rightBase {
			rightBase = mag[i]
		}
	}

	return level - math.Max(leftBase, rightBase)
}

// refinePeakHz interpolates the true peak frequency from the parabola
// through the peak bin and its two neighbors in the dB spectrum. Bin
// centers quantize frequency to BinHz steps; below a few hundred hertz
// that error alone can exceed 2% of the peak frequency.
func refinePeakHz(mag, freqs []float64, peak int, binHz float64) float64 {
	if peak == 0 || peak == len(mag)-1 {
		return freqs[peak]
	}

	alpha, beta, gamma := mag[peak-1], mag[peak], mag[peak+1]

	denom := alpha - 2*beta + gamma
	if denom >= 0 {
		return freqs[peak]
	}

	delta := 0.5 * (alpha - gamma) / denom
	if delta > 0.5 {
		delta = 0.5
	} else if delta < -0.5 {
		delta = -0.5
	}

	return freqs[peak] + delta*binHz
}

// estimateQ estimates the peak's Q factor from the -3 dB bandwidth. Peaks
// whose half-power points do not resolve get a default Q of 1.
func estimateQ(mag, freqs []float64, peak int, maxQ float64) float64 {
	target := mag[peak] - 3

	left := peak
	for left > 0 && mag[left] > target {
		left--
	}

	right := peak
	for right < len(mag)-1 && mag[right] > target {
		right++
	}

	if left == 0 || right == len(mag)-1 {
		return 1
	}

	bandwidth := freqs[right] - freqs[left]
	if bandwidth <= 0 {
		return 1
	}

	return math.Min(freqs[peak]/bandwidth, maxQ)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}
