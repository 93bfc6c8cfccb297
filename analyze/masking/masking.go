// Package masking detects overlapping tonal energy between adjacent
// critical bands and scores the overall frequency separation of a mix.
//
// The band table approximates the Bark scale with eleven bands named after
// their role in a mix ("Mud Zone", "Vocal Presence", ...). Two neighboring
// bands mask each other when both carry high, tonally concentrated energy
// with little level separation between them.
package masking

import (
	"math"

	"github.com/cwbudde/algo-mixcompare/analyze"
	"github.com/cwbudde/algo-mixcompare/internal/dsp"
	"github.com/cwbudde/algo-mixcompare/signal"
)

// CriticalBand is one simplified Bark-scale band.
type CriticalBand struct {
	Name   string  `json:"name"`
	LowHz  float64 `json:"low_hz"`
	HighHz float64 `json:"high_hz"`
}

// DefaultCriticalBands returns the eleven-band critical band table.
func DefaultCriticalBands() []CriticalBand {
	return []CriticalBand{
		{Name: "Sub Bass", LowHz: 20, HighHz: 100},
		{Name: "Bass Fundamentals", LowHz: 100, HighHz: 200},
		{Name: "Low Mids / Mud Zone", LowHz: 200, HighHz: 400},
		{Name: "Low-Mid Body", LowHz: 400, HighHz: 600},
		{Name: "Mid Clarity", LowHz: 600, HighHz: 1000},
		{Name: "Vocal Presence", LowHz: 1000, HighHz: 2000},
		{Name: "High Mids Clarity", LowHz: 2000, HighHz: 3000},
		{Name: "Articulation", LowHz: 3000, HighHz: 4000},
		{Name: "Brightness", LowHz: 4000, HighHz: 6000},
		{Name: "Air", LowHz: 6000, HighHz: 10000},
		{Name: "Sparkle", LowHz: 10000, HighHz: 20000},
	}
}

// BandEnergy is the measured state of one critical band.
type BandEnergy struct {
	CriticalBand

	EnergyDB float64 `json:"energy_db"`
	// Flatness is the spectral flatness of the band's bins in [0,1]; low
	// values indicate tonally concentrated energy.
	Flatness float64 `json:"spectral_flatness"`
}

// Issue is one flagged adjacent-band overlap.
type Issue struct {
	Bands        [2]string        `json:"bands"`
	LowHz        float64          `json:"low_hz"`
	HighHz       float64          `json:"high_hz"`
	SeparationDB float64          `json:"separation_db"`
	Severity     analyze.Severity `json:"severity"`
}

// Report holds the clarity score and the flagged overlaps in ascending
// frequency order.
type Report struct {
	// ClarityScore grades frequency separation from 0 (congested) to 100.
	ClarityScore float64      `json:"clarity_score"`
	BandEnergies []BandEnergy `json:"band_energies"`
	Issues       []Issue      `json:"issues"`
}

// Config holds the tunable masking policy. The thresholds are heuristic
// mixing guidance, not a psychoacoustic standard; treat them as policy.
type Config struct {
	SampleRate float64
	Bands      []CriticalBand
	FFTSize    int
	// EnergyThresholdDB is the minimum band level for a pair to qualify.
	EnergyThresholdDB float64
	// HighEnergyDB promotes an overlap to high severity.
	HighEnergyDB float64
	// SeparationDB is the level separation below which two loud neighbors
	// are considered overlapping.
	SeparationDB float64
	// FlatnessThreshold is the spectral flatness below which band energy
	// counts as tonally concentrated.
	FlatnessThreshold float64
	// PenaltyWeight scales each flagged overlap's clarity penalty.
	PenaltyWeight float64
	MinSamples    int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the default masking policy at the engine's
// analysis rate.
func DefaultConfig() Config {
	return Config{
		SampleRate:        signal.DefaultAnalysisRate,
		Bands:             DefaultCriticalBands(),
		FFTSize:           4096,
		EnergyThresholdDB: -20,
		HighEnergyDB:      -15,
		SeparationDB:      3,
		FlatnessThreshold: 0.3,
		PenaltyWeight:     10,
		MinSamples:        signal.MinAnalysisSamples,
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

// WithBands replaces the critical band table.
func WithBands(bands []CriticalBand) Option {
	return func(cfg *Config) {
		if len(bands) > 0 {
			cfg.Bands = bands
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

// WithThresholds overrides the energy, separation, and flatness policy.
func WithThresholds(energyDB, separationDB, flatness float64) Option {
	return func(cfg *Config) {
		cfg.EnergyThresholdDB = energyDB
		cfg.SeparationDB = separationDB
		cfg.FlatnessThreshold = flatness
	}
}

// WithPenaltyWeight sets the clarity penalty per flagged overlap.
func WithPenaltyWeight(w float64) Option {
	return func(cfg *Config) {
		if w >= 0 {
			cfg.PenaltyWeight = w
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

// Analyze computes per-band energy and flatness from one Welch spectrum and
// flags masking between adjacent band pairs.
//
// Returns signal.InvalidSignalError for inputs shorter than the minimum
// analysis window.
func Analyze(samples []float64, opts ...Option) (Report, error) {
	cfg := ApplyOptions(opts...)

	if len(samples) < cfg.MinSamples {
		return Report{}, &signal.InvalidSignalError{
			Reason: "sample count below minimum analysis window",
		}
	}

	spec, err := dsp.Welch(samples, cfg.SampleRate, cfg.FFTSize)
	if err != nil {
		return Report{}, err
	}

	nyquist := cfg.SampleRate / 2
	energies := make([]BandEnergy, 0, len(cfg.Bands))

	for _, band := range cfg.Bands {
		if band.LowHz >= nyquist {
			continue
		}

		high := math.Min(band.HighHz, nyquist)
		lo, hi := spec.BinRange(band.LowHz, high)

		if lo >= hi {
			continue
		}

		bins := spec.Power[lo:hi]

		var sum float64
		for _, p := range bins {
			sum += p
		}

		energies = append(energies, BandEnergy{
			CriticalBand: band,
			EnergyDB:     dsp.PowerToDB(sum),
			Flatness:     flatness(bins),
		})
	}

	issues := make([]Issue, 0)
	penalty := 0.0

	for i := 0; i+1 < len(energies); i++ {
		cur, next := energies[i], energies[i+1]

		if cur.EnergyDB <= cfg.EnergyThresholdDB || next.EnergyDB <= cfg.EnergyThresholdDB {
			continue
		}

		separation := math.Abs(cur.EnergyDB - next.EnergyDB)
		if separation >= cfg.SeparationDB {
			continue
		}

		if cur.Flatness >= cfg.FlatnessThreshold || next.Flatness >= cfg.FlatnessThreshold {
			continue
		}

		severity := analyze.SeverityModerate
		if math.Max(cur.EnergyDB, next.EnergyDB) > cfg.HighEnergyDB {
			severity = analyze.SeverityHigh
		}

		issues = append(issues, Issue{
			Bands:        [2]string{cur.Name, next.Name},
			LowHz:        cur.LowHz,
			HighHz:       next.HighHz,
			SeparationDB: separation,
			Severity:     severity,
		})

		// Penalty grows as the pair's separation shrinks.
		penalty += cfg.PenaltyWeight * (cfg.SeparationDB - separation) / cfg.SeparationDB
	}

	return Report{
		ClarityScore: dsp.Clamp(100-penalty, 0, 100),
		BandEnergies: energies,
		Issues:       issues,
	}, nil
}

// flatness returns the ratio of geometric to arithmetic mean of the band's
// magnitude bins. 1 means noise-like, near 0 means a single dominant tone.
func flatness(power []float64) float64 {
	if len(power) == 0 {
		return 1
	}

	const guard = 1e-12

	var logSum, sum float64

	for _, p := range power {
		m := math.Sqrt(p)
		logSum += math.Log(m + guard)
		sum += m
	}

	n := float64(len(power))
	geometric := math.Exp(logSum / n)
	arithmetic := sum / n

	return geometric / (arithmetic + guard)
}
