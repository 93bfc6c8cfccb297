// Package spectrum analyzes the tonal balance of a signal across six fixed
// mixing bands, from sub bass to highs.
//
// Each band is isolated with a Butterworth bandpass filter for its RMS
// level, and integrated over a Welch averaged power spectrum for its
// energy; the report carries both in dB plus the band's share of total
// energy.
package spectrum

import (
	"github.com/cwbudde/algo-mixcompare/internal/dsp"
	"github.com/cwbudde/algo-mixcompare/signal"
)

// Band describes one analysis band. CenterHz is the frequency EQ
// suggestions for this band are anchored at.
type Band struct {
	Name     string  `json:"name"`
	LowHz    float64 `json:"low_hz"`
	HighHz   float64 `json:"high_hz"`
	CenterHz float64 `json:"center_hz"`
}

// DefaultBands returns the six standard mixing bands. They are contiguous
// and non-overlapping, covering 20 Hz to 20 kHz.
func DefaultBands() []Band {
	return []Band{
		{Name: "sub_bass", LowHz: 20, HighHz: 60, CenterHz: 40},
		{Name: "bass", LowHz: 60, HighHz: 250, CenterHz: 120},
		{Name: "low_mids", LowHz: 250, HighHz: 500, CenterHz: 350},
		{Name: "mids", LowHz: 500, HighHz: 2000, CenterHz: 1000},
		{Name: "high_mids", LowHz: 2000, HighHz: 6000, CenterHz: 3500},
		{Name: "highs", LowHz: 6000, HighHz: 20000, CenterHz: 10000},
	}
}

// BandLevel is the measured result for one band.
//
// LevelDB is the RMS of the band-pass filtered signal; EnergyDB integrates
// the averaged power spectrum over the band's bins. The two track each
// other, but EnergyDB is free of the filter skirts' leakage from adjacent
// spectrum, so band-to-band comparisons between two signals subtract
// EnergyDB values.
type BandLevel struct {
	Band

	LevelDB       float64 `json:"level_db"`
	EnergyDB      float64 `json:"energy_db"`
	EnergyPercent float64 `json:"energy_percent"`
}

// Report holds the per-band levels in ascending frequency order. For a
// non-silent signal the EnergyPercent values sum to 100 (within 0.1).
type Report struct {
	Bands []BandLevel `json:"bands"`
}

// Config holds the tunable analysis parameters.
type Config struct {
	SampleRate  float64
	Bands       []Band
	FilterOrder int
	// FFTSize is the Welch segment size for the spectral band energies.
	FFTSize int
	// NyquistClamp caps a band's upper edge at this fraction of Nyquist.
	NyquistClamp float64
	MinSamples   int
}

// Option mutates a Config.
type Option func(*Config)

// DefaultConfig returns the standard six-band setup at the engine's
// analysis rate.
func DefaultConfig() Config {
	return Config{
		SampleRate:   signal.DefaultAnalysisRate,
		Bands:        DefaultBands(),
		FilterOrder:  4,
		FFTSize:      4096,
		NyquistClamp: 0.99,
		MinSamples:   signal.MinAnalysisSamples,
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

// WithBands replaces the band table.
func WithBands(bands []Band) Option {
	return func(cfg *Config) {
		if len(bands) > 0 {
			cfg.Bands = bands
		}
	}
}

// WithFilterOrder sets the Butterworth order used per band edge.
func WithFilterOrder(order int) Option {
	return func(cfg *Config) {
		if order > 0 {
			cfg.FilterOrder = order
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

// Analyze computes the six-band tonal balance of mono samples.
//
// Returns signal.InvalidSignalError for inputs shorter than the minimum
// analysis window and signal.UnsupportedSampleRateError when the clamped
// Nyquist ceiling lies at or below a band's lower bound. A silent signal
// yields the -120 dB floor sentinel per band instead of -Inf, with zero
// energy shares.
func Analyze(samples []float64, opts ...Option) (Report, error) {
	cfg := ApplyOptions(opts...)

	if len(samples) < cfg.MinSamples {
		return Report{}, &signal.InvalidSignalError{
			Reason: "sample count below minimum analysis window",
		}
	}

	nyquist := cfg.SampleRate / 2

	// A band whose lower edge is at or above the clamped Nyquist ceiling
	// cannot be constructed: its filter would invert.
	for _, band := range cfg.Bands {
		if band.LowHz >= cfg.NyquistClamp*nyquist {
			return Report{}, &signal.UnsupportedSampleRateError{
				SampleRate: cfg.SampleRate,
				Band:       band.Name,
				BandLowHz:  band.LowHz,
			}
		}
	}

	spec, err := dsp.Welch(samples, cfg.SampleRate, cfg.FFTSize)
	if err != nil {
		return Report{}, err
	}

	levels := make([]BandLevel, len(cfg.Bands))
	powers := make([]float64, len(cfg.Bands))
	buf := make([]float64, len(samples))

	var totalPower float64

	for i, band := range cfg.Bands {
		high := band.HighHz
		if high > cfg.NyquistClamp*nyquist {
			high = cfg.NyquistClamp * nyquist
		}

		copy(buf, samples)

		chain := dsp.ButterworthBandpass(band.LowHz, high, cfg.FilterOrder, cfg.SampleRate)
		chain.ProcessBlock(buf)

		powers[i] = spec.BandPower(band.LowHz, high)
		totalPower += powers[i]

		levels[i] = BandLevel{
			Band:     band,
			LevelDB:  dsp.AmpToDB(dsp.RMS(buf)),
			EnergyDB: dsp.PowerToDB(powers[i]),
		}
	}

	if totalPower > 0 {
		for i := range levels {
			levels[i].EnergyPercent = powers[i] / totalPower * 100
		}
	}

	return Report{Bands: levels}, nil
}

// Level returns the level of the named band, or the floor sentinel when the
// band is not present.
func (r Report) Level(name string) float64 {
	for _, b := range r.Bands {
		if b.Name == name {
			return b.LevelDB
		}
	}

	return dsp.FloorDB
}
