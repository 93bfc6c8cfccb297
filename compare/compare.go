// Package compare runs the full analysis chain on two signals and
// derives the differences and corrective suggestions between them.
package compare

import (
	"fmt"
	"sync"

	"github.com/cwbudde/algo-mixcompare/analyze/dynamics"
	"github.com/cwbudde/algo-mixcompare/analyze/masking"
	"github.com/cwbudde/algo-mixcompare/analyze/resonance"
	"github.com/cwbudde/algo-mixcompare/analyze/spectrum"
	"github.com/cwbudde/algo-mixcompare/signal"
)

// Config holds the comparison parameters.
type Config struct {
	// AnalysisRate is the rate both signals are downsampled to before
	// analysis. Signals already at or below it are left untouched.
	AnalysisRate float64
	// ToleranceDB is the band difference below which levels count as equal.
	ToleranceDB float64
	// SignificantDB is the band difference that triggers an EQ suggestion.
	SignificantDB float64
	// DefaultQ is used for broad band-level EQ suggestions.
	DefaultQ float64
	// ResonanceMatchHz pairs mix and reference resonances within this
	// distance, suppressing suggestions for shared resonances.
	ResonanceMatchHz float64
	// MaskingSeparationDB is the separation threshold masking issues are
	// ranked against in the summary.
	MaskingSeparationDB float64
	// MaxSummary caps the number of summary lines.
	MaxSummary int
}

// DefaultConfig returns the standard comparison parameters.
func DefaultConfig() Config {
	return Config{
		AnalysisRate:        signal.DefaultAnalysisRate,
		ToleranceDB:         0.5,
		SignificantDB:       2.0,
		DefaultQ:            1.0,
		ResonanceMatchHz:    50,
		MaskingSeparationDB: masking.DefaultConfig().SeparationDB,
		MaxSummary:          10,
	}
}

// Option configures a Comparator.
type Option func(*Config) error

// WithAnalysisRate sets the shared analysis sample rate.
func WithAnalysisRate(rate float64) Option {
	return func(c *Config) error {
		if rate <= 0 {
			return fmt.Errorf("analysis rate must be positive, got %v", rate)
		}

		c.AnalysisRate = rate

		return nil
	}
}

// WithToleranceDB sets the equal-band tolerance.
func WithToleranceDB(db float64) Option {
	return func(c *Config) error {
		if db < 0 {
			return fmt.Errorf("tolerance must be non-negative, got %v", db)
		}

		c.ToleranceDB = db

		return nil
	}
}

// WithSignificantDB sets the threshold for EQ suggestions.
func WithSignificantDB(db float64) Option {
	return func(c *Config) error {
		if db <= 0 {
			return fmt.Errorf("significance threshold must be positive, got %v", db)
		}

		c.SignificantDB = db

		return nil
	}
}

// WithMaxSummary caps the summary length.
func WithMaxSummary(n int) Option {
	return func(c *Config) error {
		if n <= 0 {
			return fmt.Errorf("summary cap must be positive, got %d", n)
		}

		c.MaxSummary = n

		return nil
	}
}

// Comparator analyzes two signals and reports their differences.
type Comparator struct {
	cfg Config
}

// New creates a Comparator with the given options applied on top of
// DefaultConfig.
func New(opts ...Option) (*Comparator, error) {
	cfg := DefaultConfig()

	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	return &Comparator{cfg: cfg}, nil
}

// Compare analyzes both signals and returns the full difference report.
// The two analysis pipelines run concurrently; an error from either
// aborts the comparison.
func (c *Comparator) Compare(yourMix, reference *signal.Signal) (*Result, error) {
	if yourMix == nil || reference == nil {
		return nil, &signal.InvalidSignalError{Reason: "nil signal"}
	}

	var (
		wg       sync.WaitGroup
		mix, ref *Analysis
		mixErr   error
		refErr   error
	)

	wg.Add(2)

	go func() {
		defer wg.Done()

		mix, mixErr = c.Analyze(yourMix)
	}()

	go func() {
		defer wg.Done()

		ref, refErr = c.Analyze(reference)
	}()

	wg.Wait()

	if mixErr != nil {
		return nil, fmt.Errorf("your mix: %w", mixErr)
	}

	if refErr != nil {
		return nil, fmt.Errorf("reference: %w", refErr)
	}

	res := &Result{
		YourMix:   *mix,
		Reference: *ref,
	}

	res.Bands = c.bandDiffs(mix, ref)
	res.Masking = c.maskingDiff(mix, ref)
	res.Resonances = c.resonanceDiff(mix, ref)
	res.Dynamics = c.dynamicsDiff(mix, ref)
	res.EQAdjustments = c.eqAdjustments(res)
	res.Summary = c.summarize(res)

	return res, nil
}

// Analyze runs the four analyzers on a single signal at the configured
// analysis rate. The spectrum, masking and resonance analyzers share
// one mono mixdown; dynamics sees all channels.
func (c *Comparator) Analyze(sig *signal.Signal) (*Analysis, error) {
	work, err := sig.Resampled(c.cfg.AnalysisRate)
	if err != nil {
		return nil, err
	}

	mono := work.Mono()
	rate := work.SampleRate()

	var (
		wg   sync.WaitGroup
		out  Analysis
		errs [4]error
	)

	wg.Add(4)

	go func() {
		defer wg.Done()

		out.Spectrum, errs[0] = spectrum.Analyze(mono, spectrum.WithSampleRate(rate))
	}()

	go func() {
		defer wg.Done()

		out.Masking, errs[1] = masking.Analyze(mono, masking.WithSampleRate(rate))
	}()

	go func() {
		defer wg.Done()

		out.Resonances, errs[2] = resonance.Detect(mono, resonance.WithSampleRate(rate))
	}()

	go func() {
		defer wg.Done()

		out.Dynamics, errs[3] = dynamics.Analyze(work)
	}()

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return &out, nil
}
