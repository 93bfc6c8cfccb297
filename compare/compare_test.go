package compare

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/cwbudde/algo-mixcompare/analyze/masking"
	"github.com/cwbudde/algo-mixcompare/internal/dsp"
	"github.com/cwbudde/algo-mixcompare/internal/testutil"
	"github.com/cwbudde/algo-mixcompare/signal"
)

func referenceMix(seed int64, length int) *signal.Signal {
	samples := testutil.Mix(
		testutil.DeterministicNoise(seed, 0.2, length),
		testutil.DeterministicSine(110, 22050, 0.3, length),
		testutil.DeterministicSine(1000, 22050, 0.2, length),
	)

	return testutil.MonoSignal(samples, 22050)
}

func TestCompareSelfIsNeutral(t *testing.T) {
	cmp, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	sig := referenceMix(1, 65536)

	result, err := cmp.Compare(sig, sig)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}

	for _, band := range result.Bands {
		if band.Status != StatusEqual {
			t.Fatalf("%s status = %v, want equal", band.Name, band.Status)
		}

		if band.DifferenceDB != 0 {
			t.Fatalf("%s diff = %v, want 0", band.Name, band.DifferenceDB)
		}
	}

	if len(result.EQAdjustments) != 0 {
		t.Fatalf("EQ adjustments = %v, want none", result.EQAdjustments)
	}

	if result.Masking.ClarityDelta != 0 {
		t.Fatalf("clarity delta = %v, want 0", result.Masking.ClarityDelta)
	}

	if len(result.Resonances.MixOnly) != 0 {
		t.Fatalf("mix-only resonances = %v, want none", result.Resonances.MixOnly)
	}

	if result.Dynamics.LUFS != 0 || result.Dynamics.CrestFactor != 0 {
		t.Fatalf("dynamics diff = %+v, want zeros", result.Dynamics)
	}

	if len(result.Summary) != 1 || !strings.Contains(result.Summary[0], "no significant differences") {
		t.Fatalf("summary = %v, want the no-differences line", result.Summary)
	}
}

// combMix builds a dense comb of equal sines from 30 Hz to 11 kHz, with
// the partials inside [boostLowHz, boostHighHz) raised by boostDB and the
// whole signal renormalized to the unboosted energy. The seed fixes the
// partials' phases, so two calls differ only in the band gain.
func combMix(boostLowHz, boostHighHz, boostDB float64, length int) []float64 {
	rng := rand.New(rand.NewSource(11))
	gain := math.Pow(10, boostDB/20)

	samples := make([]float64, length)

	var energy, baseEnergy float64

	for freq := 30.0; freq < 11000; freq += 20 {
		amp := 0.01
		baseEnergy += amp * amp / 2

		if freq >= boostLowHz && freq < boostHighHz {
			amp *= gain
		}

		energy += amp * amp / 2
		phase := rng.Float64() * 2 * math.Pi
		step := 2 * math.Pi * freq / 22050

		for i := range samples {
			samples[i] += amp * math.Sin(step*float64(i)+phase)
		}
	}

	return testutil.Scale(samples, math.Sqrt(baseEnergy/energy))
}

func TestCompareDetectsBoostedBand(t *testing.T) {
	const length = 65536

	// An exact +10 dB on the low_mids partials. After renormalization the
	// band sits 9.16 dB above the reference, inside the +-1 window around
	// the nominal boost.
	base := combMix(250, 500, 0, length)
	boosted := combMix(250, 500, 10, length)

	cmp, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := cmp.Compare(
		testutil.MonoSignal(boosted, 22050),
		testutil.MonoSignal(base, 22050),
	)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}

	var lowMids BandDiff
	for _, b := range result.Bands {
		if b.Name == "low_mids" {
			lowMids = b
		}
	}

	if lowMids.Status != StatusLouder {
		t.Fatalf("low_mids status = %v, want louder", lowMids.Status)
	}

	if math.Abs(lowMids.DifferenceDB-10) > 1 {
		t.Fatalf("low_mids diff = %v dB, want about +10", lowMids.DifferenceDB)
	}

	var cut *EQAdjustment
	for i := range result.EQAdjustments {
		if result.EQAdjustments[i].FrequencyHz == 350 {
			cut = &result.EQAdjustments[i]
		}
	}

	if cut == nil {
		t.Fatalf("no EQ adjustment at 350 Hz in %v", result.EQAdjustments)
	}

	if cut.Type != AdjustCut {
		t.Fatalf("adjustment type = %v, want cut", cut.Type)
	}

	if math.Abs(cut.GainDB-(-10)) > 1 {
		t.Fatalf("cut gain = %v dB, want about -10", cut.GainDB)
	}

	if cut.Q != 1.0 {
		t.Fatalf("cut Q = %v, want the default 1.0", cut.Q)
	}
}

func TestCompareDetectsQuieterBand(t *testing.T) {
	const length = 65536

	base := testutil.Mix(
		testutil.DeterministicNoise(5, 0.2, length),
	)

	band := make([]float64, length)
	copy(band, base)
	dsp.ButterworthBandpass(2000, 6000, 4, 22050).ProcessBlock(band)

	// Cut high_mids by 8 dB in the mix.
	gain := math.Pow(10, -8.0/20)
	cutMix := testutil.Mix(base, testutil.Scale(band, gain-1))

	cmp, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := cmp.Compare(
		testutil.MonoSignal(cutMix, 22050),
		testutil.MonoSignal(base, 22050),
	)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}

	var highMids BandDiff
	for _, b := range result.Bands {
		if b.Name == "high_mids" {
			highMids = b
		}
	}

	if highMids.Status != StatusQuieter {
		t.Fatalf("high_mids status = %v, want quieter", highMids.Status)
	}

	var boost *EQAdjustment
	for i := range result.EQAdjustments {
		if result.EQAdjustments[i].FrequencyHz == 3500 {
			boost = &result.EQAdjustments[i]
		}
	}

	if boost == nil {
		t.Fatalf("no EQ adjustment at 3500 Hz in %v", result.EQAdjustments)
	}

	if boost.Type != AdjustBoost || boost.GainDB <= 0 {
		t.Fatalf("adjustment = %+v, want a positive boost", boost)
	}
}

func TestCompareMixOnlyResonance(t *testing.T) {
	const length = 65536

	base := testutil.DeterministicNoise(7, 0.3, length)
	ringing := testutil.Mix(base, testutil.DeterministicSine(3000, 22050, 0.4, length))

	cmp, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := cmp.Compare(
		testutil.MonoSignal(ringing, 22050),
		testutil.MonoSignal(base, 22050),
	)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}

	var found bool
	for _, r := range result.Resonances.MixOnly {
		if math.Abs(r.FrequencyHz-3000) < 50 {
			found = true
		}
	}

	if !found {
		t.Fatalf("3 kHz resonance missing from mix-only list: %+v", result.Resonances.MixOnly)
	}

	var cut *EQAdjustment
	for i := range result.EQAdjustments {
		adj := &result.EQAdjustments[i]
		if adj.Type == AdjustCut && math.Abs(adj.FrequencyHz-3000) < 50 {
			cut = adj
		}
	}

	if cut == nil {
		t.Fatalf("no resonance cut near 3 kHz in %v", result.EQAdjustments)
	}

	// Cuts are capped at -8 dB and Q at 5.
	if cut.GainDB < -8 || cut.GainDB >= 0 {
		t.Fatalf("cut gain = %v, want in [-8, 0)", cut.GainDB)
	}

	if cut.Q > 5 {
		t.Fatalf("cut Q = %v, want <= 5", cut.Q)
	}
}

func TestCompareLabelsFailingSignal(t *testing.T) {
	cmp, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	silent := testutil.MonoSignal(make([]float64, 65536), 22050)
	ref := referenceMix(9, 65536)

	_, err = cmp.Compare(silent, ref)
	if err == nil {
		t.Fatal("expected an error for a silent mix")
	}

	if !strings.Contains(err.Error(), "your mix") {
		t.Fatalf("error %q does not name the failing signal", err)
	}

	_, err = cmp.Compare(ref, silent)
	if err == nil {
		t.Fatal("expected an error for a silent reference")
	}

	if !strings.Contains(err.Error(), "reference") {
		t.Fatalf("error %q does not name the failing signal", err)
	}
}

func TestCompareNilSignal(t *testing.T) {
	cmp, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if _, err := cmp.Compare(nil, referenceMix(1, 65536)); err == nil {
		t.Fatal("expected an error for a nil signal")
	}
}

func TestCompareResamplesMismatchedRates(t *testing.T) {
	const length = 4 * 44100

	mix := testutil.SineSignal(440, 44100, 0.5, length)
	ref := testutil.SineSignal(440, 22050, 0.5, length/2)

	cmp, err := New()
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	result, err := cmp.Compare(mix, ref)
	if err != nil {
		t.Fatalf("Compare error: %v", err)
	}

	// Same tone at the same level: the mids band difference stays small
	// despite the differing source rates.
	for _, band := range result.Bands {
		if band.Name == "mids" && math.Abs(band.DifferenceDB) > 1 {
			t.Fatalf("mids diff = %v dB across rates, want < 1", band.DifferenceDB)
		}
	}
}

func TestMaskingShortfallUsesConfiguredSeparation(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.MaskingSeparationDB != masking.DefaultConfig().SeparationDB {
		t.Fatalf("default separation = %v, want the masking analyzer's %v",
			cfg.MaskingSeparationDB, masking.DefaultConfig().SeparationDB)
	}

	cfg.MaskingSeparationDB = 6
	cmp := &Comparator{cfg: cfg}

	if got := cmp.maskingShortfall(masking.Issue{SeparationDB: 2}); got != 4 {
		t.Fatalf("shortfall = %v, want 4", got)
	}

	if got := cmp.maskingShortfall(masking.Issue{SeparationDB: 10}); got != 0 {
		t.Fatalf("shortfall = %v, want 0 above the threshold", got)
	}
}

func TestOptionValidation(t *testing.T) {
	if _, err := New(WithAnalysisRate(-1)); err == nil {
		t.Fatal("expected error for negative analysis rate")
	}

	if _, err := New(WithMaxSummary(0)); err == nil {
		t.Fatal("expected error for zero summary cap")
	}

	if _, err := New(WithToleranceDB(-0.1)); err == nil {
		t.Fatal("expected error for negative tolerance")
	}

	if _, err := New(WithSignificantDB(0)); err == nil {
		t.Fatal("expected error for zero significance threshold")
	}
}
