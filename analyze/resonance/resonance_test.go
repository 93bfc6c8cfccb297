package resonance

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-mixcompare/analyze"
	"github.com/cwbudde/algo-mixcompare/internal/testutil"
	"github.com/cwbudde/algo-mixcompare/signal"
)

func TestDetectSineInNoise(t *testing.T) {
	mix := testutil.Mix(
		testutil.DeterministicSine(1000, 22050, 0.5, 65536),
		testutil.DeterministicNoise(3, 0.02, 65536),
	)

	found, err := Detect(mix, WithSampleRate(22050))
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if len(found) == 0 {
		t.Fatal("expected at least one resonance")
	}

	top := found[0]

	if math.Abs(top.FrequencyHz-1000) > 20 {
		t.Fatalf("top resonance at %v Hz, want within 20 Hz of 1000", top.FrequencyHz)
	}

	if top.Severity != analyze.SeverityHigh {
		t.Fatalf("severity = %v, want high for a sharp loud peak", top.Severity)
	}

	if top.Q < 2 {
		t.Fatalf("Q = %v, want a sharp peak (> 2)", top.Q)
	}
}

func TestDetectPureToneFrequencyAccuracy(t *testing.T) {
	// The top-ranked peak must land within 2% of the tone frequency across
	// the whole range, including low frequencies where a raw bin center
	// alone is off by more than that (bin spacing is ~5.4 Hz at 22050/4096).
	for _, freq := range []float64{60, 100, 250, 440, 1000, 5000, 9000} {
		mix := testutil.Mix(
			testutil.DeterministicSine(freq, 22050, 0.5, 65536),
			testutil.DeterministicNoise(1, 0.01, 65536),
		)

		found, err := Detect(mix, WithSampleRate(22050))
		if err != nil {
			t.Fatalf("Detect(%v Hz) error: %v", freq, err)
		}

		if len(found) == 0 {
			t.Fatalf("Detect(%v Hz) found no resonance", freq)
		}

		if got := found[0].FrequencyHz; math.Abs(got-freq) > 0.02*freq {
			t.Errorf("tone at %v Hz reported at %v Hz (%.2f%% off, want <= 2%%)",
				freq, got, 100*math.Abs(got-freq)/freq)
		}
	}
}

func TestDetectRankedByProminence(t *testing.T) {
	mix := testutil.Mix(
		testutil.DeterministicSine(500, 22050, 0.5, 65536),
		testutil.DeterministicSine(3000, 22050, 0.1, 65536),
		testutil.DeterministicNoise(6, 0.02, 65536),
	)

	found, err := Detect(mix, WithSampleRate(22050))
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if len(found) < 2 {
		t.Fatalf("found %d resonances, want at least 2", len(found))
	}

	if math.Abs(found[0].FrequencyHz-500) > 20 {
		t.Fatalf("strongest peak at %v Hz, want ~500", found[0].FrequencyHz)
	}

	for i := 1; i < len(found); i++ {
		if found[i].ProminenceDB > found[i-1].ProminenceDB {
			t.Fatal("resonances not sorted by descending prominence")
		}
	}
}

func TestDetectCapsResultCount(t *testing.T) {
	parts := make([][]float64, 0, 8)
	for _, freq := range []float64{200, 400, 700, 1200, 2100, 3600, 5200, 8000} {
		parts = append(parts, testutil.DeterministicSine(freq, 22050, 0.4, 65536))
	}

	mix := testutil.Mix(parts...)

	found, err := Detect(mix, WithSampleRate(22050), WithMaxResonances(3))
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if len(found) > 3 {
		t.Fatalf("found %d resonances, want at most 3", len(found))
	}
}

func TestDetectCleanNoise(t *testing.T) {
	noise := testutil.DeterministicNoise(12, 0.3, 65536)

	found, err := Detect(noise, WithSampleRate(22050))
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	// Averaged broadband noise has no peak anywhere near the prominence of
	// a real resonance.
	for _, r := range found {
		if r.ProminenceDB > 10 {
			t.Fatalf("noise produced a %v dB prominent peak at %v Hz",
				r.ProminenceDB, r.FrequencyHz)
		}
	}
}

func TestDetectShortInput(t *testing.T) {
	var invalid *signal.InvalidSignalError

	_, err := Detect(make([]float64, 32), WithSampleRate(22050))
	if !errors.As(err, &invalid) {
		t.Fatalf("got %v, want InvalidSignalError", err)
	}
}

func TestDetectDeterministic(t *testing.T) {
	mix := testutil.Mix(
		testutil.DeterministicSine(2500, 22050, 0.4, 32768),
		testutil.DeterministicNoise(5, 0.05, 32768),
	)

	a, err := Detect(mix, WithSampleRate(22050))
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	b, err := Detect(mix, WithSampleRate(22050))
	if err != nil {
		t.Fatalf("Detect error: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("runs found %d and %d resonances", len(a), len(b))
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("resonance %d differs between runs", i)
		}
	}
}

func TestSeverityPolicyClassify(t *testing.T) {
	policy := DefaultSeverityPolicy()

	cases := []struct {
		name string
		prom float64
		q    float64
		freq float64
		want analyze.Severity
	}{
		{"prominent and sharp", 7, 3, 1000, analyze.SeverityHigh},
		{"prominent in harsh range", 5.5, 1, 3000, analyze.SeverityHigh},
		{"prominent outside harsh range", 5.5, 1, 1000, analyze.SeverityModerate},
		{"moderately prominent", 4.2, 1, 500, analyze.SeverityModerate},
		{"sharp but subtle", 3.2, 3, 500, analyze.SeverityModerate},
		{"broad and subtle", 3.2, 1, 500, analyze.SeverityLow},
	}

	for _, tc := range cases {
		if got := policy.Classify(tc.prom, tc.q, tc.freq); got != tc.want {
			t.Errorf("%s: Classify(%v, %v, %v) = %v, want %v",
				tc.name, tc.prom, tc.q, tc.freq, got, tc.want)
		}
	}
}
