package signal

import (
	"math"
	"testing"
)

func testSine(freq, rate float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freq / rate
	for i := range out {
		out[i] = math.Sin(step * float64(i))
	}
	return out
}

func TestResampledNoOpAtOrBelowTarget(t *testing.T) {
	sig, err := FromMono(testSine(440, 22050, 4096), 22050)
	if err != nil {
		t.Fatalf("FromMono error: %v", err)
	}

	same, err := sig.Resampled(22050)
	if err != nil {
		t.Fatalf("Resampled error: %v", err)
	}

	if same != sig {
		t.Fatal("expected the receiver back when already at the target rate")
	}

	same, err = sig.Resampled(44100)
	if err != nil {
		t.Fatalf("Resampled error: %v", err)
	}

	if same != sig {
		t.Fatal("expected the receiver back instead of upsampling")
	}
}

func TestResampledHalvesLength(t *testing.T) {
	sig, err := FromMono(testSine(1000, 44100, 44100), 44100)
	if err != nil {
		t.Fatalf("FromMono error: %v", err)
	}

	out, err := sig.Resampled(22050)
	if err != nil {
		t.Fatalf("Resampled error: %v", err)
	}

	if out.SampleRate() != 22050 {
		t.Fatalf("rate = %v, want 22050", out.SampleRate())
	}

	if got := out.Frames(); got != 22050 {
		t.Fatalf("frames = %d, want 22050", got)
	}

	// A 1 kHz tone sits far below the new Nyquist and must survive with
	// most of its level intact.
	var sumSq float64
	for _, v := range out.Channel(0)[1000:] {
		sumSq += v * v
	}

	rms := math.Sqrt(sumSq / float64(len(out.Channel(0))-1000))
	if rms < 0.5 {
		t.Fatalf("post-resample RMS = %v, want > 0.5", rms)
	}
}

func TestResampledKeepsChannels(t *testing.T) {
	left := testSine(500, 44100, 8192)
	right := testSine(2000, 44100, 8192)

	sig, err := New([][]float64{left, right}, 44100)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	out, err := sig.Resampled(22050)
	if err != nil {
		t.Fatalf("Resampled error: %v", err)
	}

	if out.Channels() != 2 {
		t.Fatalf("channels = %d, want 2", out.Channels())
	}
}

func TestResampledRejectsBadTarget(t *testing.T) {
	sig, err := FromMono(testSine(440, 44100, 4096), 44100)
	if err != nil {
		t.Fatalf("FromMono error: %v", err)
	}

	if _, err := sig.Resampled(0); err == nil {
		t.Fatal("expected error for zero target rate")
	}
}
