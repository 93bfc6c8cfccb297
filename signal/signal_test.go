package signal

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewValidation(t *testing.T) {
	var invalid *InvalidSignalError

	_, err := New(nil, 44100)
	if !errors.As(err, &invalid) {
		t.Fatalf("no channels: got %v, want InvalidSignalError", err)
	}

	_, err = New([][]float64{{1, 2}, {1}}, 44100)
	if !errors.As(err, &invalid) {
		t.Fatalf("ragged channels: got %v, want InvalidSignalError", err)
	}

	_, err = New([][]float64{{1, 2}}, 0)
	if !errors.As(err, &invalid) {
		t.Fatalf("zero rate: got %v, want InvalidSignalError", err)
	}

	_, err = New([][]float64{{1, 2}}, math.NaN())
	if !errors.As(err, &invalid) {
		t.Fatalf("NaN rate: got %v, want InvalidSignalError", err)
	}
}

func TestAccessors(t *testing.T) {
	sig, err := New([][]float64{{1, 2, 3, 4}, {5, 6, 7, 8}}, 4)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	if sig.Channels() != 2 {
		t.Fatalf("Channels = %d, want 2", sig.Channels())
	}

	if sig.Frames() != 4 {
		t.Fatalf("Frames = %d, want 4", sig.Frames())
	}

	if sig.SampleRate() != 4 {
		t.Fatalf("SampleRate = %v, want 4", sig.SampleRate())
	}

	if sig.Duration() != time.Second {
		t.Fatalf("Duration = %v, want 1s", sig.Duration())
	}

	if got := sig.Channel(1)[0]; got != 5 {
		t.Fatalf("Channel(1)[0] = %v, want 5", got)
	}
}

func TestMonoMixdown(t *testing.T) {
	sig, err := New([][]float64{{1, 1, 1}, {3, 3, 3}}, 44100)
	if err != nil {
		t.Fatalf("New error: %v", err)
	}

	mono := sig.Mono()
	for i, v := range mono {
		if v != 2 {
			t.Fatalf("mono[%d] = %v, want 2", i, v)
		}
	}
}

func TestMonoReturnsCopy(t *testing.T) {
	samples := []float64{1, 2, 3}

	sig, err := FromMono(samples, 44100)
	if err != nil {
		t.Fatalf("FromMono error: %v", err)
	}

	mono := sig.Mono()
	mono[0] = 99

	if sig.Channel(0)[0] != 1 {
		t.Fatal("Mono aliases the channel buffer")
	}
}
