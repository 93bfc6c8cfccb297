package decoder

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-mixcompare/signal"
)

func decodeWAV(path string) (*signal.Signal, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()

	dec := wav.NewDecoder(file)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav pcm: %w", err)
	}

	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid wav buffer: %s", path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth <= 0 {
		bitDepth = int(dec.BitDepth)
	}

	numChannels := buf.Format.NumChannels
	frames := len(buf.Data) / numChannels
	scale := 1.0 / float64(int(1)<<uint(bitDepth-1))

	channels := make([][]float64, numChannels)
	for ch := range channels {
		channels[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			channels[ch][i] = float64(buf.Data[i*numChannels+ch]) * scale
		}
	}

	return signal.New(channels, float64(buf.Format.SampleRate))
}
