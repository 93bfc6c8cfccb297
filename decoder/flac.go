package decoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"

	"github.com/cwbudde/algo-mixcompare/signal"
)

func decodeFLAC(path string) (*signal.Signal, error) {
	stream, err := flac.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse flac: %w", err)
	}
	defer stream.Close()

	info := stream.Info
	numChannels := int(info.NChannels)

	if numChannels < 1 {
		return nil, fmt.Errorf("invalid flac stream: %s", path)
	}

	scale := 1.0 / float64(int(1)<<uint(info.BitsPerSample-1))

	channels := make([][]float64, numChannels)
	if info.NSamples > 0 {
		for ch := range channels {
			channels[ch] = make([]float64, 0, info.NSamples)
		}
	}

	for {
		frame, err := stream.ParseNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}

			return nil, fmt.Errorf("decode flac frame: %w", err)
		}

		for ch := 0; ch < numChannels && ch < len(frame.Subframes); ch++ {
			for _, sample := range frame.Subframes[ch].Samples {
				channels[ch] = append(channels[ch], float64(sample)*scale)
			}
		}
	}

	return signal.New(channels, float64(info.SampleRate))
}
