// Package decoder loads WAV and FLAC files into analysis signals.
package decoder

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cwbudde/algo-mixcompare/signal"
)

// UnsupportedFormatError indicates a file extension no decoder handles.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported audio format %q (supported: .wav, .flac)", e.Extension)
}

// DecodeFile reads an audio file and returns its samples as a Signal.
// The format is chosen by file extension.
func DecodeFile(path string) (*signal.Signal, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".wav", ".wave":
		return decodeWAV(path)
	case ".flac":
		return decodeFLAC(path)
	default:
		return nil, &UnsupportedFormatError{Extension: ext}
	}
}
