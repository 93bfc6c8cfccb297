package signal

import "fmt"

// InvalidSignalError reports a malformed or too-short input signal.
type InvalidSignalError struct {
	Reason string
}

func (e *InvalidSignalError) Error() string {
	return "invalid signal: " + e.Reason
}

// SilentSignalError reports a signal without measurable energy. Loudness
// metrics cannot be computed below the silence floor.
type SilentSignalError struct {
	RMSDB   float64
	FloorDB float64
}

func (e *SilentSignalError) Error() string {
	return fmt.Sprintf("silent signal: RMS %.1f dB below floor %.1f dB", e.RMSDB, e.FloorDB)
}

// UnsupportedSampleRateError reports a sample rate whose Nyquist frequency
// lies below the lower bound of a required analysis band.
type UnsupportedSampleRateError struct {
	SampleRate float64
	Band       string
	BandLowHz  float64
}

func (e *UnsupportedSampleRateError) Error() string {
	return fmt.Sprintf("unsupported sample rate %.0f Hz: Nyquist below band %q lower bound %.0f Hz",
		e.SampleRate, e.Band, e.BandLowHz)
}
