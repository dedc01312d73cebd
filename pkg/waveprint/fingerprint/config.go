// Package fingerprint reduces mono PCM audio to compact codeword sequences
// and compares sequences for perceptual similarity.
//
// The pipeline is the classic banded-energy scheme: overlapping windowed
// frames are reduced to log-spaced band energies, the signs of the band and
// time energy deltas are packed into one fixed-width codeword per frame, and
// two sequences are aligned by scanning relative frame offsets and scoring
// the bitwise agreement of the overlap.
//
// Every function in this package is pure. Identical inputs under an
// identical Config always produce identical outputs, and concurrent calls
// share no state.
package fingerprint

import "fmt"

// Pipeline defaults. 11025 Hz input with 4096-sample frames at half overlap
// yields about 5.4 codewords per second; 33 bands produce 32 delta bits,
// exactly filling a 32-bit codeword.
const (
	DefaultSampleRate     = 11025
	DefaultFrameLength    = 4096
	DefaultHopLength      = 2048
	DefaultNumBands       = 33
	DefaultCodewordWidth  = 32
	DefaultMatchThreshold = 0.80
)

// minBandFreq is the lower edge of the band layout in Hz. Content below it
// is mostly rumble and DC leakage and carries little identity.
const minBandFreq = 300.0

// Config holds every tunable parameter of the pipeline. The zero value is
// not usable; start from DefaultConfig and override fields as needed.
type Config struct {
	// SampleRate is the rate of the PCM input in Hz. It only affects the
	// band layout and offset-to-seconds conversion; the caller is
	// responsible for resampling input to this rate.
	SampleRate int

	// FrameLength is the analysis frame size in samples.
	FrameLength int

	// HopLength is the frame advance in samples. Must not exceed
	// FrameLength.
	HopLength int

	// Window tapers each frame before the transform.
	Window WindowFunc

	// NumBands is the number of log-spaced frequency bands. Each codeword
	// carries NumBands-1 delta bits.
	NumBands int

	// CodewordWidth is the nominal codeword size in bits, 1 to 64. It must
	// be able to hold NumBands-1 bits and is recorded in the serialized
	// form.
	CodewordWidth int

	// MaxOffset caps the comparator's alignment scan in frames. Zero scans
	// the full valid range. Leading content longer than the cap is never
	// detected; that blind spot is the price of bounding the scan.
	MaxOffset int

	// MatchThreshold is the similarity score at or above which two
	// sequences are reported as a match. Must lie within [0, 1].
	MatchThreshold float64
}

// DefaultConfig returns the standard pipeline parameters.
func DefaultConfig() Config {
	return Config{
		SampleRate:     DefaultSampleRate,
		FrameLength:    DefaultFrameLength,
		HopLength:      DefaultHopLength,
		Window:         Hann,
		NumBands:       DefaultNumBands,
		CodewordWidth:  DefaultCodewordWidth,
		MaxOffset:      0,
		MatchThreshold: DefaultMatchThreshold,
	}
}

// ConfigurationError reports an invalid pipeline parameter. Operations fail
// with it before touching any samples; out-of-range values are never
// silently clamped.
type ConfigurationError struct {
	Param  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("fingerprint config: %s %s", e.Param, e.Reason)
}

// Validate checks the configuration and returns a *ConfigurationError
// describing the first problem found.
func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return &ConfigurationError{Param: "SampleRate", Reason: "must be positive"}
	case c.FrameLength <= 0:
		return &ConfigurationError{Param: "FrameLength", Reason: "must be positive"}
	case c.HopLength <= 0:
		return &ConfigurationError{Param: "HopLength", Reason: "must be positive"}
	case c.HopLength > c.FrameLength:
		return &ConfigurationError{Param: "HopLength", Reason: "cannot exceed FrameLength"}
	case c.Window == nil:
		return &ConfigurationError{Param: "Window", Reason: "must not be nil"}
	case c.NumBands < 2:
		// One band yields zero delta bits and a codeword that says nothing.
		return &ConfigurationError{Param: "NumBands", Reason: "must be at least 2"}
	case c.NumBands > c.FrameLength/2:
		return &ConfigurationError{Param: "NumBands", Reason: "cannot exceed FrameLength/2 spectrum bins"}
	case c.CodewordWidth < 1 || c.CodewordWidth > 64:
		return &ConfigurationError{Param: "CodewordWidth", Reason: "must be between 1 and 64"}
	case c.NumBands-1 > c.CodewordWidth:
		return &ConfigurationError{Param: "CodewordWidth", Reason: fmt.Sprintf("cannot hold %d delta bits", c.NumBands-1)}
	case c.MaxOffset < 0:
		return &ConfigurationError{Param: "MaxOffset", Reason: "must not be negative"}
	case c.MatchThreshold < 0 || c.MatchThreshold > 1:
		return &ConfigurationError{Param: "MatchThreshold", Reason: "must be within [0, 1]"}
	}
	return nil
}
