package fingerprint

import "fmt"

// Frame is one windowed slice of the input buffer. Offset is the start
// position in samples.
type Frame struct {
	Offset  int
	Samples []float64
}

// Frames splits samples into overlapping windowed frames starting at
// offsets 0, hop, 2*hop and so on. A trailing partial frame is dropped
// rather than zero-padded; padding would bias the final codewords toward
// silence. A buffer shorter than one frame therefore yields zero frames,
// which is valid degenerate input, not an error. The input slice is never
// modified.
func Frames(samples []float64, cfg Config) ([]Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	window := cfg.Window(cfg.FrameLength)
	if len(window) != cfg.FrameLength {
		return nil, &ConfigurationError{
			Param:  "Window",
			Reason: fmt.Sprintf("returned %d weights for a %d-sample frame", len(window), cfg.FrameLength),
		}
	}

	total := 0
	if len(samples) >= cfg.FrameLength {
		total = (len(samples)-cfg.FrameLength)/cfg.HopLength + 1
	}

	frames := make([]Frame, 0, total)
	for start := 0; start+cfg.FrameLength <= len(samples); start += cfg.HopLength {
		buf := make([]float64, cfg.FrameLength)
		for i, s := range samples[start : start+cfg.FrameLength] {
			buf[i] = s * window[i]
		}
		frames = append(frames, Frame{Offset: start, Samples: buf})
	}
	return frames, nil
}
