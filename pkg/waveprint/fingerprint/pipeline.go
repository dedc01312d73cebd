package fingerprint

// Fingerprint reduces a mono PCM buffer to its codeword sequence, composing
// Frames, Extract and Encode. A buffer shorter than one frame yields an
// empty sequence; the only error is an invalid Config.
func Fingerprint(samples []float64, cfg Config) (Sequence, error) {
	frames, err := Frames(samples, cfg)
	if err != nil {
		return nil, err
	}

	features := make([][]float64, len(frames))
	for i, f := range frames {
		features[i] = Extract(f, cfg)
	}
	return Encode(features, cfg), nil
}
