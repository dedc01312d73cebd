package fingerprint

import "testing"

func encoderTestConfig(numBands int) Config {
	cfg := DefaultConfig()
	cfg.NumBands = numBands
	cfg.CodewordWidth = 32
	return cfg
}

func TestEncodeEmptyInput(t *testing.T) {
	seq := Encode(nil, DefaultConfig())
	if len(seq) != 0 {
		t.Fatalf("encoding no features should yield an empty sequence, got %d codewords", len(seq))
	}

	seq = Encode([][]float64{}, DefaultConfig())
	if len(seq) != 0 {
		t.Fatalf("encoding zero features should yield an empty sequence, got %d codewords", len(seq))
	}
}

func TestEncodeOneCodewordPerFrame(t *testing.T) {
	cfg := encoderTestConfig(4)
	features := [][]float64{
		{0.4, 0.3, 0.2, 0.1},
		{0.1, 0.2, 0.3, 0.4},
		{0.25, 0.25, 0.25, 0.25},
	}

	seq := Encode(features, cfg)
	if len(seq) != len(features) {
		t.Fatalf("expected %d codewords, got %d", len(features), len(seq))
	}
}

func TestEncodeFirstFrameUsesBandDeltas(t *testing.T) {
	cfg := encoderTestConfig(3)

	// Descending bands: both deltas positive, bits 0 and 1 set.
	seq := Encode([][]float64{{0.5, 0.3, 0.2}}, cfg)
	if seq[0] != 0b11 {
		t.Fatalf("expected codeword 0b11, got %#b", uint64(seq[0]))
	}

	// Ascending bands: both deltas negative, no bits set.
	seq = Encode([][]float64{{0.2, 0.3, 0.5}}, cfg)
	if seq[0] != 0 {
		t.Fatalf("expected codeword 0, got %#b", uint64(seq[0]))
	}
}

func TestEncodeTimeDeltaFlipsBits(t *testing.T) {
	cfg := encoderTestConfig(3)
	features := [][]float64{
		{0.5, 0.3, 0.2},
		{0.1, 0.4, 0.5},
	}

	seq := Encode(features, cfg)

	// Frame 0: band deltas +0.2 and +0.1, so 0b11.
	if seq[0] != 0b11 {
		t.Fatalf("frame 0: expected 0b11, got %#b", uint64(seq[0]))
	}

	// Frame 1 bit 0: (0.1-0.4) - (0.5-0.3) = -0.5, clear.
	// Frame 1 bit 1: (0.4-0.5) - (0.3-0.2) = -0.2, clear.
	if seq[1] != 0 {
		t.Fatalf("frame 1: expected 0, got %#b", uint64(seq[1]))
	}
}

func TestEncodeIgnoresUniformGain(t *testing.T) {
	cfg := encoderTestConfig(5)
	base := [][]float64{
		{0.4, 0.1, 0.2, 0.2, 0.1},
		{0.1, 0.3, 0.3, 0.2, 0.1},
		{0.2, 0.2, 0.1, 0.4, 0.1},
	}

	scaled := make([][]float64, len(base))
	for i, vec := range base {
		scaled[i] = make([]float64, len(vec))
		for j, v := range vec {
			scaled[i][j] = v * 3
		}
	}

	a := Encode(base, cfg)
	b := Encode(scaled, cfg)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("codeword %d changed under uniform gain: %#x vs %#x", i, uint64(a[i]), uint64(b[i]))
		}
	}
}

func TestEncodeStaysWithinSignificantBits(t *testing.T) {
	cfg := DefaultConfig()

	samples := chirpWave(200, 3000, 2, cfg.SampleRate)
	seq, err := Fingerprint(samples, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if len(seq) == 0 {
		t.Fatal("expected a non-empty sequence")
	}

	limit := Codeword(1) << uint(cfg.NumBands-1)
	for i, w := range seq {
		if w >= limit {
			t.Fatalf("codeword %d uses bits beyond the %d delta bits: %#x", i, cfg.NumBands-1, uint64(w))
		}
	}
}
