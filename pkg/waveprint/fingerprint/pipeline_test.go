package fingerprint

import (
	"math"
	"math/rand"
	"sync"
	"testing"
)

// sineWave synthesizes a pure tone at 0.8 amplitude.
func sineWave(freq, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

// chirpWave sweeps linearly from f0 to f1 so every frame looks different.
func chirpWave(f0, f1, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		t := float64(i) / float64(sampleRate)
		phase := 2 * math.Pi * (f0*t + (f1-f0)*t*t/(2*seconds))
		samples[i] = 0.8 * math.Sin(phase)
	}
	return samples
}

// noiseWave synthesizes seeded uniform noise.
func noiseWave(seed int64, seconds float64, sampleRate int) []float64 {
	r := rand.New(rand.NewSource(seed))
	samples := make([]float64, int(seconds*float64(sampleRate)))
	for i := range samples {
		samples[i] = 0.8 * (2*r.Float64() - 1)
	}
	return samples
}

// withNoise overlays seeded uniform noise of the given amplitude.
func withNoise(samples []float64, amplitude float64, seed int64) []float64 {
	r := rand.New(rand.NewSource(seed))
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s + amplitude*(2*r.Float64()-1)
	}
	return out
}

func prependSilence(samples []float64, n int) []float64 {
	out := make([]float64, n+len(samples))
	copy(out[n:], samples)
	return out
}

func TestFingerprintIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	samples := chirpWave(200, 3000, 2, cfg.SampleRate)

	a, err := Fingerprint(samples, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	b, err := Fingerprint(samples, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	if len(a) != len(b) {
		t.Fatalf("sequence lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("codeword %d differs between identical runs: %#x vs %#x", i, uint64(a[i]), uint64(b[i]))
		}
	}
}

func TestFingerprintCodewordCount(t *testing.T) {
	cfg := DefaultConfig()

	// Two seconds at 11025 Hz: (22050-4096)/2048+1 = 9 frames.
	seq, err := Fingerprint(chirpWave(200, 3000, 2, cfg.SampleRate), cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if len(seq) != 9 {
		t.Fatalf("expected 9 codewords, got %d", len(seq))
	}
}

func TestFingerprintDegenerateInput(t *testing.T) {
	cfg := DefaultConfig()

	seq, err := Fingerprint(nil, cfg)
	if err != nil {
		t.Fatalf("empty input is valid, got error: %v", err)
	}
	if len(seq) != 0 {
		t.Fatalf("expected an empty sequence, got %d codewords", len(seq))
	}

	seq, err = Fingerprint(make([]float64, cfg.FrameLength-1), cfg)
	if err != nil {
		t.Fatalf("sub-frame input is valid, got error: %v", err)
	}
	if len(seq) != 0 {
		t.Fatalf("expected an empty sequence for sub-frame input, got %d codewords", len(seq))
	}
}

func TestFingerprintRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HopLength = cfg.FrameLength * 2

	if _, err := Fingerprint(make([]float64, cfg.SampleRate), cfg); err == nil {
		t.Fatal("expected a configuration error")
	}
}

func TestSelfSimilarity(t *testing.T) {
	cfg := DefaultConfig()
	seq, err := Fingerprint(chirpWave(200, 3000, 2, cfg.SampleRate), cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	res, err := Compare(seq, seq, cfg)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Score != 1.0 || res.Offset != 0 || !res.IsMatch {
		t.Fatalf("self comparison should be a perfect match at offset 0, got %+v", res)
	}
}

func TestPaddingShiftsOffset(t *testing.T) {
	cfg := DefaultConfig()
	original := chirpWave(200, 3000, 2, cfg.SampleRate)

	// Five whole hops of leading silence shift the frame grid exactly.
	padded := prependSilence(original, 5*cfg.HopLength)

	seqA, err := Fingerprint(original, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	seqB, err := Fingerprint(padded, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	res, err := Compare(seqA, seqB, cfg)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Offset != 5 {
		t.Errorf("expected offset 5, got %d", res.Offset)
	}
	if res.Score < 0.85 {
		t.Errorf("padding should barely dent the score, got %v", res.Score)
	}
	if !res.IsMatch {
		t.Error("padded copy should still match")
	}

	swapped, err := Compare(seqB, seqA, cfg)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if swapped.Offset != -5 {
		t.Errorf("swapped comparison should report offset -5, got %d", swapped.Offset)
	}
}

func TestPaddingOffAlignedHop(t *testing.T) {
	cfg := DefaultConfig()
	original := chirpWave(200, 3000, 2, cfg.SampleRate)

	// One second of silence is 11025/2048 = 5.38 hops, so the shifted frame
	// grid no longer lines up exactly and the offset lands on a neighbor.
	padded := prependSilence(original, cfg.SampleRate)

	seqA, err := Fingerprint(original, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	seqB, err := Fingerprint(padded, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	res, err := Compare(seqA, seqB, cfg)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Offset < 5 || res.Offset > 6 {
		t.Errorf("expected an offset of 5 or 6 frames, got %d", res.Offset)
	}
	if res.Score <= 0.5 {
		t.Errorf("misaligned frames should still agree well above chance, got %v", res.Score)
	}
}

func TestNoiseDegradesScoreGradually(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOffset = 3

	original := chirpWave(200, 3000, 2, cfg.SampleRate)
	seqA, err := Fingerprint(original, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	unrelated, err := Fingerprint(noiseWave(99, 2, cfg.SampleRate), cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	baseline, err := Compare(seqA, unrelated, cfg)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}

	amplitudes := []float64{0.01, 0.05, 0.2}
	averages := make([]float64, len(amplitudes))
	for i, amp := range amplitudes {
		var sum float64
		for trial := int64(0); trial < 5; trial++ {
			noisy, err := Fingerprint(withNoise(original, amp, trial+1), cfg)
			if err != nil {
				t.Fatalf("Fingerprint failed: %v", err)
			}
			res, err := Compare(seqA, noisy, cfg)
			if err != nil {
				t.Fatalf("Compare failed: %v", err)
			}
			sum += res.Score
		}
		averages[i] = sum / 5

		if averages[i] <= baseline.Score {
			t.Errorf("noise amplitude %v scored %v, not above the unrelated baseline %v",
				amp, averages[i], baseline.Score)
		}
	}

	for i := 1; i < len(averages); i++ {
		if averages[i] > averages[i-1] {
			t.Errorf("average score rose from %v to %v as noise grew from %v to %v",
				averages[i-1], averages[i], amplitudes[i-1], amplitudes[i])
		}
	}
	if averages[0] <= averages[len(averages)-1] {
		t.Errorf("lightest noise should beat heaviest: %v vs %v", averages[0], averages[len(averages)-1])
	}
}

func TestDissimilarSignalsStayBelowThreshold(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxOffset = 5

	seqA, err := Fingerprint(chirpWave(200, 3000, 4, cfg.SampleRate), cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	seqB, err := Fingerprint(noiseWave(7, 4, cfg.SampleRate), cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	res, err := Compare(seqA, seqB, cfg)
	if err != nil {
		t.Fatalf("Compare failed: %v", err)
	}
	if res.Score >= cfg.MatchThreshold {
		t.Errorf("unrelated signals scored %v, at or above the %v threshold", res.Score, cfg.MatchThreshold)
	}
	if res.IsMatch {
		t.Error("unrelated signals must not match")
	}
}

func TestCompareWithEmptyFingerprint(t *testing.T) {
	cfg := DefaultConfig()

	seqA, err := Fingerprint(chirpWave(200, 3000, 2, cfg.SampleRate), cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	empty, err := Fingerprint(nil, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	res, err := Compare(seqA, empty, cfg)
	if err != nil {
		t.Fatalf("comparing with an empty fingerprint is valid, got error: %v", err)
	}
	if !res.NoOverlap || res.Score != 0 || res.IsMatch {
		t.Fatalf("expected a zero-score no-overlap result, got %+v", res)
	}
}

func TestFingerprintConcurrentCalls(t *testing.T) {
	cfg := DefaultConfig()
	samples := chirpWave(200, 3000, 2, cfg.SampleRate)

	want, err := Fingerprint(samples, cfg)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}

	const workers = 8
	results := make([]Sequence, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			results[w], errs[w] = Fingerprint(samples, cfg)
		}(w)
	}
	wg.Wait()

	for w := 0; w < workers; w++ {
		if errs[w] != nil {
			t.Fatalf("worker %d failed: %v", w, errs[w])
		}
		if len(results[w]) != len(want) {
			t.Fatalf("worker %d produced %d codewords, expected %d", w, len(results[w]), len(want))
		}
		for i := range want {
			if results[w][i] != want[i] {
				t.Fatalf("worker %d codeword %d differs: %#x vs %#x", w, i, uint64(results[w][i]), uint64(want[i]))
			}
		}
	}
}

func BenchmarkFingerprint(b *testing.B) {
	cfg := DefaultConfig()
	samples := chirpWave(200, 3000, 10, cfg.SampleRate)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Fingerprint(samples, cfg); err != nil {
			b.Fatalf("Fingerprint failed: %v", err)
		}
	}
}

func BenchmarkCompare(b *testing.B) {
	cfg := DefaultConfig()
	seqA, err := Fingerprint(chirpWave(200, 3000, 10, cfg.SampleRate), cfg)
	if err != nil {
		b.Fatalf("Fingerprint failed: %v", err)
	}
	seqB, err := Fingerprint(chirpWave(250, 2800, 10, cfg.SampleRate), cfg)
	if err != nil {
		b.Fatalf("Fingerprint failed: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compare(seqA, seqB, cfg); err != nil {
			b.Fatalf("Compare failed: %v", err)
		}
	}
}
