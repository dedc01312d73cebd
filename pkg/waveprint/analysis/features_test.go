package analysis

import (
	"math"
	"testing"
)

func sineWave(freq float64, seconds float64, sampleRate int) []float64 {
	n := int(seconds * float64(sampleRate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.6 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return samples
}

func TestAnalyzePureTone(t *testing.T) {
	const (
		sampleRate = 11025
		freq       = 440.0
	)
	c := Analyze(sineWave(freq, 1, sampleRate), sampleRate)

	if math.Abs(c.DurationSec-1.0) > 1e-9 {
		t.Errorf("expected 1s duration, got %v", c.DurationSec)
	}

	// RMS of a sine is amplitude over sqrt(2).
	wantRMS := 0.6 / math.Sqrt2
	if math.Abs(c.RMSEnergy-wantRMS) > 0.01 {
		t.Errorf("expected RMS near %v, got %v", wantRMS, c.RMSEnergy)
	}

	// A tone crosses zero twice per cycle.
	wantZCR := 2 * freq / float64(sampleRate)
	if math.Abs(c.ZeroCrossRate-wantZCR) > 0.005 {
		t.Errorf("expected zero-cross rate near %v, got %v", wantZCR, c.ZeroCrossRate)
	}

	// Spectral leakage pulls the centroid slightly off the tone.
	if math.Abs(c.SpectralCentroid-freq) > 60 {
		t.Errorf("expected centroid near %v Hz, got %v", freq, c.SpectralCentroid)
	}
	if c.SpectralRolloff < freq-60 {
		t.Errorf("rolloff should sit at or above the tone, got %v", c.SpectralRolloff)
	}
	if c.SpectralBandwidth <= 0 {
		t.Errorf("bandwidth should be positive, got %v", c.SpectralBandwidth)
	}
}

func TestAnalyzeCentroidTracksFrequency(t *testing.T) {
	const sampleRate = 11025

	low := Analyze(sineWave(300, 1, sampleRate), sampleRate)
	high := Analyze(sineWave(2500, 1, sampleRate), sampleRate)

	if high.SpectralCentroid <= low.SpectralCentroid {
		t.Errorf("centroid should grow with pitch: %v vs %v", low.SpectralCentroid, high.SpectralCentroid)
	}
	if high.ZeroCrossRate <= low.ZeroCrossRate {
		t.Errorf("zero-cross rate should grow with pitch: %v vs %v", low.ZeroCrossRate, high.ZeroCrossRate)
	}
}

func TestAnalyzeDegenerateInput(t *testing.T) {
	if c := Analyze(nil, 11025); c != (Characteristics{}) {
		t.Errorf("empty input should yield the zero value, got %+v", c)
	}

	silence := Analyze(make([]float64, 11025), 11025)
	if silence.RMSEnergy != 0 || silence.ZeroCrossRate != 0 {
		t.Errorf("silence should carry no energy or crossings, got %+v", silence)
	}
	if silence.SpectralCentroid != 0 {
		t.Errorf("silent frames are skipped, centroid should stay 0, got %v", silence.SpectralCentroid)
	}

	short := Analyze(sineWave(440, 1, 11025)[:100], 11025)
	if short.DurationSec == 0 || short.RMSEnergy == 0 {
		t.Errorf("sub-frame input keeps time-domain stats, got %+v", short)
	}
	if short.SpectralCentroid != 0 {
		t.Errorf("sub-frame input has no spectral frames, got centroid %v", short.SpectralCentroid)
	}
}

func TestCompareCharacteristicsSelf(t *testing.T) {
	c := Analyze(sineWave(440, 1, 11025), 11025)

	breakdown := CompareCharacteristics(c, c)
	if breakdown.Overall != 1 {
		t.Errorf("identical characteristics should score 1, got %v", breakdown.Overall)
	}
	if len(breakdown.Features) != 6 {
		t.Fatalf("expected 6 feature rows, got %d", len(breakdown.Features))
	}
	for _, f := range breakdown.Features {
		if f.Similarity != 1 {
			t.Errorf("feature %q should score 1 against itself, got %v", f.Name, f.Similarity)
		}
	}
}

func TestCompareCharacteristicsDifferentSignals(t *testing.T) {
	a := Analyze(sineWave(300, 1, 11025), 11025)
	b := Analyze(sineWave(2500, 2, 11025), 11025)

	breakdown := CompareCharacteristics(a, b)
	if breakdown.Overall >= 1 {
		t.Errorf("different signals should score below 1, got %v", breakdown.Overall)
	}
	for _, f := range breakdown.Features {
		if f.Similarity < 0 || f.Similarity > 1 {
			t.Errorf("feature %q out of range: %v", f.Name, f.Similarity)
		}
	}
}

func TestFeatureSimilarity(t *testing.T) {
	tests := []struct {
		a, b, want float64
	}{
		{1, 1, 1},
		{0, 0, 1},
		{1, 2, 0.5},
		{2, 1, 0.5},
		{0, 5, 0},
		{-1, 1, 0},
	}

	for _, tt := range tests {
		if got := featureSimilarity(tt.a, tt.b); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("featureSimilarity(%v, %v) = %v, expected %v", tt.a, tt.b, got, tt.want)
		}
	}
}
