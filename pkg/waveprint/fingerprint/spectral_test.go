package fingerprint

import (
	"math"
	"testing"
)

func extractFirstFrame(t *testing.T, samples []float64, cfg Config) []float64 {
	t.Helper()

	frames, err := Frames(samples, cfg)
	if err != nil {
		t.Fatalf("Frames failed: %v", err)
	}
	if len(frames) == 0 {
		t.Fatal("expected at least one frame")
	}
	return Extract(frames[0], cfg)
}

func TestExtractVectorShape(t *testing.T) {
	cfg := DefaultConfig()
	features := extractFirstFrame(t, sineWave(440, 1, cfg.SampleRate), cfg)

	if len(features) != cfg.NumBands {
		t.Fatalf("expected %d band energies, got %d", cfg.NumBands, len(features))
	}
	for i, e := range features {
		if e < 0 || math.IsNaN(e) || math.IsInf(e, 0) {
			t.Fatalf("band %d energy is not a sane value: %v", i, e)
		}
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	cfg := DefaultConfig()
	samples := sineWave(1000, 1, cfg.SampleRate)

	a := extractFirstFrame(t, samples, cfg)
	b := extractFirstFrame(t, samples, cfg)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("band %d differs between identical runs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestExtractNormalizesEnergy(t *testing.T) {
	cfg := DefaultConfig()
	features := extractFirstFrame(t, sineWave(1000, 1, cfg.SampleRate), cfg)

	var total float64
	for _, e := range features {
		total += e
	}
	if math.Abs(total-1) > 1e-9 {
		t.Fatalf("band energies should sum to 1 after normalization, got %v", total)
	}
}

func TestExtractCancelsUniformGain(t *testing.T) {
	cfg := DefaultConfig()
	loud := sineWave(1000, 1, cfg.SampleRate)

	quiet := make([]float64, len(loud))
	for i, s := range loud {
		quiet[i] = s * 0.25
	}

	a := extractFirstFrame(t, loud, cfg)
	b := extractFirstFrame(t, quiet, cfg)
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("band %d should be gain invariant: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestExtractSilence(t *testing.T) {
	cfg := DefaultConfig()
	features := extractFirstFrame(t, make([]float64, cfg.SampleRate), cfg)

	for i, e := range features {
		if e != 0 {
			t.Fatalf("silence should extract to zero energies, band %d is %v", i, e)
		}
	}
}

func TestExtractConcentratesTone(t *testing.T) {
	cfg := DefaultConfig()
	features := extractFirstFrame(t, sineWave(1000, 1, cfg.SampleRate), cfg)

	peak, peakBand := 0.0, -1
	for i, e := range features {
		if e > peak {
			peak, peakBand = e, i
		}
	}
	if peak < 0.5 {
		t.Errorf("a pure tone should dominate a single band, peak share is %v", peak)
	}

	// The dominant band must not move with amplitude.
	quiet := sineWave(1000, 1, cfg.SampleRate)
	for i := range quiet {
		quiet[i] *= 0.1
	}
	features = extractFirstFrame(t, quiet, cfg)
	quietPeak, quietBand := 0.0, -1
	for i, e := range features {
		if e > quietPeak {
			quietPeak, quietBand = e, i
		}
	}
	if quietBand != peakBand {
		t.Errorf("dominant band moved from %d to %d", peakBand, quietBand)
	}
}

func TestBandEdgesCoverSpectrum(t *testing.T) {
	tests := []struct {
		name string
		cfg  func() Config
	}{
		{"default", DefaultConfig},
		{"few bands", func() Config {
			cfg := DefaultConfig()
			cfg.NumBands = 8
			return cfg
		}},
		{"small frames", func() Config {
			cfg := DefaultConfig()
			cfg.FrameLength = 256
			cfg.HopLength = 128
			cfg.NumBands = 12
			return cfg
		}},
		{"low sample rate", func() Config {
			cfg := DefaultConfig()
			cfg.SampleRate = 800
			return cfg
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg()
			if err := cfg.Validate(); err != nil {
				t.Fatalf("test config invalid: %v", err)
			}

			edges := bandEdges(cfg)
			if len(edges) != cfg.NumBands+1 {
				t.Fatalf("expected %d edges, got %d", cfg.NumBands+1, len(edges))
			}
			if edges[0] < 0 {
				t.Fatalf("first edge is negative: %d", edges[0])
			}
			if edges[len(edges)-1] != cfg.FrameLength/2 {
				t.Fatalf("last edge should reach the bin count %d, got %d", cfg.FrameLength/2, edges[len(edges)-1])
			}
			for i := 1; i < len(edges); i++ {
				if edges[i] <= edges[i-1] {
					t.Fatalf("edges must be strictly increasing, edge %d: %d <= %d", i, edges[i], edges[i-1])
				}
			}
		})
	}
}
