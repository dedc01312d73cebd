package fingerprint

import (
	"errors"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got: %v", err)
	}
}

func TestValidateRejectsBadParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		param  string
	}{
		{"zero sample rate", func(c *Config) { c.SampleRate = 0 }, "SampleRate"},
		{"negative sample rate", func(c *Config) { c.SampleRate = -11025 }, "SampleRate"},
		{"zero frame length", func(c *Config) { c.FrameLength = 0 }, "FrameLength"},
		{"zero hop length", func(c *Config) { c.HopLength = 0 }, "HopLength"},
		{"negative hop length", func(c *Config) { c.HopLength = -1 }, "HopLength"},
		{"hop exceeds frame", func(c *Config) { c.HopLength = c.FrameLength + 1 }, "HopLength"},
		{"nil window", func(c *Config) { c.Window = nil }, "Window"},
		{"single band", func(c *Config) { c.NumBands = 1 }, "NumBands"},
		{"too many bands", func(c *Config) { c.NumBands = c.FrameLength/2 + 1 }, "NumBands"},
		{"zero codeword width", func(c *Config) { c.CodewordWidth = 0 }, "CodewordWidth"},
		{"oversized codeword width", func(c *Config) { c.CodewordWidth = 65 }, "CodewordWidth"},
		{"width too small for bands", func(c *Config) { c.CodewordWidth = 16 }, "CodewordWidth"},
		{"negative max offset", func(c *Config) { c.MaxOffset = -1 }, "MaxOffset"},
		{"threshold below range", func(c *Config) { c.MatchThreshold = -0.01 }, "MatchThreshold"},
		{"threshold above range", func(c *Config) { c.MatchThreshold = 1.01 }, "MatchThreshold"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}

			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigurationError, got %T: %v", err, err)
			}
			if cfgErr.Param != tt.param {
				t.Errorf("expected error on %q, got %q (%v)", tt.param, cfgErr.Param, err)
			}
		})
	}
}

func TestValidateThresholdBoundsAreInclusive(t *testing.T) {
	for _, threshold := range []float64{0, 1} {
		cfg := DefaultConfig()
		cfg.MatchThreshold = threshold
		if err := cfg.Validate(); err != nil {
			t.Errorf("threshold %v should be accepted, got: %v", threshold, err)
		}
	}
}

func TestValidateHopEqualToFrame(t *testing.T) {
	cfg := DefaultConfig()
	cfg.HopLength = cfg.FrameLength
	if err := cfg.Validate(); err != nil {
		t.Fatalf("non-overlapping frames should be allowed, got: %v", err)
	}
}
