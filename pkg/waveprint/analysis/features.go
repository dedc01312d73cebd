// Package analysis computes descriptive signal characteristics. They are
// reporting evidence shown next to a similarity verdict and never feed the
// fingerprint itself.
package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

// Analysis framing is fixed rather than configurable: characteristics only
// describe the signal, so they do not track the engine's pipeline config.
const (
	frameLength     = 2048
	hopLength       = 512
	rolloffQuantile = 0.85
	eps             = 1e-12
)

// Characteristics summarizes one signal for side-by-side reports.
type Characteristics struct {
	DurationSec       float64 `json:"duration_sec"`
	RMSEnergy         float64 `json:"rms_energy"`
	ZeroCrossRate     float64 `json:"zero_cross_rate"`
	SpectralCentroid  float64 `json:"spectral_centroid_hz"`
	SpectralRolloff   float64 `json:"spectral_rolloff_hz"`
	SpectralBandwidth float64 `json:"spectral_bandwidth_hz"`
}

// Analyze computes the characteristics of a mono buffer. Empty input yields
// the zero value; signals shorter than one analysis frame keep their time
// domain stats and report zero for the spectral ones.
func Analyze(samples []float64, sampleRate int) Characteristics {
	var c Characteristics
	if len(samples) == 0 || sampleRate <= 0 {
		return c
	}

	c.DurationSec = float64(len(samples)) / float64(sampleRate)
	c.RMSEnergy = math.Sqrt(floats.Dot(samples, samples) / float64(len(samples)))
	c.ZeroCrossRate = zeroCrossRate(samples)

	centroids, rolloffs, bandwidths := spectralStats(samples, sampleRate)
	if len(centroids) > 0 {
		c.SpectralCentroid = stat.Mean(centroids, nil)
		c.SpectralRolloff = stat.Mean(rolloffs, nil)
		c.SpectralBandwidth = stat.Mean(bandwidths, nil)
	}
	return c
}

// zeroCrossRate is the fraction of adjacent sample pairs that change sign.
func zeroCrossRate(samples []float64) float64 {
	if len(samples) < 2 {
		return 0
	}
	crossings := 0
	for i := 1; i < len(samples); i++ {
		if (samples[i] >= 0) != (samples[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(samples)-1)
}

// spectralStats walks hann-windowed frames and collects per-frame centroid,
// rolloff and bandwidth in Hz. Silent frames are skipped; they have no
// meaningful spectral shape.
func spectralStats(samples []float64, sampleRate int) (centroids, rolloffs, bandwidths []float64) {
	window := fingerprint.Hann(frameLength)
	binHz := float64(sampleRate) / float64(frameLength)

	frame := make([]float64, frameLength)
	for start := 0; start+frameLength <= len(samples); start += hopLength {
		for i := range frame {
			frame[i] = samples[start+i] * window[i]
		}

		spectrum := fft.FFTReal(frame)
		half := len(spectrum) / 2
		mag := make([]float64, half)
		var total float64
		for i := 0; i < half; i++ {
			mag[i] = cmplx.Abs(spectrum[i])
			total += mag[i]
		}
		if total < eps {
			continue
		}

		var centroid float64
		for i, m := range mag {
			centroid += float64(i) * binHz * m
		}
		centroid /= total
		centroids = append(centroids, centroid)

		var cumulative float64
		rolloff := float64(half-1) * binHz
		for i, m := range mag {
			cumulative += m
			if cumulative >= rolloffQuantile*total {
				rolloff = float64(i) * binHz
				break
			}
		}
		rolloffs = append(rolloffs, rolloff)

		var spread float64
		for i, m := range mag {
			d := float64(i)*binHz - centroid
			spread += d * d * m
		}
		bandwidths = append(bandwidths, math.Sqrt(spread/total))
	}
	return centroids, rolloffs, bandwidths
}

// FeatureSimilarity is one row of a characteristics comparison.
type FeatureSimilarity struct {
	Name       string  `json:"name"`
	A          float64 `json:"a"`
	B          float64 `json:"b"`
	Similarity float64 `json:"similarity"`
}

// Breakdown is a per-feature comparison plus its mean.
type Breakdown struct {
	Features []FeatureSimilarity `json:"features"`
	Overall  float64             `json:"overall"`
}

// CompareCharacteristics scores each feature pair by relative difference and
// averages the results. It is descriptive evidence only; match decisions
// belong to the fingerprint comparator.
func CompareCharacteristics(a, b Characteristics) Breakdown {
	pairs := []struct {
		name   string
		av, bv float64
	}{
		{"duration", a.DurationSec, b.DurationSec},
		{"rms energy", a.RMSEnergy, b.RMSEnergy},
		{"zero-cross rate", a.ZeroCrossRate, b.ZeroCrossRate},
		{"spectral centroid", a.SpectralCentroid, b.SpectralCentroid},
		{"spectral rolloff", a.SpectralRolloff, b.SpectralRolloff},
		{"spectral bandwidth", a.SpectralBandwidth, b.SpectralBandwidth},
	}

	features := make([]FeatureSimilarity, 0, len(pairs))
	scores := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		s := featureSimilarity(p.av, p.bv)
		features = append(features, FeatureSimilarity{Name: p.name, A: p.av, B: p.bv, Similarity: s})
		scores = append(scores, s)
	}

	return Breakdown{Features: features, Overall: stat.Mean(scores, nil)}
}

// featureSimilarity maps two scalars onto [0, 1]: 1 when equal, falling off
// with their relative difference and clamped at 0.
func featureSimilarity(a, b float64) float64 {
	if a == b {
		return 1
	}
	m := math.Max(math.Abs(a), math.Abs(b))
	if m < eps {
		return 1
	}
	s := 1 - math.Abs(a-b)/m
	if s < 0 {
		return 0
	}
	return s
}
