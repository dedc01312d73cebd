package fingerprint

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// energyEps guards the normalization against all-silent frames.
const energyEps = 1e-12

// Extract reduces one frame to its feature vector: the FFT magnitude
// spectrum aggregated into cfg.NumBands log-spaced band energies, then
// normalized by the vector's own total energy.
//
// Band aggregation is the pipeline's only noise mitigation. Broadband noise
// well below the signal averages out inside a band, but noise loud enough
// to reorder band energies flips codeword bits downstream; there is no
// denoising stage to save heavily degraded input. The energy normalization
// cancels uniform gain, which also approximates smooth speaker or channel
// coloration.
func Extract(frame Frame, cfg Config) []float64 {
	mag := magnitudeSpectrum(fft.FFTReal(frame.Samples))
	edges := bandEdges(cfg)

	features := make([]float64, cfg.NumBands)
	for b := 0; b < cfg.NumBands; b++ {
		var sum float64
		for i := edges[b]; i < edges[b+1]; i++ {
			sum += mag[i] * mag[i]
		}
		features[b] = sum
	}

	var total float64
	for _, e := range features {
		total += e
	}
	if total > energyEps {
		for b := range features {
			features[b] /= total
		}
	}
	return features
}

// magnitudeSpectrum keeps the first half of the complex spectrum, one
// magnitude per bin up to Nyquist.
func magnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum) / 2
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// bandEdges lays out cfg.NumBands+1 bin indices, geometrically spaced from
// minBandFreq up to Nyquist. Edges are forced strictly increasing so every
// band covers at least one bin; Validate guarantees enough bins exist.
func bandEdges(cfg Config) []int {
	bins := cfg.FrameLength / 2

	lo := int(minBandFreq * float64(cfg.FrameLength) / float64(cfg.SampleRate))
	if lo < 1 {
		// Skip the DC bin.
		lo = 1
	}
	if lo > bins-cfg.NumBands {
		lo = bins - cfg.NumBands
		if lo < 1 {
			lo = 1
		}
	}

	edges := make([]int, cfg.NumBands+1)
	ratio := float64(bins) / float64(lo)
	for i := 0; i <= cfg.NumBands; i++ {
		exp := float64(i) / float64(cfg.NumBands)
		edges[i] = int(math.Round(float64(lo) * math.Pow(ratio, exp)))
	}
	edges[cfg.NumBands] = bins

	for i := 1; i <= cfg.NumBands; i++ {
		if edges[i] <= edges[i-1] {
			edges[i] = edges[i-1] + 1
		}
	}
	if edges[cfg.NumBands] > bins {
		edges[cfg.NumBands] = bins
		for i := cfg.NumBands; i > 0; i-- {
			if edges[i-1] >= edges[i] {
				edges[i-1] = edges[i] - 1
			}
		}
	}
	return edges
}
