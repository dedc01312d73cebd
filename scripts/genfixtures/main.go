// Command genfixtures writes a set of deterministic WAV files for exercising
// the pipeline end to end: pure tones, a frequency sweep, seeded noise, and
// padded or degraded variants of the tones. The padded variant carries one
// second of leading silence, so matching it against its clean counterpart
// should report a positive offset of about one second.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/jacklion710/waveprint/pkg/waveprint/audio"
	"github.com/jacklion710/waveprint/pkg/waveprint/fingerprint"
)

var (
	outDir  string
	rate    int
	seconds float64
)

func init() {
	flag.StringVar(&outDir, "out", "fixtures", "Directory to write WAV files into")
	flag.IntVar(&rate, "rate", fingerprint.DefaultSampleRate, "Sample rate in Hz")
	flag.Float64Var(&seconds, "seconds", 3.0, "Length of each base fixture in seconds")
}

func main() {
	flag.Parse()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		log.Fatal(err)
	}

	fixtures := []struct {
		name    string
		samples []float64
	}{
		{"tone_440.wav", sine(440, seconds)},
		{"tone_880.wav", sine(880, seconds)},
		{"chirp_200_4000.wav", chirp(200, 4000, seconds)},
		{"noise.wav", noise(1, seconds)},
		{"tone_440_padded_1s.wav", prependSilence(sine(440, seconds), 1.0)},
		{"tone_440_noisy.wav", mix(sine(440, seconds), noise(2, seconds), 0.12)},
	}

	for _, f := range fixtures {
		path := filepath.Join(outDir, f.name)
		if err := audio.WriteWAV(path, f.samples, rate); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("Wrote %s (%.1fs, %d samples)\n", path, float64(len(f.samples))/float64(rate), len(f.samples))
	}

	fmt.Println("Done!")
}

// sine generates a pure tone at the given frequency.
func sine(freq float64, secs float64) []float64 {
	n := int(secs * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return samples
}

// chirp sweeps linearly from f0 to f1 over the duration.
func chirp(f0, f1 float64, secs float64) []float64 {
	n := int(secs * float64(rate))
	samples := make([]float64, n)
	phase := 0.0
	for i := range samples {
		t := float64(i) / float64(n)
		freq := f0 + (f1-f0)*t
		phase += 2 * math.Pi * freq / float64(rate)
		samples[i] = 0.8 * math.Sin(phase)
	}
	return samples
}

// noise generates seeded white noise, so repeated runs write identical files.
func noise(seed int64, secs float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	n := int(secs * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * (rng.Float64()*2 - 1)
	}
	return samples
}

// prependSilence pads the front of a signal with silence.
func prependSilence(samples []float64, secs float64) []float64 {
	pad := make([]float64, int(secs*float64(rate)))
	return append(pad, samples...)
}

// mix overlays a scaled second signal onto the first.
func mix(base, overlay []float64, level float64) []float64 {
	n := len(base)
	if len(overlay) < n {
		n = len(overlay)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = base[i] + level*overlay[i]
	}
	return out
}
