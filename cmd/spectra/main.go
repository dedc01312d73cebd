package main

import (
	"flag"
	"fmt"
	"image"
	"image/draw"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/eligwz/spectrogram"

	"github.com/jacklion710/waveprint/pkg/waveprint/audio"
)

var (
	inputPath string
	outputDir string
	width     int
	height    int
)

func init() {
	flag.StringVar(&inputPath, "in", "fixtures", "Directory (or single WAV file) to render")
	flag.StringVar(&outputDir, "out", "spectrograms", "Directory for the rendered PNGs")
	flag.IntVar(&width, "width", 2048, "Image width in pixels")
	flag.IntVar(&height, "height", 512, "Image height in pixels, also the frequency bin count")
}

func main() {
	flag.Parse()

	// Create output directory
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Fatal(err)
	}

	// Process all WAV files under the input path. WalkDir also accepts a
	// single file as its root, so -in works for one clip too.
	rendered := 0
	err := filepath.WalkDir(inputPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() || filepath.Ext(path) != ".wav" {
			return nil
		}

		fmt.Printf("Rendering %s...\n", path)
		if err := renderSpectrogram(path); err != nil {
			log.Printf("Skipping %s: %v", path, err)
			return nil
		}
		rendered++
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Done, rendered %d spectrograms into %s\n", rendered, outputDir)
}

func renderSpectrogram(path string) error {
	samples, sampleRate, err := audio.ReadWAV(path)
	if err != nil {
		return err
	}

	fmt.Printf("Read %d samples at %d Hz\n", len(samples), sampleRate)

	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))

	// Fill with black background first
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(height), // bins
		false,          // RECTANGLE (use Hamming window)
		false,          // DFT (use FFT instead)
		true,           // MAG (magnitude)
		false,          // LOG10 (linear scale, the log path renders badly)
	)

	outputPath := filepath.Join(outputDir, filepath.Base(path)+".png")
	if err := spectrogram.SavePng(img, outputPath); err != nil {
		return fmt.Errorf("saving %s: %w", outputPath, err)
	}

	fmt.Printf("Saved %s\n", outputPath)
	return nil
}
