// Package audio handles the file boundary: decoding WAV input into the mono
// float64 buffers the engine consumes, writing buffers back out, converting
// foreign formats through ffmpeg and reading container tags.
package audio

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// ReadWAV decodes a PCM WAV file into mono samples normalized to [-1, 1]
// and reports the file's sample rate. Multi-channel input is averaged down
// to one channel.
func ReadWAV(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, 0, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("decoding %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("wav file contains no samples")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, 0, errors.New("wav file reports no channels")
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth == 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth == 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<uint(bitDepth-1))

	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for ch := 0; ch < channels; ch++ {
			sum += float64(buf.Data[i*channels+ch])
		}
		samples[i] = sum / float64(channels) * scale
	}
	return samples, buf.Format.SampleRate, nil
}
