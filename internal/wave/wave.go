// Package wave loads WAV files as mono float32 PCM.
package wave

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// Audio is decoded PCM ready for inference.
type Audio struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the audio length in seconds.
func (a *Audio) Duration() float64 {
	if a.SampleRate == 0 {
		return 0
	}
	return float64(len(a.Samples)) / float64(a.SampleRate)
}

// ReadMono decodes a WAV file into mono float32 PCM in [-1, 1].
// Multi-channel audio is downmixed by averaging the channels.
func ReadMono(path string) (*Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer func() { _ = f.Close() }()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", path)
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read PCM: %w", err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%s: no channels", path)
	}

	scale := intScale(int(decoder.BitDepth))
	samples := Downmix(buf.Data, channels, scale)

	return &Audio{
		Samples:    samples,
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// Downmix converts interleaved int PCM to mono float32, averaging
// channels and scaling by 1/scale.
func Downmix(data []int, channels int, scale float32) []float32 {
	frames := len(data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(data[i*channels+c])
		}
		samples[i] = sum / float32(channels) / scale
	}
	return samples
}

// intScale returns the full-scale magnitude for a PCM bit depth.
func intScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 1 << 7
	case 24:
		return 1 << 23
	case 32:
		return 1 << 31
	default:
		return 1 << 15
	}
}
