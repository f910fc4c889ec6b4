package diarize

import (
	"log/slog"
	"runtime"
)

// Option configures a Diarizer.
type Option func(*config)

type config struct {
	threshold    float32
	poolSize     int
	chunkFrames  int
	chunkOverlap int
	logger       *slog.Logger
}

func defaultConfig() config {
	return config{
		threshold:    0.5,
		poolSize:     runtime.NumCPU(),
		chunkFrames:  340,
		chunkOverlap: 40,
		logger:       slog.Default(),
	}
}

// WithThreshold sets the speaker activity threshold (default: 0.5).
func WithThreshold(t float32) Option {
	return func(c *config) {
		c.threshold = t
	}
}

// WithPoolSize sets the ONNX session pool size (default: runtime.NumCPU()).
func WithPoolSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.poolSize = n
		}
	}
}

// WithChunk sets the chunk length and overlap in frames for long audio
// (default: 340 frame chunks with 40 frames of overlap).
func WithChunk(frames, overlap int) Option {
	return func(c *config) {
		if frames > 0 && overlap >= 0 && overlap < frames {
			c.chunkFrames = frames
			c.chunkOverlap = overlap
		}
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
