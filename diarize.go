package diarize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jamesainslie/go-diarize/inference"
)

const (
	// SampleRate is the input sample rate expected by the Sortformer model.
	SampleRate = 16000

	// FrameShift is the duration of one output frame in seconds (80 ms).
	FrameShift = 0.08

	// NumSpeakers is the number of speaker slots in the model output.
	NumSpeakers = 4

	// samplesPerFrame is the number of input samples covered by one
	// output frame (SampleRate * FrameShift).
	samplesPerFrame = 1280
)

// Result holds per-frame speaker activity probabilities for one audio file.
type Result struct {
	// Probabilities has shape [frames][NumSpeakers], values in [0,1].
	Probabilities [][]float32

	// FrameShift is the duration of one frame in seconds.
	FrameShift float64
}

// Frames returns the number of output frames.
func (r *Result) Frames() int {
	return len(r.Probabilities)
}

// Duration returns the audio duration implied by the frame count.
func (r *Result) Duration() float64 {
	return float64(len(r.Probabilities)) * r.FrameShift
}

// ActiveSpeakers returns the number of speaker slots whose probability
// exceeds threshold in at least one frame.
func (r *Result) ActiveSpeakers(threshold float32) int {
	active := 0
	for k := 0; k < NumSpeakers; k++ {
		for _, frame := range r.Probabilities {
			if frame[k] > threshold {
				active++
				break
			}
		}
	}
	return active
}

// Stats returns min, max and mean over all probabilities.
func (r *Result) Stats() (min, max, mean float32) {
	if len(r.Probabilities) == 0 {
		return 0, 0, 0
	}
	min = r.Probabilities[0][0]
	max = min
	var sum float64
	n := 0
	for _, frame := range r.Probabilities {
		for _, p := range frame {
			if p < min {
				min = p
			}
			if p > max {
				max = p
			}
			sum += float64(p)
			n++
		}
	}
	return min, max, float32(sum / float64(n))
}

// Diarizer produces per-frame speaker activity probabilities using a
// streaming Sortformer ONNX model. It is safe for concurrent use.
type Diarizer struct {
	pool         *inference.Pool
	threshold    float32
	chunkFrames  int
	chunkOverlap int
	logger       *slog.Logger
}

// New creates a Diarizer from an ONNX model file.
func New(modelPath string, opts ...Option) (*Diarizer, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	// Check model file exists
	if _, err := os.Stat(modelPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrModelNotFound, modelPath)
		}
		return nil, fmt.Errorf("checking model file: %w", err)
	}

	pool, err := inference.NewPool(modelPath, cfg.poolSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}

	return &Diarizer{
		pool:         pool,
		threshold:    cfg.threshold,
		chunkFrames:  cfg.chunkFrames,
		chunkOverlap: cfg.chunkOverlap,
		logger:       cfg.logger,
	}, nil
}

// Diarize runs inference on mono 16 kHz PCM samples and returns
// per-frame speaker activity probabilities.
func (d *Diarizer) Diarize(ctx context.Context, samples []float32) (*Result, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyAudio
	}

	probs, err := d.getProbabilities(ctx, samples)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("diarization complete",
		"frames", len(probs),
		"duration_s", float64(len(probs))*FrameShift)

	return &Result{Probabilities: probs, FrameShift: FrameShift}, nil
}

// getProbabilities returns frame probabilities for all samples, chunking
// the audio if it exceeds one model window.
func (d *Diarizer) getProbabilities(ctx context.Context, samples []float32) ([][]float32, error) {
	// Acquire session from pool
	session, err := d.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer d.pool.Release(session)

	chunkSamples := d.chunkFrames * samplesPerFrame
	if len(samples) <= chunkSamples {
		return session.Infer(ctx, samples)
	}

	totalFrames := len(samples) / samplesPerFrame
	sums := make([][]float32, totalFrames)
	counts := make([]int, totalFrames)
	for i := range sums {
		sums[i] = make([]float32, NumSpeakers)
	}

	// Process in overlapping chunks; probabilities in overlap regions
	// are averaged across chunks.
	strideFrames := d.chunkFrames - d.chunkOverlap
	for startFrame := 0; startFrame < totalFrames; startFrame += strideFrames {
		endFrame := startFrame + d.chunkFrames
		if endFrame > totalFrames {
			endFrame = totalFrames
		}

		startSample := startFrame * samplesPerFrame
		endSample := endFrame * samplesPerFrame
		if endSample > len(samples) {
			endSample = len(samples)
		}

		chunkProbs, err := session.Infer(ctx, samples[startSample:endSample])
		if err != nil {
			return nil, err
		}

		for i, frame := range chunkProbs {
			f := startFrame + i
			if f >= totalFrames {
				break
			}
			for k := 0; k < NumSpeakers && k < len(frame); k++ {
				sums[f][k] += frame[k]
			}
			counts[f]++
		}

		if endFrame >= totalFrames {
			break
		}
	}

	for f := range sums {
		if counts[f] > 1 {
			for k := range sums[f] {
				sums[f][k] /= float32(counts[f])
			}
		}
	}

	return sums, nil
}

// Threshold returns the activity threshold the Diarizer was configured with.
func (d *Diarizer) Threshold() float32 {
	return d.threshold
}

// Close releases all resources.
func (d *Diarizer) Close() error {
	if d.pool != nil {
		return d.pool.Close()
	}
	return nil
}
