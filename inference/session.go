// Package inference provides ONNX Runtime integration for Sortformer inference.
package inference

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// numSpeakers is the number of speaker slots in the Sortformer output.
const numSpeakers = 4

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Session wraps an ONNX Runtime session for Sortformer inference.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a model file.
func NewSession(modelPath string) (*Session, error) {
	// Check file exists
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	// Create session options
	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }() // Cleanup error doesn't affect success

	// Define input/output names (from model inspection)
	inputNames := []string{"audio_signal", "audio_signal_length"}
	outputNames := []string{"preds"}

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		inputNames,
		outputNames,
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Infer runs the model on mono PCM samples and returns per-frame
// speaker activity probabilities with shape [frames][4].
func (s *Session) Infer(ctx context.Context, samples []float32) ([][]float32, error) {
	// Check context before expensive operation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	batchSize := int64(1)
	numSamples := int64(len(samples))

	// Create input tensors
	audioTensor, err := ort.NewTensor(
		ort.NewShape(batchSize, numSamples),
		samples,
	)
	if err != nil {
		return nil, fmt.Errorf("creating audio_signal tensor: %w", err)
	}
	defer func() { _ = audioTensor.Destroy() }()

	lengthTensor, err := ort.NewTensor(
		ort.NewShape(batchSize),
		[]int64{numSamples},
	)
	if err != nil {
		return nil, fmt.Errorf("creating audio_signal_length tensor: %w", err)
	}
	defer func() { _ = lengthTensor.Destroy() }()

	// Prepare inputs as Value slice
	inputs := []ort.Value{audioTensor, lengthTensor}

	// Prepare output slice - nil entries will be allocated by Run
	outputs := []ort.Value{nil}

	// Run inference
	err = s.session.Run(inputs, outputs)
	if err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}

	// Extract probabilities from output
	if outputs[0] == nil {
		return nil, fmt.Errorf("no output produced")
	}
	defer func() { _ = outputs[0].Destroy() }()

	predsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected output tensor type")
	}

	// Output shape is [1, frames, numSpeakers]; copy into per-frame rows.
	data := predsTensor.GetData()
	frames := len(data) / numSpeakers
	probs := make([][]float32, frames)
	for f := 0; f < frames; f++ {
		row := make([]float32, numSpeakers)
		copy(row, data[f*numSpeakers:(f+1)*numSpeakers])
		probs[f] = row
	}

	return probs, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
