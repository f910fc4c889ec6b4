package inference

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

const testModelPath = "../testdata/sortformer.onnx"

func TestNewSession_FileNotFound(t *testing.T) {
	_, err := NewSession("../testdata/nonexistent.onnx")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected os.ErrNotExist, got: %v", err)
	}
}

func TestNewSession(t *testing.T) {
	skipIfNoModel(t)

	session, err := NewSession(testModelPath)
	if err != nil {
		// Skip if ONNX runtime is not available
		if isORTUnavailableError(err) {
			t.Skipf("Skipping: ONNX runtime not available: %v", err)
		}
		t.Fatalf("NewSession failed: %v", err)
	}
	defer func() { _ = session.Close() }()

	if session == nil {
		t.Error("expected non-nil session")
	}
}

func TestSession_Infer(t *testing.T) {
	skipIfNoModel(t)

	session, err := NewSession(testModelPath)
	if err != nil {
		if isORTUnavailableError(err) {
			t.Skipf("Skipping: ONNX runtime not available: %v", err)
		}
		t.Fatalf("NewSession failed: %v", err)
	}
	defer func() { _ = session.Close() }()

	// One second of silence at 16 kHz
	samples := make([]float32, 16000)

	ctx := context.Background()
	probs, err := session.Infer(ctx, samples)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}

	if len(probs) == 0 {
		t.Fatal("expected at least one output frame")
	}
	for f, frame := range probs {
		if len(frame) != numSpeakers {
			t.Fatalf("frame %d: expected %d speaker slots, got %d", f, numSpeakers, len(frame))
		}
	}
}

func TestSession_Infer_ContextCancellation(t *testing.T) {
	skipIfNoModel(t)

	session, err := NewSession(testModelPath)
	if err != nil {
		if isORTUnavailableError(err) {
			t.Skipf("Skipping: ONNX runtime not available: %v", err)
		}
		t.Fatalf("NewSession failed: %v", err)
	}
	defer func() { _ = session.Close() }()

	// Create an already-cancelled context
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = session.Infer(ctx, make([]float32, 1280))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled error, got: %v", err)
	}
}

func TestSession_Infer_ContextTimeout(t *testing.T) {
	skipIfNoModel(t)

	session, err := NewSession(testModelPath)
	if err != nil {
		if isORTUnavailableError(err) {
			t.Skipf("Skipping: ONNX runtime not available: %v", err)
		}
		t.Fatalf("NewSession failed: %v", err)
	}
	defer func() { _ = session.Close() }()

	// Create an already-expired context
	ctx, cancel := context.WithTimeout(context.Background(), -time.Second)
	defer cancel()

	_, err = session.Infer(ctx, make([]float32, 1280))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded error, got: %v", err)
	}
}

func TestSession_Close_Idempotent(t *testing.T) {
	skipIfNoModel(t)

	session, err := NewSession(testModelPath)
	if err != nil {
		if isORTUnavailableError(err) {
			t.Skipf("Skipping: ONNX runtime not available: %v", err)
		}
		t.Fatalf("NewSession failed: %v", err)
	}

	// First close should succeed
	if err := session.Close(); err != nil {
		t.Errorf("first Close failed: %v", err)
	}

	// Second close should also succeed (idempotent)
	if err := session.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
}

func TestSession_Infer_AfterClose(t *testing.T) {
	skipIfNoModel(t)

	session, err := NewSession(testModelPath)
	if err != nil {
		if isORTUnavailableError(err) {
			t.Skipf("Skipping: ONNX runtime not available: %v", err)
		}
		t.Fatalf("NewSession failed: %v", err)
	}

	// Close the session
	if err := session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Infer should fail on closed session
	_, err = session.Infer(context.Background(), make([]float32, 1280))
	if err == nil {
		t.Error("expected error when calling Infer on closed session")
	}
}

// skipIfNoModel skips the test if the ONNX model is not available.
func skipIfNoModel(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(testModelPath); err != nil {
		t.Skipf("Skipping: model not available at %s", testModelPath)
	}
}

// isORTUnavailableError checks if the error indicates ONNX runtime is not available.
func isORTUnavailableError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	// Common ONNX runtime unavailability indicators
	return strings.Contains(errStr, "onnxruntime") ||
		strings.Contains(errStr, "shared library") ||
		strings.Contains(errStr, "dylib") ||
		strings.Contains(errStr, ".so") ||
		strings.Contains(errStr, ".dll") ||
		strings.Contains(errStr, "not found") ||
		strings.Contains(errStr, "cannot open") ||
		strings.Contains(errStr, "initializing ONNX runtime")
}
