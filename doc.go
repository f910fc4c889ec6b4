// Package diarize provides speaker diarization using streaming
// Sortformer ONNX models.
//
// # Quick Start
//
//	d, err := diarize.New("sortformer.onnx")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer d.Close()
//
//	result, err := d.Diarize(ctx, samples) // mono 16 kHz float32 PCM
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d frames, %d active speakers\n",
//	    result.Frames(), result.ActiveSpeakers(0.5))
//
// The model emits one probability per speaker slot every 80 ms. The
// internal/bench packages score these probabilities against RTTM
// ground truth using the frame-level Diarization Error Rate.
//
// # Thread Safety
//
// Diarizer is safe for concurrent use. It manages an internal pool of
// ONNX sessions, configurable via WithPoolSize.
//
// # Model Files
//
// The model is a CoreML/ONNX export of NVIDIA's streaming Sortformer
// (nvidia/diar_streaming_sortformer_4spk-v2.1) with four speaker slots.
package diarize
