package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	diarize "github.com/jamesainslie/go-diarize"
	"github.com/jamesainslie/go-diarize/internal/wave"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	modelPath := flag.String("model", "", "Path to Sortformer ONNX model file")
	threshold := flag.Float64("threshold", 0.5, "Speaker activity threshold")
	mode := flag.String("mode", "turns", "Mode: turns or stats")
	showVer := flag.Bool("version", false, "Print version and exit")

	flag.Parse()

	if *showVer {
		fmt.Printf("diarize-cli %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	if *modelPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: diarize-cli -model MODEL [OPTIONS] AUDIO.wav")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: exactly one audio file required")
		os.Exit(1)
	}
	audioPath := flag.Arg(0)

	audio, err := wave.ReadMono(audioPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading audio: %v\n", err)
		os.Exit(1)
	}
	if audio.SampleRate != diarize.SampleRate {
		fmt.Fprintf(os.Stderr, "Error: expected %d Hz audio, got %d Hz\n", diarize.SampleRate, audio.SampleRate)
		os.Exit(1)
	}

	d, err := diarize.New(*modelPath, diarize.WithThreshold(float32(*threshold)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading model: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = d.Close() }() // Cleanup error ignored in CLI

	ctx := context.Background()

	result, err := d.Diarize(ctx, audio.Samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch *mode {
	case "turns":
		turns := result.Turns(float32(*threshold))
		fmt.Printf("File: %s (%.2fs)\n", audioPath, result.Duration())
		fmt.Printf("Turns (%d):\n", len(turns))
		for _, turn := range turns {
			fmt.Printf("  speaker %d: %8.2fs - %8.2fs\n", turn.Speaker, turn.Start, turn.End)
		}

	case "stats":
		min, max, mean := result.Stats()
		fmt.Printf("File: %s\n", audioPath)
		fmt.Printf("Duration: %.2fs (%d frames)\n", result.Duration(), result.Frames())
		fmt.Printf("Prob stats: min=%.3f max=%.3f mean=%.3f\n", min, max, mean)
		fmt.Printf("Detected speakers: %d\n", result.ActiveSpeakers(float32(*threshold)))

	default:
		fmt.Fprintf(os.Stderr, "Unknown mode: %s\n", *mode)
		os.Exit(1)
	}
}
