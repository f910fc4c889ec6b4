package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	diarize "github.com/jamesainslie/go-diarize"
	"github.com/jamesainslie/go-diarize/internal/bench"
	"github.com/jamesainslie/go-diarize/internal/config"
	"github.com/jamesainslie/go-diarize/internal/wave"
)

// Set via ldflags at build time.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	var (
		modelPath  = flag.String("model", "", "Path to Sortformer ONNX model file (required)")
		dataset    = flag.String("dataset", "ami", "Dataset to benchmark on (ami, voxconverse, callhome)")
		singleFile = flag.String("single-file", "", "Process a specific meeting (e.g. ES2004a)")
		audioPath  = flag.String("audio", "", "Process a single audio file (inference only, no ground truth)")
		maxFiles   = flag.Int("max-files", 0, "Maximum number of files to process (0 = all)")
		threshold  = flag.Float64("threshold", 0.5, "Speaker activity threshold")
		outputPath = flag.String("output", "", "Output JSON file for results")
		configPath = flag.String("config", "", "Path to TOML config file")
		sweep      = flag.Bool("sweep", false, "Run threshold sweep")
		sweepMin   = flag.Float64("sweep-min", 0.1, "Sweep minimum threshold")
		sweepMax   = flag.Float64("sweep-max", 0.9, "Sweep maximum threshold")
		sweepStep  = flag.Float64("sweep-step", 0.05, "Sweep step size")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		showVer    = flag.Bool("version", false, "Print version and exit")
	)
	flag.Parse()

	if *showVer {
		fmt.Printf("diarize-bench %s (commit %s, built %s)\n", version, commit, date)
		return
	}

	if *modelPath == "" {
		fmt.Fprintln(os.Stderr, "error: -model required")
		flag.Usage()
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}
	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "threshold" {
			cfg.Threshold = *threshold
		}
	})

	evalCfg := bench.Config{
		Threshold:   float32(cfg.Threshold),
		FrameShift:  cfg.FrameShift,
		MaxSpeakers: cfg.MaxSpeakers,
	}

	d, err := diarize.New(*modelPath,
		diarize.WithThreshold(evalCfg.Threshold),
		diarize.WithChunk(cfg.ChunkFrames, cfg.ChunkOverlap),
		diarize.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading model: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = d.Close() }()

	ctx := context.Background()

	if *audioPath != "" {
		runSingleAudio(ctx, d, *audioPath, evalCfg.Threshold)
		return
	}

	paths := bench.NewPaths(cfg.DatasetsDir, cfg.RTTMCacheDir, logger)

	var meetings []string
	if *singleFile != "" {
		meetings = []string{*singleFile}
	} else {
		meetings, err = paths.Files(bench.Dataset(*dataset), *maxFiles)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error listing dataset: %v\n", err)
			os.Exit(1)
		}
	}
	if len(meetings) == 0 {
		fmt.Fprintln(os.Stderr, "no files found to process")
		os.Exit(1)
	}
	fmt.Printf("Processing %d file(s) from %s\n\n", len(meetings), *dataset)

	if *sweep {
		runSweep(ctx, d, paths, bench.Dataset(*dataset), meetings, evalCfg, logger,
			float32(*sweepMin), float32(*sweepMax), float32(*sweepStep))
		return
	}

	runBenchmark(ctx, d, paths, bench.Dataset(*dataset), meetings, evalCfg, logger, *outputPath)
}

// processMeeting runs inference and loads ground truth for one meeting.
func processMeeting(ctx context.Context, d *diarize.Diarizer, paths *bench.Paths, dataset bench.Dataset, meeting string, logger *slog.Logger) (*diarize.Result, *bench.RTTM, float64, error) {
	audioFile, err := paths.AudioPath(dataset, meeting)
	if err != nil {
		return nil, nil, 0, err
	}
	audio, err := wave.ReadMono(audioFile)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("reading %s: %w", audioFile, err)
	}
	if audio.SampleRate != diarize.SampleRate {
		return nil, nil, 0, fmt.Errorf("%s: expected %d Hz, got %d Hz", audioFile, diarize.SampleRate, audio.SampleRate)
	}

	start := time.Now()
	result, err := d.Diarize(ctx, audio.Samples)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("diarizing %s: %w", meeting, err)
	}
	processing := time.Since(start).Seconds()

	rttmFile, err := paths.RTTMPath(ctx, dataset, meeting)
	if err != nil {
		return nil, nil, 0, err
	}
	rttm, err := bench.LoadRTTM(rttmFile, logger)
	if err != nil {
		return nil, nil, 0, err
	}

	return result, rttm, processing, nil
}

func runBenchmark(ctx context.Context, d *diarize.Diarizer, paths *bench.Paths, dataset bench.Dataset, meetings []string, cfg bench.Config, logger *slog.Logger, outputPath string) {
	summary := &bench.Summary{}

	for i, meeting := range meetings {
		fmt.Printf("[%d/%d] %s\n", i+1, len(meetings), meeting)

		result, rttm, processing, err := processMeeting(ctx, d, paths, dataset, meeting, logger)
		if err != nil {
			logger.Error("processing failed", "meeting", meeting, "error", err)
			continue
		}
		if len(rttm.Segments) == 0 {
			logger.Warn("no ground truth, skipping", "meeting", meeting)
			continue
		}
		if rttm.Skipped > 0 {
			logger.Warn("malformed rttm lines skipped", "meeting", meeting, "lines", rttm.Skipped)
		}
		if gt := len(rttm.Speakers()); gt > cfg.MaxSpeakers {
			logger.Warn("ground truth exceeds speaker slots; excess speakers unscored",
				"meeting", meeting, "speakers", gt, "slots", cfg.MaxSpeakers)
		}

		metrics, err := bench.Evaluate(result.Probabilities, rttm.Segments, cfg)
		if err != nil {
			if errors.Is(err, bench.ErrNoReferenceSpeech) {
				summary.Undefined = append(summary.Undefined, meeting)
				fmt.Printf("  DER undefined (no reference speech)\n\n")
				continue
			}
			logger.Error("evaluation failed", "meeting", meeting, "error", err)
			continue
		}

		duration := result.Duration()
		fr := bench.FileResult{
			Meeting:          meeting,
			DER:              metrics.DER,
			Miss:             metrics.Miss,
			FA:               metrics.FA,
			SE:               metrics.SE,
			RTFx:             duration / processing,
			ProcessingTime:   processing,
			Duration:         duration,
			NumFrames:        result.Frames(),
			DetectedSpeakers: bench.DetectedSpeakers(result.Probabilities, cfg.Threshold),
			GTSpeakers:       len(rttm.Speakers()),
		}
		summary.Results = append(summary.Results, fr)

		fmt.Printf("  DER: %.1f%%  (miss %.1f, fa %.1f, se %.1f)  speakers %d/%d  RTFx %.1fx\n\n",
			fr.DER, fr.Miss, fr.FA, fr.SE, fr.DetectedSpeakers, fr.GTSpeakers, fr.RTFx)
	}

	summary.Render(os.Stdout)

	if outputPath != "" {
		if err := bench.WriteResults(outputPath, summary.Results); err != nil {
			fmt.Fprintf(os.Stderr, "error writing results: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Results saved to %s\n", outputPath)
	}
}

func runSweep(ctx context.Context, d *diarize.Diarizer, paths *bench.Paths, dataset bench.Dataset, meetings []string, cfg bench.Config, logger *slog.Logger, min, max, step float32) {
	var files []bench.SweepFile
	for _, meeting := range meetings {
		result, rttm, _, err := processMeeting(ctx, d, paths, dataset, meeting, logger)
		if err != nil {
			logger.Error("processing failed", "meeting", meeting, "error", err)
			continue
		}
		if len(rttm.Segments) == 0 {
			logger.Warn("no ground truth, skipping", "meeting", meeting)
			continue
		}
		files = append(files, bench.SweepFile{
			Meeting:  meeting,
			Probs:    result.Probabilities,
			Segments: rttm.Segments,
		})
	}
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "no scorable files for sweep")
		os.Exit(1)
	}

	thresholds := bench.SweepThresholds(min, max, step)
	results, err := bench.Sweep(files, cfg, thresholds)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error during sweep: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Threshold Sweep Results")
	fmt.Println(strings.Repeat("-", 50))
	fmt.Printf("%-8s %-8s %-8s %-8s %-8s\n", "Thresh", "DER", "Miss", "FA", "SE")

	// Print in threshold order for readability
	for _, t := range thresholds {
		for _, r := range results {
			if r.Threshold == t {
				fmt.Printf("%-8.3f %-8.1f %-8.1f %-8.1f %-8.1f\n",
					r.Threshold, r.AvgDER, r.AvgMiss, r.AvgFA, r.AvgSE)
				break
			}
		}
	}

	fmt.Println(strings.Repeat("-", 50))
	best := results[0]
	fmt.Printf("Optimal: %.3f (avg DER: %.1f%% over %d files)\n", best.Threshold, best.AvgDER, best.Files)
}

func runSingleAudio(ctx context.Context, d *diarize.Diarizer, path string, threshold float32) {
	audio, err := wave.ReadMono(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error reading audio: %v\n", err)
		os.Exit(1)
	}
	if audio.SampleRate != diarize.SampleRate {
		fmt.Fprintf(os.Stderr, "error: expected %d Hz, got %d Hz\n", diarize.SampleRate, audio.SampleRate)
		os.Exit(1)
	}

	start := time.Now()
	result, err := d.Diarize(ctx, audio.Samples)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	processing := time.Since(start).Seconds()

	min, max, mean := result.Stats()
	fmt.Printf("Audio duration: %.2fs\n", result.Duration())
	fmt.Printf("Processing time: %.2fs (RTFx %.1fx)\n", processing, result.Duration()/processing)
	fmt.Printf("Frames: %d\n", result.Frames())
	fmt.Printf("Prob stats: min=%.3f max=%.3f mean=%.3f\n", min, max, mean)
	fmt.Printf("Detected speakers: %d\n", result.ActiveSpeakers(threshold))
}
