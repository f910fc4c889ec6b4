package bench

import (
	"errors"
	"fmt"
	"sort"
)

// SweepFile pairs one file's inference output with its ground truth.
// Probabilities are threshold-independent, so a sweep runs inference
// once per file and only re-thresholds.
type SweepFile struct {
	Meeting  string
	Probs    [][]float32
	Segments []Segment
}

// SweepResult holds aggregate metrics for one threshold value.
type SweepResult struct {
	Threshold float32
	AvgDER    float64
	AvgMiss   float64
	AvgFA     float64
	AvgSE     float64
	Files     int // files with a defined DER
}

// SweepThresholds generates threshold values in [min, max) with the
// given step.
func SweepThresholds(min, max, step float32) []float32 {
	var thresholds []float32
	for t := min; t < max; t += step {
		thresholds = append(thresholds, t)
	}
	return thresholds
}

// Sweep evaluates every threshold across all files and returns results
// sorted ascending by average DER. Files with no reference speech have
// an undefined DER and are excluded from the averages, never counted
// as zero.
func Sweep(files []SweepFile, cfg Config, thresholds []float32) ([]SweepResult, error) {
	var results []SweepResult

	for _, threshold := range thresholds {
		cfg.Threshold = threshold

		var sum Metrics
		defined := 0
		for _, file := range files {
			m, err := Evaluate(file.Probs, file.Segments, cfg)
			if err != nil {
				if errors.Is(err, ErrNoReferenceSpeech) {
					continue
				}
				return nil, fmt.Errorf("evaluating %s at %.3f: %w", file.Meeting, threshold, err)
			}
			sum.DER += m.DER
			sum.Miss += m.Miss
			sum.FA += m.FA
			sum.SE += m.SE
			defined++
		}

		result := SweepResult{Threshold: threshold, Files: defined}
		if defined > 0 {
			n := float64(defined)
			result.AvgDER = sum.DER / n
			result.AvgMiss = sum.Miss / n
			result.AvgFA = sum.FA / n
			result.AvgSE = sum.SE / n
		}
		results = append(results, result)
	}

	// Sort by average DER ascending; thresholds with no scorable file
	// sort last.
	sort.SliceStable(results, func(i, j int) bool {
		if (results[i].Files > 0) != (results[j].Files > 0) {
			return results[i].Files > 0
		}
		return results[i].AvgDER < results[j].AvgDER
	})

	return results, nil
}
