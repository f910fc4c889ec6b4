package bench

// Config holds evaluation parameters. They are passed explicitly so
// nothing in the scorer reads process-wide constants.
type Config struct {
	Threshold   float32 // speaker activity threshold (strict >)
	FrameShift  float64 // seconds per frame
	MaxSpeakers int     // speaker slot capacity of the prediction array
}

// DefaultConfig returns the reference evaluation configuration:
// 0.5 activity threshold, 80 ms frames, 4 speaker slots.
func DefaultConfig() Config {
	return Config{
		Threshold:   0.5,
		FrameShift:  0.08,
		MaxSpeakers: 4,
	}
}

// Metrics holds the DER breakdown for one file. All values are
// percentages of the total reference-speech frame count.
type Metrics struct {
	DER  float64 `json:"der"`
	Miss float64 `json:"miss"`
	FA   float64 `json:"fa"`
	SE   float64 `json:"se"`
}

// Evaluate scores per-frame speaker activity probabilities against
// ground-truth segments: it rasterizes both onto a common frame grid
// and runs the permutation alignment. The frame count is taken from
// the prediction array.
//
// Returns ErrNoReferenceSpeech when the rasterized reference contains
// no speech; such files must be excluded from averages rather than
// scored as zero.
func Evaluate(probs [][]float32, segments []Segment, cfg Config) (Metrics, error) {
	ref, _ := ReferenceGrid(segments, len(probs), cfg.FrameShift, cfg.MaxSpeakers)
	pred := PredictionGrid(probs, cfg.Threshold)
	if len(probs) == 0 {
		// A zero-frame prediction rasterizes to a 0x0 grid; give it the
		// reference shape so alignment sees matching grids.
		pred = NewGrid(ref.Frames(), ref.Speakers())
	}

	alignment, err := Align(ref, pred)
	if err != nil {
		return Metrics{}, err
	}

	return Metrics{
		DER:  alignment.DER,
		Miss: alignment.Miss,
		FA:   alignment.FA,
		SE:   alignment.SE,
	}, nil
}

// DetectedSpeakers counts prediction columns whose probability exceeds
// threshold in at least one frame. Informational only: it never feeds
// back into the DER numbers.
func DetectedSpeakers(probs [][]float32, threshold float32) int {
	if len(probs) == 0 {
		return 0
	}
	detected := 0
	for k := 0; k < len(probs[0]); k++ {
		for _, frame := range probs {
			if frame[k] > threshold {
				detected++
				break
			}
		}
	}
	return detected
}

// FileResult is the per-file benchmark record persisted to JSON and
// rendered in the summary table.
type FileResult struct {
	Meeting          string  `json:"meeting"`
	DER              float64 `json:"der"`
	Miss             float64 `json:"miss"`
	FA               float64 `json:"fa"`
	SE               float64 `json:"se"`
	RTFx             float64 `json:"rtfx"`
	ProcessingTime   float64 `json:"processing_time"`
	Duration         float64 `json:"duration"`
	NumFrames        int     `json:"num_frames"`
	DetectedSpeakers int     `json:"detected_speakers"`
	GTSpeakers       int     `json:"gt_speakers"`
}
