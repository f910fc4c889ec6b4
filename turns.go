package diarize

// Turn is a contiguous span of activity for one speaker slot.
type Turn struct {
	Speaker int
	Start   float64 // seconds
	End     float64 // seconds
}

// Turns converts frame probabilities into per-speaker speaking turns:
// maximal runs of frames whose probability exceeds threshold. Turns
// are ordered by speaker slot, then by start time.
func (r *Result) Turns(threshold float32) []Turn {
	var turns []Turn
	for k := 0; k < NumSpeakers; k++ {
		start := -1
		for f, frame := range r.Probabilities {
			active := k < len(frame) && frame[k] > threshold
			switch {
			case active && start < 0:
				start = f
			case !active && start >= 0:
				turns = append(turns, Turn{
					Speaker: k,
					Start:   float64(start) * r.FrameShift,
					End:     float64(f) * r.FrameShift,
				})
				start = -1
			}
		}
		if start >= 0 {
			turns = append(turns, Turn{
				Speaker: k,
				Start:   float64(start) * r.FrameShift,
				End:     float64(len(r.Probabilities)) * r.FrameShift,
			})
		}
	}
	return turns
}
