package bench

// Grid is a frames x speakers binary activity matrix.
type Grid struct {
	frames   int
	speakers int
	cells    []bool
}

// NewGrid returns an all-inactive grid.
func NewGrid(frames, speakers int) Grid {
	return Grid{
		frames:   frames,
		speakers: speakers,
		cells:    make([]bool, frames*speakers),
	}
}

// Frames returns the number of frames.
func (g Grid) Frames() int { return g.frames }

// Speakers returns the number of speaker slots.
func (g Grid) Speakers() int { return g.speakers }

// Active reports whether speaker slot k is active in frame f.
func (g Grid) Active(f, k int) bool {
	return g.cells[f*g.speakers+k]
}

// Set marks speaker slot k active in frame f. Re-marking an active
// cell is a no-op (OR semantics).
func (g Grid) Set(f, k int) {
	g.cells[f*g.speakers+k] = true
}

// anyActive reports whether any speaker slot is active in frame f.
func (g Grid) anyActive(f int) bool {
	row := g.cells[f*g.speakers : (f+1)*g.speakers]
	for _, c := range row {
		if c {
			return true
		}
	}
	return false
}

// SlotMap maps the first cap labels (in sorted order) to slots
// 0..cap-1. Labels beyond the slot capacity receive no slot and are
// returned in truncated: their segments become invisible to the grid.
// Truncation is silent at this layer; truncated exists so callers can
// report it.
func SlotMap(labels []string, cap int) (slots map[string]int, truncated []string) {
	slots = make(map[string]int)
	for i, label := range labels {
		if i < cap {
			slots[label] = i
		} else {
			truncated = append(truncated, label)
		}
	}
	return slots, truncated
}

// ReferenceGrid rasterizes ground-truth segments onto a frame grid
// with numFrames frames of frameShift seconds and cap speaker slots.
// Frame indices are floor(t / frameShift), clipped to [0, numFrames];
// a segment marks frames [startFrame, endFrame). It also returns the
// labels dropped by slot-capacity truncation.
func ReferenceGrid(segments []Segment, numFrames int, frameShift float64, cap int) (Grid, []string) {
	labels := (&RTTM{Segments: segments}).Speakers()
	slots, truncated := SlotMap(labels, cap)

	grid := NewGrid(numFrames, cap)
	for _, seg := range segments {
		slot, ok := slots[seg.Speaker]
		if !ok {
			continue
		}
		startFrame := clipFrame(int(seg.Start/frameShift), numFrames)
		endFrame := clipFrame(int(seg.End/frameShift), numFrames)
		for f := startFrame; f < endFrame; f++ {
			grid.Set(f, slot)
		}
	}
	return grid, truncated
}

// PredictionGrid thresholds raw per-frame probabilities into a binary
// grid. A cell is active iff its probability strictly exceeds
// threshold.
func PredictionGrid(probs [][]float32, threshold float32) Grid {
	if len(probs) == 0 {
		return NewGrid(0, 0)
	}
	grid := NewGrid(len(probs), len(probs[0]))
	for f, frame := range probs {
		for k, p := range frame {
			if p > threshold {
				grid.Set(f, k)
			}
		}
	}
	return grid
}

func clipFrame(f, numFrames int) int {
	if f < 0 {
		return 0
	}
	if f > numFrames {
		return numFrames
	}
	return f
}
