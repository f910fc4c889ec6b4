package bench

import "errors"

// maxExactSpeakers bounds the exhaustive permutation search. The scan
// costs O(K! x frames x K), which is only tractable for small K.
const maxExactSpeakers = 8

var (
	// ErrNoReferenceSpeech indicates the reference grid has no active
	// frame, so DER is undefined for every permutation. Callers must
	// handle this explicitly; it is never reported as a zero DER.
	ErrNoReferenceSpeech = errors.New("bench: no reference speech, DER undefined")

	// ErrTooManySpeakers indicates the grids have more speaker slots
	// than the exact permutation search supports.
	ErrTooManySpeakers = errors.New("bench: too many speaker slots for exact alignment")

	// ErrGridMismatch indicates the reference and prediction grids
	// disagree on shape.
	ErrGridMismatch = errors.New("bench: grid shape mismatch")
)

// Alignment is the outcome of the permutation search: the winning
// permutation and its error rates, each a percentage of the total
// reference-speech frame count.
type Alignment struct {
	DER  float64
	Miss float64
	FA   float64
	SE   float64

	// Permutation maps reference slot k to prediction column
	// Permutation[k] under the winning assignment.
	Permutation []int
}

// Align searches all K! assignments between prediction columns and
// reference speaker slots and returns the one with the smallest DER.
//
// Permutations are enumerated in lexicographic order and a candidate
// replaces the incumbent only when its DER is strictly smaller, so
// ties resolve to the earliest permutation and results are fully
// deterministic.
//
// Per frame, exactly one of three cases applies:
//   - reference speech with no permuted prediction activity: miss
//   - permuted prediction activity with no reference speech: false alarm
//   - both active: speaker error, counted as half the symmetric
//     difference between the active reference slots and the active
//     permuted prediction slots (fractional when several speakers are
//     confused at once)
//
// Returns ErrNoReferenceSpeech when the reference grid has no active
// frame: DER is undefined, not zero.
func Align(ref, pred Grid) (Alignment, error) {
	if ref.Frames() != pred.Frames() || ref.Speakers() != pred.Speakers() {
		return Alignment{}, ErrGridMismatch
	}
	k := ref.Speakers()
	if k > maxExactSpeakers {
		return Alignment{}, ErrTooManySpeakers
	}

	frames := ref.Frames()
	refActive := make([]bool, frames)
	totalRefSpeech := 0
	for f := 0; f < frames; f++ {
		if ref.anyActive(f) {
			refActive[f] = true
			totalRefSpeech++
		}
	}
	if totalRefSpeech == 0 {
		return Alignment{}, ErrNoReferenceSpeech
	}

	best := Alignment{DER: -1}
	forEachPermutation(k, func(perm []int) {
		var miss, fa int
		var se float64

		for f := 0; f < frames; f++ {
			predActive := false
			for slot := 0; slot < k; slot++ {
				if pred.Active(f, perm[slot]) {
					predActive = true
					break
				}
			}

			switch {
			case refActive[f] && !predActive:
				miss++
			case !refActive[f] && predActive:
				fa++
			case refActive[f] && predActive:
				// Symmetric difference between active reference slots
				// and active permuted prediction slots.
				diff := 0
				for slot := 0; slot < k; slot++ {
					if ref.Active(f, slot) != pred.Active(f, perm[slot]) {
						diff++
					}
				}
				se += float64(diff) / 2
			}
		}

		der := (float64(miss) + float64(fa) + se) / float64(totalRefSpeech) * 100
		if best.DER < 0 || der < best.DER {
			best = Alignment{
				DER:         der,
				Miss:        float64(miss) / float64(totalRefSpeech) * 100,
				FA:          float64(fa) / float64(totalRefSpeech) * 100,
				SE:          se / float64(totalRefSpeech) * 100,
				Permutation: append([]int(nil), perm...),
			}
		}
	})

	return best, nil
}

// forEachPermutation calls fn with every permutation of 0..n-1 in
// lexicographic order. The slice is reused between calls; fn must
// copy it if it needs to keep it.
func forEachPermutation(n int, fn func(perm []int)) {
	perm := make([]int, n)
	for i := range perm {
		perm[i] = i
	}
	for {
		fn(perm)

		// Advance to the next lexicographic permutation.
		i := n - 2
		for i >= 0 && perm[i] >= perm[i+1] {
			i--
		}
		if i < 0 {
			return
		}
		j := n - 1
		for perm[j] <= perm[i] {
			j--
		}
		perm[i], perm[j] = perm[j], perm[i]
		for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
			perm[l], perm[r] = perm[r], perm[l]
		}
	}
}
