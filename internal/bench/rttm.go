// Package bench provides DER benchmarking utilities for speaker diarization.
package bench

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Segment is one speaker-attributed time range from an RTTM file.
type Segment struct {
	Speaker string
	Start   float64 // seconds
	End     float64 // seconds
}

// RTTM holds the parsed ground truth for one file.
type RTTM struct {
	// Segments in file order. Overlapping segments for distinct
	// speakers are legal (simultaneous speech).
	Segments []Segment

	// Skipped counts candidate SPEAKER lines whose numeric fields did
	// not parse. Non-SPEAKER lines are not counted.
	Skipped int
}

// Speakers returns the sorted set of distinct speaker labels.
func (r *RTTM) Speakers() []string {
	seen := make(map[string]struct{})
	for _, seg := range r.Segments {
		seen[seg.Speaker] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}

// LoadRTTM parses an RTTM ground-truth file.
//
// Each record has the form
//
//	SPEAKER <uri> <channel> <start> <duration> <NA> <NA> <speaker_id> <NA> <NA>
//
// A line is a candidate record only if it splits into at least 8
// whitespace fields and its first field is the literal SPEAKER; all
// other lines are ignored. Candidate records whose start or duration
// fail to parse are skipped and counted in Skipped.
//
// A missing file returns an empty RTTM and no error: the caller treats
// "no ground truth" as skip, not fatal.
func LoadRTTM(path string, logger *slog.Logger) (*RTTM, error) {
	if logger == nil {
		logger = slog.Default()
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &RTTM{}, nil
		}
		return nil, fmt.Errorf("open rttm: %w", err)
	}
	defer func() { _ = f.Close() }()

	rttm := &RTTM{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 8 || fields[0] != "SPEAKER" {
			continue
		}

		start, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			rttm.Skipped++
			continue
		}
		duration, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			rttm.Skipped++
			continue
		}

		rttm.Segments = append(rttm.Segments, Segment{
			Speaker: fields[7],
			Start:   start,
			End:     start + duration,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan rttm: %w", err)
	}

	logger.Debug("loaded rttm",
		"path", path,
		"segments", len(rttm.Segments),
		"speakers", rttm.Speakers(),
		"skipped", rttm.Skipped)

	return rttm, nil
}
