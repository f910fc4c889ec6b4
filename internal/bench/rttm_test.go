package bench

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeRTTM(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.rttm")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing rttm: %v", err)
	}
	return path
}

func TestLoadRTTM(t *testing.T) {
	path := writeRTTM(t, "SPEAKER file1 1 10.0 5.0 <NA> <NA> spk1 <NA> <NA>\n")

	rttm, err := LoadRTTM(path, nil)
	if err != nil {
		t.Fatalf("LoadRTTM() error = %v", err)
	}

	want := []Segment{{Speaker: "spk1", Start: 10.0, End: 15.0}}
	if !reflect.DeepEqual(rttm.Segments, want) {
		t.Errorf("Segments = %v, want %v", rttm.Segments, want)
	}
	if rttm.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", rttm.Skipped)
	}
}

func TestLoadRTTM_IgnoredLines(t *testing.T) {
	tests := []struct {
		name         string
		content      string
		wantSegments int
		wantSkipped  int
	}{
		{
			name:         "too few fields",
			content:      "SPEAKER file1 1 10.0 5.0\n",
			wantSegments: 0,
			wantSkipped:  0,
		},
		{
			name:         "wrong marker",
			content:      "LEXEME file1 1 10.0 5.0 <NA> <NA> spk1 <NA> <NA>\n",
			wantSegments: 0,
			wantSkipped:  0,
		},
		{
			name:         "bad start",
			content:      "SPEAKER file1 1 abc 5.0 <NA> <NA> spk1 <NA> <NA>\n",
			wantSegments: 0,
			wantSkipped:  1,
		},
		{
			name:         "bad duration",
			content:      "SPEAKER file1 1 10.0 xyz <NA> <NA> spk1 <NA> <NA>\n",
			wantSegments: 0,
			wantSkipped:  1,
		},
		{
			name: "mixed",
			content: "; comment line\n" +
				"SPEAKER file1 1 0.0 1.5 <NA> <NA> alice <NA> <NA>\n" +
				"SPEAKER file1 1 bad 1.5 <NA> <NA> bob <NA> <NA>\n" +
				"SPEAKER file1 1 2.0 1.0 <NA> <NA> bob <NA> <NA>\n",
			wantSegments: 2,
			wantSkipped:  1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeRTTM(t, tt.content)
			rttm, err := LoadRTTM(path, nil)
			if err != nil {
				t.Fatalf("LoadRTTM() error = %v", err)
			}
			if len(rttm.Segments) != tt.wantSegments {
				t.Errorf("got %d segments, want %d", len(rttm.Segments), tt.wantSegments)
			}
			if rttm.Skipped != tt.wantSkipped {
				t.Errorf("Skipped = %d, want %d", rttm.Skipped, tt.wantSkipped)
			}
		})
	}
}

func TestLoadRTTM_MissingFile(t *testing.T) {
	rttm, err := LoadRTTM(filepath.Join(t.TempDir(), "nonexistent.rttm"), nil)
	if err != nil {
		t.Fatalf("LoadRTTM() error = %v, want nil for missing file", err)
	}
	if len(rttm.Segments) != 0 {
		t.Errorf("got %d segments, want 0", len(rttm.Segments))
	}
}

func TestRTTM_Speakers(t *testing.T) {
	rttm := &RTTM{Segments: []Segment{
		{Speaker: "carol", Start: 0, End: 1},
		{Speaker: "alice", Start: 1, End: 2},
		{Speaker: "carol", Start: 2, End: 3},
		{Speaker: "bob", Start: 0.5, End: 1.5},
	}}

	want := []string{"alice", "bob", "carol"}
	if got := rttm.Speakers(); !reflect.DeepEqual(got, want) {
		t.Errorf("Speakers() = %v, want %v", got, want)
	}
}

func TestLoadRTTM_FileOrderPreserved(t *testing.T) {
	path := writeRTTM(t,
		"SPEAKER m 1 5.0 1.0 <NA> <NA> b <NA> <NA>\n"+
			"SPEAKER m 1 0.0 1.0 <NA> <NA> a <NA> <NA>\n")

	rttm, err := LoadRTTM(path, nil)
	if err != nil {
		t.Fatalf("LoadRTTM() error = %v", err)
	}
	if len(rttm.Segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(rttm.Segments))
	}
	if rttm.Segments[0].Speaker != "b" || rttm.Segments[1].Speaker != "a" {
		t.Errorf("segments reordered: %v", rttm.Segments)
	}
}
