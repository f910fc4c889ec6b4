package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Dataset identifies a supported benchmark dataset.
type Dataset string

const (
	DatasetAMI         Dataset = "ami"
	DatasetVoxConverse Dataset = "voxconverse"
	DatasetCallHome    Dataset = "callhome"
)

// amiRTTMBaseURL hosts the AMI only-words RTTM ground truth
// (pyannote AMI-diarization-setup repository).
const amiRTTMBaseURL = "https://raw.githubusercontent.com/pyannote/AMI-diarization-setup/main/only_words/rttms/test"

// amiTestMeetings is the official AMI SDM test set (16 meetings).
var amiTestMeetings = []string{
	"EN2002a", "EN2002b", "EN2002c", "EN2002d",
	"ES2004a", "ES2004b", "ES2004c", "ES2004d",
	"IS1009a", "IS1009b", "IS1009c", "IS1009d",
	"TS3003a", "TS3003b", "TS3003c", "TS3003d",
}

// Paths resolves audio and RTTM locations for the benchmark datasets
// and downloads missing AMI ground truth into a local cache.
type Paths struct {
	// Root is the datasets directory, laid out as
	// ami_official/, voxconverse/ and callhome_eng/ subtrees.
	Root string

	// RTTMCache receives downloaded AMI RTTM files.
	RTTMCache string

	client *http.Client
	logger *slog.Logger
}

// NewPaths creates a resolver over the given datasets root and RTTM
// cache directory.
func NewPaths(root, rttmCache string, logger *slog.Logger) *Paths {
	if logger == nil {
		logger = slog.Default()
	}
	return &Paths{
		Root:      root,
		RTTMCache: rttmCache,
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    logger,
	}
}

// AudioPath returns the audio file location for a meeting.
func (p *Paths) AudioPath(dataset Dataset, meeting string) (string, error) {
	switch dataset {
	case DatasetAMI:
		return filepath.Join(p.Root, "ami_official", "sdm", meeting+".Mix-Headset.wav"), nil
	case DatasetVoxConverse:
		return filepath.Join(p.Root, "voxconverse", "voxconverse_test_wav", meeting+".wav"), nil
	case DatasetCallHome:
		return filepath.Join(p.Root, "callhome_eng", meeting+".wav"), nil
	default:
		return "", fmt.Errorf("unknown dataset: %s", dataset)
	}
}

// RTTMPath returns the ground-truth location for a meeting. For AMI it
// checks the cache and the dataset tree first and then attempts a
// download; a failed download is non-fatal and still returns the cache
// path, which LoadRTTM treats as "no ground truth".
func (p *Paths) RTTMPath(ctx context.Context, dataset Dataset, meeting string) (string, error) {
	switch dataset {
	case DatasetAMI:
		cached := filepath.Join(p.RTTMCache, meeting+".rttm")
		if exists(cached) {
			return cached, nil
		}
		local := filepath.Join(p.Root, "ami_official", "rttm", meeting+".rttm")
		if exists(local) {
			return local, nil
		}
		if err := p.downloadAMIRTTM(ctx, meeting, cached); err != nil {
			p.logger.Warn("rttm download failed", "meeting", meeting, "error", err)
		}
		return cached, nil
	case DatasetVoxConverse:
		return filepath.Join(p.Root, "voxconverse", "rttm_repo", "test", meeting+".rttm"), nil
	case DatasetCallHome:
		return filepath.Join(p.Root, "callhome_eng", "rttm", meeting+".rttm"), nil
	default:
		return "", fmt.Errorf("unknown dataset: %s", dataset)
	}
}

// Files lists the meetings of a dataset whose audio is present on
// disk, capped at maxFiles when maxFiles > 0.
func (p *Paths) Files(dataset Dataset, maxFiles int) ([]string, error) {
	var meetings []string
	switch dataset {
	case DatasetAMI:
		for _, meeting := range amiTestMeetings {
			path, _ := p.AudioPath(dataset, meeting)
			if exists(path) {
				meetings = append(meetings, meeting)
			}
		}
	case DatasetVoxConverse:
		var err error
		meetings, err = p.scanWAVDir(
			filepath.Join(p.Root, "voxconverse", "voxconverse_test_wav"),
			func(name string) string {
				return filepath.Join(p.Root, "voxconverse", "rttm_repo", "test", name+".rttm")
			})
		if err != nil {
			return nil, err
		}
	case DatasetCallHome:
		var err error
		meetings, err = p.scanWAVDir(
			filepath.Join(p.Root, "callhome_eng"),
			func(name string) string {
				return filepath.Join(p.Root, "callhome_eng", "rttm", name+".rttm")
			})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown dataset: %s", dataset)
	}

	if maxFiles > 0 && len(meetings) > maxFiles {
		meetings = meetings[:maxFiles]
	}
	return meetings, nil
}

// scanWAVDir lists .wav basenames in dir that have a matching RTTM.
func (p *Paths) scanWAVDir(dir string, rttmFor func(name string) string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var meetings []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".wav" {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".wav")
		if exists(rttmFor(name)) {
			meetings = append(meetings, name)
		}
	}
	sort.Strings(meetings)
	return meetings, nil
}

// downloadAMIRTTM fetches one AMI RTTM file into dst.
func (p *Paths) downloadAMIRTTM(ctx context.Context, meeting, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}

	url := fmt.Sprintf("%s/%s.rttm", amiRTTMBaseURL, meeting)
	p.logger.Info("downloading rttm", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching rttm: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetching rttm: unexpected status %s", resp.Status)
	}

	tmp := dst + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing cache file: %w", err)
	}
	return os.Rename(tmp, dst)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
