package bench

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteResults persists benchmark results as indented JSON.
func WriteResults(path string, results []FileResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}

// ReadResults loads previously persisted benchmark results.
func ReadResults(path string) ([]FileResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var results []FileResult
	if err := json.Unmarshal(data, &results); err != nil {
		return nil, fmt.Errorf("decoding results: %w", err)
	}
	return results, nil
}
