package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/job-agent/internal/scraper"
)

// sourcesFile mirrors the JSON layout of the sources configuration file.
type sourcesFile struct {
	Sources []scraper.SourceConfig `json:"sources"`
}

// LoadSources reads and validates the job source definitions from a JSON
// file.
func LoadSources(path string) ([]scraper.SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}

	var file sourcesFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file %s: %w", path, err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources file %s defines no sources", path)
	}

	seen := make(map[string]bool, len(file.Sources))
	for i := range file.Sources {
		source := &file.Sources[i]
		if err := source.Validate(); err != nil {
			return nil, fmt.Errorf("sources file %s: %w", path, err)
		}
		if seen[source.Name] {
			return nil, fmt.Errorf("sources file %s: duplicate source name %q", path, source.Name)
		}
		seen[source.Name] = true
	}
	return file.Sources, nil
}
