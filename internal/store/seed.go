package store

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/medialens/medialens/pkg/models"
)

// seedFile is the shape of the media-sources YAML seed.
type seedFile struct {
	MediaSources []models.MediaSource `yaml:"media_sources"`
}

// LoadMediaSeed reads media-source profiles from a YAML file.
func LoadMediaSeed(path string) ([]models.MediaSource, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read media seed: %w", err)
	}
	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("store: parse media seed %s: %w", path, err)
	}
	for i, m := range f.MediaSources {
		if m.Slug == "" {
			return nil, fmt.Errorf("store: media seed entry %d (%q) has no slug", i, m.Name)
		}
	}
	return f.MediaSources, nil
}
