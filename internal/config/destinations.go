package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/dkemper/fritzwatch/pkg/model"
)

// destinationsFile mirrors the standalone destinations YAML document.
type destinationsFile struct {
	Destinations []model.Destination `yaml:"destinations"`
}

// LoadDestinations reads a YAML destinations file and returns its
// entries. Keeping numbers and thresholds in a separate file lets the
// main config stay in version control without them.
func LoadDestinations(path string) ([]model.Destination, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read destinations file %s: %w", path, err)
	}

	var f destinationsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse destinations file %s: %w", path, err)
	}

	if len(f.Destinations) == 0 {
		return nil, fmt.Errorf("destinations file %s: no destinations defined", path)
	}

	return f.Destinations, nil
}
