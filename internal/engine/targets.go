package engine

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Targets lists what a batch run harvests.
type Targets struct {
	Channels []Channel         `yaml:"channels"`
	Videos   []VideoDescriptor `yaml:"videos"`
}

// DefaultTargets is used when no targets file is configured.
func DefaultTargets() Targets {
	return Targets{
		Channels: []Channel{
			{Name: "DrapsTV", ID: "UCea5cMUa9xNU0kUtbRcTkqA"},
			{Name: "Machine Love Us", ID: "UCPb2L7gy8Rbr56JfoHrBEHQ"},
			{Name: "Dev Ed", ID: "UClb90NQQcskPUGDIXsQEz5Q"},
		},
		Videos: []VideoDescriptor{
			{OwnerName: "Dev Ed", VideoID: "9ODGKI_VAmE", Title: "I React To Viewers Projects!"},
			{OwnerName: "Dev Ed", VideoID: "cHdBzrb2ubs", Title: "Things I Wish I Knew About Programming"},
		},
	}
}

// LoadTargets reads a YAML targets file. Empty path returns DefaultTargets.
// A section missing from the file keeps its default.
func LoadTargets(path string) (Targets, error) {
	def := DefaultTargets()
	if path == "" {
		return def, nil
	}
	b, err := os.ReadFile(path) //nolint:gosec // targets path from config
	if err != nil {
		return Targets{}, fmt.Errorf("read targets: %w", err)
	}
	var t Targets
	if err := yaml.Unmarshal(b, &t); err != nil {
		return Targets{}, fmt.Errorf("parse targets %s: %w", path, err)
	}
	if t.Channels == nil {
		t.Channels = def.Channels
	}
	if t.Videos == nil {
		t.Videos = def.Videos
	}
	return t, nil
}
