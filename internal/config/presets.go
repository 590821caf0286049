package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/venue-seat-layout/internal/layout"
)

// SectionPreset is a named "add section" block: a rectangle of one cell type
// painted at the operator's chosen top-left corner.
type SectionPreset struct {
	Name   string          `yaml:"name" json:"name"`
	Height int             `yaml:"height" json:"height"`
	Width  int             `yaml:"width" json:"width"`
	Type   layout.CellType `yaml:"type" json:"type"`
}

type presetFile struct {
	Presets []SectionPreset `yaml:"presets"`
}

// DefaultSectionPresets are used when no presets file is configured.
func DefaultSectionPresets() map[string]SectionPreset {
	return map[string]SectionPreset{
		"seat-row":    {Name: "seat-row", Height: 1, Width: 10, Type: layout.Seat},
		"seat-block":  {Name: "seat-block", Height: 4, Width: 6, Type: layout.Seat},
		"aisle":       {Name: "aisle", Height: 10, Width: 1, Type: layout.Space},
		"stage":       {Name: "stage", Height: 2, Width: 12, Type: layout.Screen},
		"back-wall":   {Name: "back-wall", Height: 1, Width: 28, Type: layout.Wall},
		"front-doors": {Name: "front-doors", Height: 1, Width: 2, Type: layout.Entrance},
	}
}

// LoadSectionPresets reads presets from a YAML file of the form
//
//	presets:
//	  - name: seat-row
//	    height: 1
//	    width: 10
//	    type: seat
//
// An empty path returns the defaults.  File presets override defaults of
// the same name.
func LoadSectionPresets(path string) (map[string]SectionPreset, error) {
	presets := DefaultSectionPresets()
	if path == "" {
		return presets, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read section presets: %w", err)
	}
	var f presetFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse section presets: %w", err)
	}
	for i, p := range f.Presets {
		switch {
		case p.Name == "":
			return nil, fmt.Errorf("section preset %d: missing name", i)
		case p.Height < 1 || p.Width < 1:
			return nil, fmt.Errorf("section preset %q: height and width must be positive", p.Name)
		case !p.Type.Valid():
			return nil, fmt.Errorf("section preset %q: unknown cell type %q", p.Name, p.Type)
		}
		presets[p.Name] = p
	}
	return presets, nil
}
