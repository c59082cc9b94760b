package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed demos.yaml
var defaultDemos []byte

// ActorSpec describes one actor of a demo.
type ActorSpec struct {
	Type    string  `yaml:"type"`
	Version string  `yaml:"version"`
	ID      string  `yaml:"id"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
	// Headless actors have no visuals and exist for external tooling.
	Headless bool `yaml:"headless"`
	// Mirror names the visual actor a headless actor follows.
	Mirror string         `yaml:"mirror"`
	Params map[string]any `yaml:"params"`
}

func (s ActorSpec) Key() Key { return Key{Type: s.Type, Version: s.Version} }

// DemoSpec is one selectable demo. Coordinates are in a Width-wide design
// space.
type DemoSpec struct {
	ID      string      `yaml:"id"`
	Title   string      `yaml:"title"`
	Width   float64     `yaml:"width"`
	GroundY float64     `yaml:"groundY"`
	Actors  []ActorSpec `yaml:"actors"`
}

// DemoSet is the list of demos offered by the storybook.
type DemoSet struct {
	Demos []DemoSpec `yaml:"demos"`
}

// Find returns the demo with the given id.
func (s *DemoSet) Find(id string) (DemoSpec, bool) {
	if s == nil {
		return DemoSpec{}, false
	}
	for _, d := range s.Demos {
		if d.ID == id {
			return d, true
		}
	}
	return DemoSpec{}, false
}

func (s *DemoSet) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, len(s.Demos))
	for i, d := range s.Demos {
		ids[i] = d.ID
	}
	return ids
}

// ParseDemos decodes and checks a YAML demo set.
func ParseDemos(data []byte) (*DemoSet, error) {
	var set DemoSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("catalog: unmarshal demos: %w", err)
	}
	seen := make(map[string]bool, len(set.Demos))
	for _, d := range set.Demos {
		if d.ID == "" {
			return nil, fmt.Errorf("catalog: demo without id")
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("catalog: duplicate demo %q", d.ID)
		}
		seen[d.ID] = true
		ids := make(map[string]bool, len(d.Actors))
		for _, a := range d.Actors {
			if a.Type == "" || a.ID == "" {
				return nil, fmt.Errorf("catalog: demo %q: actor needs type and id", d.ID)
			}
			if ids[a.ID] {
				return nil, fmt.Errorf("catalog: demo %q: duplicate actor %q", d.ID, a.ID)
			}
			ids[a.ID] = true
		}
		for _, a := range d.Actors {
			if a.Mirror != "" && !ids[a.Mirror] {
				return nil, fmt.Errorf("catalog: demo %q: actor %q mirrors unknown %q", d.ID, a.ID, a.Mirror)
			}
		}
	}
	return &set, nil
}

// LoadDemosFile reads a demo set from disk.
func LoadDemosFile(path string) (*DemoSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	return ParseDemos(data)
}

// DefaultDemos returns the demo set compiled into the binary.
func DefaultDemos() *DemoSet {
	set, err := ParseDemos(defaultDemos)
	if err != nil {
		panic(err)
	}
	return set
}
