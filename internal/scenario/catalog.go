package scenario

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// #region catalog
// Catalog maps every scenario to its profile.
type Catalog struct {
	profiles map[Scenario]Profile
}

type catalogFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultCatalog parses the embedded catalog. It panics if the embedded file is invalid.
func DefaultCatalog() *Catalog {
	c, err := ParseCatalog(defaultCatalogYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog override from disk.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c := &Catalog{profiles: make(map[Scenario]Profile, len(f.Profiles))}
	for _, p := range f.Profiles {
		if !p.Scenario.Valid() {
			return nil, fmt.Errorf("parse catalog: unknown scenario %q", p.Scenario)
		}
		for _, pr := range p.Presets {
			if !pr.ID.Valid() {
				return nil, fmt.Errorf("parse catalog: scenario %s: unknown preset %q", p.Scenario, pr.ID)
			}
		}
		for _, e := range p.Experiments {
			if !e.FocusMetric.Valid() {
				return nil, fmt.Errorf("parse catalog: experiment %s: unknown focus metric %q", e.ID, e.FocusMetric)
			}
		}
		p.Baseline = p.Baseline.Clamped()
		c.profiles[p.Scenario] = p
	}
	for _, s := range All {
		if _, ok := c.profiles[s]; !ok {
			return nil, fmt.Errorf("parse catalog: missing scenario %s", s)
		}
	}
	return c, nil
}

// Profile returns the profile for s, falling back to Balanced for unknown values.
func (c *Catalog) Profile(s Scenario) Profile {
	if p, ok := c.profiles[s]; ok {
		return p
	}
	return c.profiles[Balanced]
}

// #endregion catalog

// #region profile-lookups
// Preset finds a preset by id within the profile.
func (p Profile) Preset(id PresetID) (Preset, bool) {
	for _, pr := range p.Presets {
		if pr.ID == id {
			return pr, true
		}
	}
	return Preset{}, false
}

// PlannedDuration returns the preset duration in seconds, or DefaultDurationSeconds.
func (p Profile) PlannedDuration(id PresetID) int {
	if pr, ok := p.Preset(id); ok && pr.DurationSeconds > 0 {
		return pr.DurationSeconds
	}
	return DefaultDurationSeconds
}

// Experiment finds an experiment template by id.
func (p Profile) Experiment(id string) (ExperimentTemplate, bool) {
	for _, e := range p.Experiments {
		if e.ID == id {
			return e, true
		}
	}
	return ExperimentTemplate{}, false
}

// Narrative returns the per-signal narrative, or "" when absent.
func (p Profile) Narrative(signal string) string {
	return p.Narratives[signal]
}

// #endregion profile-lookups
