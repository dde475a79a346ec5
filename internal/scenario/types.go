package scenario

import "github.com/danielpatrickdp/mindsense/go-engine/internal/metric"

// #region scenario
// Scenario is one of the three fixed demo contexts.
type Scenario string

const (
	HighStress Scenario = "highStress"
	Balanced   Scenario = "balanced"
	Recovery   Scenario = "recovery"
)

// All lists scenarios in declaration order.
var All = []Scenario{HighStress, Balanced, Recovery}

// Valid reports whether s is a known scenario.
func (s Scenario) Valid() bool {
	switch s {
	case HighStress, Balanced, Recovery:
		return true
	}
	return false
}

// #endregion scenario

// #region preset
// PresetID names a regulation protocol.
type PresetID string

const (
	CalmNow        PresetID = "calmNow"
	FocusPrep      PresetID = "focusPrep"
	SleepDownshift PresetID = "sleepDownshift"
)

// PresetOrder is the declaration order used to break ranking ties.
var PresetOrder = []PresetID{CalmNow, FocusPrep, SleepDownshift}

// DefaultDurationSeconds applies when a preset is missing from the catalog.
const DefaultDurationSeconds = 180

// Valid reports whether p is a known preset.
func (p PresetID) Valid() bool {
	switch p {
	case CalmNow, FocusPrep, SleepDownshift:
		return true
	}
	return false
}

// Preset is one catalog entry.
type Preset struct {
	ID              PresetID `yaml:"id" json:"id"`
	Title           string   `yaml:"title" json:"title"`
	Summary         string   `yaml:"summary" json:"summary"`
	DurationSeconds int      `yaml:"duration_seconds" json:"durationSeconds"`
	Steps           []string `yaml:"steps" json:"steps,omitempty"`
}

// #endregion preset

// #region driver
// Driver is a named contextual factor with a base impact weight in [0,1].
type Driver struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Impact float64 `yaml:"impact" json:"impact"`
}

// #endregion driver

// #region experiment-template
// ExperimentTemplate holds the fixed text of a behavior trial.
type ExperimentTemplate struct {
	ID           string      `yaml:"id"`
	Title        string      `yaml:"title"`
	Hypothesis   string      `yaml:"hypothesis"`
	FocusMetric  metric.Axis `yaml:"focus_metric"`
	Rationale    string      `yaml:"rationale"`
	DurationDays int         `yaml:"duration_days"`
}

// #endregion experiment-template

// #region profile
// Profile is the immutable parameter set derived from a Scenario.
type Profile struct {
	Scenario        Scenario             `yaml:"scenario"`
	Title           string               `yaml:"title"`
	Baseline        metric.Snapshot      `yaml:"baseline"`
	DefaultDay      int                  `yaml:"default_day"`
	ConfidenceBase  float64              `yaml:"confidence_base"`
	PrimaryDriver   string               `yaml:"primary_driver"`
	SecondaryDriver string               `yaml:"secondary_driver"`
	Drivers         []Driver             `yaml:"drivers"`
	Presets         []Preset             `yaml:"presets"`
	Experiments     []ExperimentTemplate `yaml:"experiments"`
	Narratives      map[string]string    `yaml:"narratives"`
}

// #endregion profile
