package recommend

import (
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/signals"
)

// #region input
// Input bundles everything the engine reads. The engine never mutates it.
type Input struct {
	Profile  scenario.Profile
	Metrics  metric.Snapshot
	Signals  signals.Counts
	Sessions []session.Session // terminal session history
}

// #endregion input

// #region config
// Config holds the scenario tables and weights used for projection and ranking.
type Config struct {
	Affinity           map[scenario.Scenario]map[scenario.PresetID]float64
	BaseDelta          map[scenario.Scenario]map[scenario.PresetID]int
	RewardWeight       float64
	ProjectionMin      int
	ProjectionMax      int
	MinConfidence      float64
	MaxConfidence      float64
	DriverMin          float64
	DriverMax          float64
	InfluenceThreshold float64
}

// DefaultConfig returns the tuned demo tables.
func DefaultConfig() Config {
	return Config{
		Affinity: map[scenario.Scenario]map[scenario.PresetID]float64{
			scenario.HighStress: {scenario.CalmNow: 1.0, scenario.FocusPrep: 0.55, scenario.SleepDownshift: 0.7},
			scenario.Balanced:   {scenario.CalmNow: 0.7, scenario.FocusPrep: 1.0, scenario.SleepDownshift: 0.6},
			scenario.Recovery:   {scenario.CalmNow: 0.65, scenario.FocusPrep: 0.5, scenario.SleepDownshift: 1.0},
		},
		BaseDelta: map[scenario.Scenario]map[scenario.PresetID]int{
			scenario.HighStress: {scenario.CalmNow: -8, scenario.FocusPrep: -4, scenario.SleepDownshift: -6},
			scenario.Balanced:   {scenario.CalmNow: -5, scenario.FocusPrep: -3, scenario.SleepDownshift: -4},
			scenario.Recovery:   {scenario.CalmNow: -4, scenario.FocusPrep: -2, scenario.SleepDownshift: -6},
		},
		RewardWeight:       0.32,
		ProjectionMin:      -12,
		ProjectionMax:      2,
		MinConfidence:      0.35,
		MaxConfidence:      0.95,
		DriverMin:          0.05,
		DriverMax:          0.62,
		InfluenceThreshold: 0.03,
	}
}

// #endregion config

// #region outputs
// Recommendation is the single best-next-action.
type Recommendation struct {
	Preset         scenario.PresetID `json:"preset"`
	Branch         string            `json:"branch"`
	What           string            `json:"what"`
	Why            string            `json:"why"`
	Confidence     float64           `json:"confidence"`
	ProjectedDelta int               `json:"projectedDelta"`
	ProjectedLoad  int               `json:"projectedLoad"`
	HorizonHours   int               `json:"horizonHours"`
}

// RankedPreset is one row of the display ordering.
type RankedPreset struct {
	Preset     scenario.PresetID `json:"preset"`
	Score      float64           `json:"score"`
	Affinity   float64           `json:"affinity"`
	MeanReward float64           `json:"meanReward"`
	Samples    int               `json:"samples"`
	Adjustment float64           `json:"adjustment"`
}

// Influence annotates the direction a driver moved.
type Influence string

const (
	Rising  Influence = "rising"
	Falling Influence = "falling"
	Stable  Influence = "stable"
)

// DriverImpact is a re-scored driver.
type DriverImpact struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Impact     float64   `json:"impact"`
	BaseImpact float64   `json:"baseImpact"`
	Influence  Influence `json:"influence"`
}

// PresetStat aggregates completed sessions of one preset.
type PresetStat struct {
	Preset     scenario.PresetID `json:"preset"`
	Completed  int               `json:"completed"`
	MeanReward float64           `json:"meanReward"`
}

// WhatsWorking summarizes which presets have helped.
type WhatsWorking struct {
	Best           *PresetStat  `json:"best,omitempty"`
	Stats          []PresetStat `json:"stats"`
	CompletionRate int          `json:"completionRate"`
	Headline       string       `json:"headline"`
}

// #endregion outputs
