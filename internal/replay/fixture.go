package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
)

// #region fixture-types

// Fixture is the top-level JSON structure for an intent replay.
type Fixture struct {
	Description string        `json:"description"`
	StartTime   time.Time     `json:"start_time"`
	Steps       []FixtureStep `json:"steps"`
}

// FixtureStep is one user intent plus the clock advance that precedes it.
// Only the fields relevant to Intent are read.
type FixtureStep struct {
	ID             string `json:"id"`
	Intent         string `json:"intent"`
	AdvanceSeconds int    `json:"advance_seconds,omitempty"`

	Scenario        scenario.Scenario `json:"scenario,omitempty"`
	Preset          scenario.PresetID `json:"preset,omitempty"`
	Source          string            `json:"source,omitempty"`
	Direction       delta.Direction   `json:"direction,omitempty"`
	Intensity       int               `json:"intensity,omitempty"`
	Feel            int               `json:"feel,omitempty"`
	Helpfulness     delta.Helpfulness `json:"helpfulness,omitempty"`
	Quality         delta.Quality     `json:"quality,omitempty"`
	ExperimentID    string            `json:"experiment_id,omitempty"`
	PerceivedChange int               `json:"perceived_change,omitempty"`
	Load            int               `json:"load,omitempty"`
	Days            int               `json:"days,omitempty"`
	Text            string            `json:"text,omitempty"`

	Expect *FixtureExpect `json:"expect,omitempty"`
}

// FixtureExpect lists the observations checked after a step. Nil fields are skipped.
type FixtureExpect struct {
	Action         string            `json:"action"`
	Metrics        *metric.Snapshot  `json:"metrics,omitempty"`
	Recommendation scenario.PresetID `json:"recommendation,omitempty"`
	DemoDay        *int              `json:"demo_day,omitempty"`
	SessionState   session.State     `json:"session_state,omitempty"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse fixture %s: no steps", path)
	}
	return &f, nil
}

// outcome converts the session-outcome fields of a step.
func (s FixtureStep) outcome() session.OutcomeInput {
	return session.OutcomeInput{
		Direction:   s.Direction,
		Intensity:   s.Intensity,
		FeelRating:  s.Feel,
		Helpfulness: s.Helpfulness,
		Quality:     s.Quality,
	}
}

// #endregion fixture-loader
