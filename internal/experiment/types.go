package experiment

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
)

// #region status
// Status is the lifecycle position of an experiment.
type Status string

const (
	Planned   Status = "planned"
	Active    Status = "active"
	Completed Status = "completed"
)

// #endregion status

// #region experiment
// Result is the captured end-of-trial outcome.
type Result struct {
	PerceivedChange int    `json:"perceivedChange"`
	Summary         string `json:"summary"`
	Edited          bool   `json:"edited,omitempty"`
}

// Experiment is a multi-day behavior trial.
type Experiment struct {
	ID                   string      `json:"id"`
	Title                string      `json:"title"`
	Hypothesis           string      `json:"hypothesis"`
	FocusMetric          metric.Axis `json:"focusMetric"`
	Rationale            string      `json:"rationale"`
	DurationDays         int         `json:"durationDays"`
	Status               Status      `json:"status"`
	StartedAt            *time.Time  `json:"startedAt,omitempty"`
	TargetEndDate        *time.Time  `json:"targetEndDate,omitempty"`
	EndedAt              *time.Time  `json:"endedAt,omitempty"`
	CheckInDaysCompleted int         `json:"checkInDaysCompleted"`
	CheckInLog           []time.Time `json:"checkInLog,omitempty"`
	Result               *Result     `json:"result,omitempty"`
}

// #endregion experiment
