package session

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

// #region state
// State is the lifecycle position of a regulation session.
type State string

const (
	InProgress      State = "inProgress"
	AwaitingCheckIn State = "awaitingCheckIn"
	Completed       State = "completed"
	Cancelled       State = "cancelled"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == Completed || s == Cancelled
}

// #endregion state

// #region outcome
// Outcome is the immutable result of a completed session.
type Outcome struct {
	Direction   delta.Direction     `json:"direction"`
	Intensity   int                 `json:"intensity"`
	FeelRating  int                 `json:"feelRating"`
	Helpfulness delta.Helpfulness   `json:"helpfulness"`
	Effect      delta.EffectMetrics `json:"effect"`
	RecordedAt  time.Time           `json:"recordedAt"`
}

// OutcomeInput is the raw user answer to the post-session check-in.
type OutcomeInput struct {
	Direction   delta.Direction
	Intensity   int
	FeelRating  int
	Helpfulness delta.Helpfulness
	Quality     delta.Quality
}

// #endregion outcome

// #region session
// Session is one regulation exercise attempt.
type Session struct {
	ID                     string            `json:"id"`
	Preset                 scenario.PresetID `json:"preset"`
	Source                 string            `json:"source,omitempty"`
	StartedAt              time.Time         `json:"startedAt"`
	PlannedDurationSeconds int               `json:"plannedDurationSeconds"`
	RoutineCompletedAt     *time.Time        `json:"routineCompletedAt,omitempty"`
	CancelledAt            *time.Time        `json:"cancelledAt,omitempty"`
	CompletedAt            *time.Time        `json:"completedAt,omitempty"`
	State                  State             `json:"state"`
	Outcome                *Outcome          `json:"outcome,omitempty"`
}

// #endregion session
