package history

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
)

// #region limits
const (
	MaxEvents   = 80 // event log cap, oldest dropped
	MaxSessions = 50 // terminal session history cap
)

// #endregion limits

// #region kind
// Kind classifies an event log entry.
type Kind string

const (
	KindScenario   Kind = "scenario"
	KindCheckIn    Kind = "check-in"
	KindReflection Kind = "reflection"
	KindSession    Kind = "session"
	KindExperiment Kind = "experiment"
	KindSystem     Kind = "system"
)

// #endregion kind

// #region event
// Event is one append-only log entry.
type Event struct {
	ID        string           `json:"id"`
	Timestamp time.Time        `json:"timestamp"`
	Title     string           `json:"title"`
	Detail    string           `json:"detail,omitempty"`
	Kind      Kind             `json:"kind"`
	Snapshot  *metric.Snapshot `json:"snapshot,omitempty"`
	Day       *int             `json:"day,omitempty"`
}

// #endregion event
