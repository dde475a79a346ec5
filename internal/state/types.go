package state

import (
	"context"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
)

// #region decision
// Action is the outcome of one intent.
type Action string

const (
	Applied Action = "applied"
	NoOp    Action = "no_op"
)

// Decision is returned by every intent. Invalid or unknown-target intents are
// NoOp with a reason; they never change state.
type Decision struct {
	Action Action `json:"action"`
	Reason string `json:"reason"`
}

func applied(reason string) Decision { return Decision{Action: Applied, Reason: reason} }
func noop(reason string) Decision { return Decision{Action: NoOp, Reason: reason} }

// Applied reports whether the intent changed state.
func (d Decision) Applied() bool { return d.Action == Applied }
// #endregion decision

// #region screen
// ScreenKind tags a ScreenState.
type ScreenKind string

const (
	ScreenLoading ScreenKind = "loading"
	ScreenReady   ScreenKind = "ready"
	ScreenEmpty   ScreenKind = "empty"
	ScreenError   ScreenKind = "error"
)

// ScreenState is what a presentation layer renders for one surface.
// Info is set for Empty and Error.
type ScreenState struct {
	Kind ScreenKind `json:"kind"`
	Info string     `json:"info,omitempty"`
}
// #endregion screen

// #region banner
// Banner is a transient user-facing notice.
type Banner struct {
	ID        int       `json:"id"`
	Message   string    `json:"message"`
	ShownAt   time.Time `json:"shownAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}
// #endregion banner

// #region collaborators
// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d on some goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// Auditor records intent decisions.
type Auditor interface {
	Record(ctx context.Context, entry logging.TransitionEntry) error
}

// SystemClock is the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// SystemScheduler wraps time.AfterFunc.
type SystemScheduler struct{}

func (SystemScheduler) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
// #endregion collaborators
