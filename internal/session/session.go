package session

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/google/uuid"
)

// #region begin
// Begin starts a session in InProgress. A non-positive planned duration falls back
// to the catalog default.
func Begin(preset scenario.PresetID, source string, plannedSeconds int, now time.Time) Session {
	if plannedSeconds <= 0 {
		plannedSeconds = scenario.DefaultDurationSeconds
	}
	return Session{
		ID:                     uuid.New().String(),
		Preset:                 preset,
		Source:                 source,
		StartedAt:              now,
		PlannedDurationSeconds: plannedSeconds,
		State:                  InProgress,
	}
}

// #endregion begin

// #region queries
// Active reports whether s still occupies the single active slot.
func (s Session) Active() bool {
	return s.State == InProgress || s.State == AwaitingCheckIn
}

// Elapsed is the time since start, never negative.
func (s Session) Elapsed(now time.Time) time.Duration {
	if d := now.Sub(s.StartedAt); d > 0 {
		return d
	}
	return 0
}

// Remaining is the planned time left, never negative.
func (s Session) Remaining(now time.Time) time.Duration {
	if d := s.Planned() - s.Elapsed(now); d > 0 {
		return d
	}
	return 0
}

// Planned returns the planned duration.
func (s Session) Planned() time.Duration {
	return time.Duration(s.PlannedDurationSeconds) * time.Second
}

// #endregion queries

// #region transitions
// Tick moves InProgress to AwaitingCheckIn once the planned duration has elapsed.
// Returns true when the state changed.
func (s *Session) Tick(now time.Time) bool {
	if s.State != InProgress || s.Elapsed(now) < s.Planned() {
		return false
	}
	s.markRoutineDone(now)
	return true
}

// FinishEarly ends the routine before the planned duration.
func (s *Session) FinishEarly(now time.Time) bool {
	if s.State != InProgress {
		return false
	}
	s.markRoutineDone(now)
	return true
}

// Cancel abandons an active session.
func (s *Session) Cancel(now time.Time) bool {
	if !s.Active() {
		return false
	}
	t := now
	s.State = Cancelled
	s.CancelledAt = &t
	s.CompletedAt = &t
	return true
}

// CaptureOutcome records the post-session answers. An InProgress session is first
// moved to AwaitingCheckIn. Ratings are clamped to [1,5].
func (s *Session) CaptureOutcome(in OutcomeInput, sc scenario.Scenario, now time.Time) bool {
	if s.State == InProgress {
		s.markRoutineDone(now)
	}
	if s.State != AwaitingCheckIn {
		return false
	}
	dir := in.Direction
	if !dir.Valid() {
		dir = delta.Same
	}
	help := in.Helpfulness
	if !help.Valid() {
		help = delta.HelpfulSome
	}
	intensity := delta.ClampIntensity(in.Intensity)
	t := now
	s.Outcome = &Outcome{
		Direction:   dir,
		Intensity:   intensity,
		FeelRating:  delta.ClampIntensity(in.FeelRating),
		Helpfulness: help,
		Effect:      delta.Effect(dir, intensity, s.Preset, sc, in.Quality),
		RecordedAt:  t,
	}
	s.State = Completed
	s.CompletedAt = &t
	return true
}

func (s *Session) markRoutineDone(now time.Time) {
	t := now
	s.State = AwaitingCheckIn
	s.RoutineCompletedAt = &t
}

// #endregion transitions

// #region legacy
// InferState reconstructs a missing state from the presence of older fields.
func (s Session) InferState() State {
	switch {
	case s.Outcome != nil:
		return Completed
	case s.CancelledAt != nil:
		return Cancelled
	case s.RoutineCompletedAt != nil:
		return AwaitingCheckIn
	}
	return InProgress
}

// Normalize repairs a decoded session so that an outcome exists iff state is Completed.
func (s Session) Normalize() Session {
	if s.State == "" {
		s.State = s.InferState()
	}
	if s.State == Completed && s.Outcome == nil {
		s.State = s.InferState()
	}
	if s.State != Completed {
		s.Outcome = nil
	}
	if s.PlannedDurationSeconds <= 0 {
		s.PlannedDurationSeconds = scenario.DefaultDurationSeconds
	}
	return s
}

// #endregion legacy
