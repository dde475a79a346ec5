package state

import (
	"context"
	"fmt"
	"strconv"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
)

// #region start
// StartSession begins a regulation session. Rejected while another session is active.
func (s *Store) StartSession(ctx context.Context, preset scenario.PresetID, source string) Decision {
	const intent = "startSession"
	if !preset.Valid() {
		return s.record(ctx, intent, noop(fmt.Sprintf("unknown preset %q", preset)))
	}
	if s.e.Active != nil && s.e.Active.Active() {
		return s.record(ctx, intent, noop("a session is already active"))
	}
	now := s.clock.Now()
	ss := session.Begin(preset, source, s.profile.PlannedDuration(preset), now)
	s.e.Active = &ss
	s.save(ctx, persist.KeyActiveSession)
	s.emit(analytics.EventSessionStarted, map[string]string{
		"preset":  string(preset),
		"source":  source,
		"planned": strconv.Itoa(ss.PlannedDurationSeconds),
	})
	return s.record(ctx, intent, applied("started "+string(preset)))
}
// #endregion start

// #region tick
// Tick is the 1-second poll. It moves an in-progress session whose planned
// duration has elapsed to awaiting check-in, and is a no-op otherwise.
func (s *Store) Tick(ctx context.Context) Decision {
	if s.e.Active == nil {
		return noop("no active session")
	}
	if !s.e.Active.Tick(s.clock.Now()) {
		return noop("routine still running")
	}
	s.save(ctx, persist.KeyActiveSession)
	s.emit(analytics.EventSessionRoutineDone, map[string]string{"preset": string(s.e.Active.Preset), "trigger": "timer"})
	return s.record(ctx, "tick", applied("routine complete"))
}

// FinishSessionEarly ends the routine before the planned duration.
func (s *Store) FinishSessionEarly(ctx context.Context) Decision {
	const intent = "finishSessionEarly"
	if s.e.Active == nil {
		return s.record(ctx, intent, noop("no active session"))
	}
	if !s.e.Active.FinishEarly(s.clock.Now()) {
		return s.record(ctx, intent, noop("routine already finished"))
	}
	s.save(ctx, persist.KeyActiveSession)
	s.emit(analytics.EventSessionRoutineDone, map[string]string{"preset": string(s.e.Active.Preset), "trigger": "manual"})
	return s.record(ctx, intent, applied("routine finished early"))
}
// #endregion tick

// #region cancel
// CancelSession abandons the active session and applies the cancellation delta.
func (s *Store) CancelSession(ctx context.Context) Decision {
	const intent = "cancelSession"
	if s.e.Active == nil {
		return s.record(ctx, intent, noop("no active session"))
	}
	now := s.clock.Now()
	ss := *s.e.Active
	if !ss.Cancel(now) {
		return s.record(ctx, intent, noop("session is not cancellable"))
	}
	s.e.Sessions = history.AppendCapped(s.e.Sessions, ss, history.MaxSessions)
	s.e.Active = nil
	s.applyDelta(delta.CancellationDelta())
	s.appendEvent(now, history.KindSession, s.presetTitle(ss.Preset)+" cancelled", "Session ended before check-in.")
	s.save(ctx, persist.KeyActiveSession, persist.KeySessionHistory, persist.KeyMetrics, persist.KeyEvents)
	s.emit(analytics.EventSessionCancelled, map[string]string{
		"preset":         string(ss.Preset),
		"elapsedSeconds": strconv.Itoa(int(ss.Elapsed(now).Seconds())),
	})
	return s.record(ctx, intent, applied("cancelled "+string(ss.Preset)))
}
// #endregion cancel

// #region complete
// CompleteSession captures the post-session outcome. An in-progress session is
// first moved to awaiting check-in.
func (s *Store) CompleteSession(ctx context.Context, in session.OutcomeInput) Decision {
	const intent = "completeSession"
	if s.e.Active == nil {
		return s.record(ctx, intent, noop("no active session"))
	}
	now := s.clock.Now()
	ss := *s.e.Active
	if !ss.CaptureOutcome(in, s.e.Scenario, now) {
		return s.record(ctx, intent, noop("session is not awaiting check-in"))
	}
	out := ss.Outcome
	s.e.Sessions = history.AppendCapped(s.e.Sessions, ss, history.MaxSessions)
	s.e.Active = nil
	s.applyDelta(delta.SessionOutcomeDelta(out.Direction, out.Intensity))
	s.e.DemoDay++
	s.appendEvent(now, history.KindSession, s.presetTitle(ss.Preset)+" completed",
		fmt.Sprintf("Felt %s, helpfulness %s, heart rate down %d bpm.", directionWord(out.Direction), out.Helpfulness, out.Effect.HeartRateDownshiftBPM))

	keys := []persist.Key{persist.KeyActiveSession, persist.KeySessionHistory, persist.KeyMetrics, persist.KeyEvents, persist.KeyDemoDay, persist.KeyHealth}
	if !s.e.PaywallSeen {
		s.e.PaywallSeen = true
		s.upsell = true
		keys = append(keys, persist.KeyPaywallSeen)
		s.emit(analytics.EventUpsellShown, map[string]string{"trigger": "first_session_completed"})
	}
	s.refreshHealth(now)
	s.save(ctx, keys...)
	s.emit(analytics.EventSessionOutcomeRecorded, map[string]string{
		"preset":      string(ss.Preset),
		"direction":   string(out.Direction),
		"intensity":   strconv.Itoa(out.Intensity),
		"feel":        strconv.Itoa(out.FeelRating),
		"helpfulness": string(out.Helpfulness),
		"quality":     string(out.Effect.Quality),
	})
	return s.record(ctx, intent, applied(fmt.Sprintf("%s outcome %s", ss.Preset, out.Direction)))
}

// DismissUpsell hides the post-activation prompt. The seen flag stays set.
func (s *Store) DismissUpsell(ctx context.Context) Decision {
	const intent = "dismissUpsell"
	if !s.upsell {
		return s.record(ctx, intent, noop("no upsell pending"))
	}
	s.upsell = false
	return s.record(ctx, intent, applied("upsell dismissed"))
}
// #endregion complete

// #region helpers
func (s *Store) presetTitle(id scenario.PresetID) string {
	if p, ok := s.profile.Preset(id); ok && p.Title != "" {
		return p.Title
	}
	return string(id)
}

func directionWord(d delta.Direction) string {
	switch d {
	case delta.Better:
		return "better"
	case delta.Worse:
		return "worse"
	}
	return "about the same"
}
// #endregion helpers
