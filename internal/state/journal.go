package state

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

// MaxFastForwardDays bounds one FastForward call.
const MaxFastForwardDays = 30

// #region scenario
// SelectScenario switches the demo context and resets everything derived from it:
// metrics, day counter, sessions, experiments, event history and the health profile.
func (s *Store) SelectScenario(ctx context.Context, sc scenario.Scenario) Decision {
	const intent = "selectScenario"
	if !sc.Valid() {
		return s.record(ctx, intent, noop(fmt.Sprintf("unknown scenario %q", sc)))
	}
	now := s.clock.Now()
	p := s.catalog.Profile(sc)
	d := persist.Defaults(p, now)
	s.profile = p
	s.e.Scenario = sc
	s.e.Metrics = d.Metrics
	s.e.DemoDay = d.DemoDay
	s.e.Sessions = nil
	s.e.Active = nil
	s.e.Experiments = d.Experiments
	s.e.Events = nil
	s.e.Health = d.Health
	s.upsell = false
	s.appendEvent(now, history.KindScenario, p.Title, "Scenario selected.")
	s.save(ctx, persist.KeyScenario, persist.KeyMetrics, persist.KeyDemoDay, persist.KeySessionHistory,
		persist.KeyActiveSession, persist.KeyExperiments, persist.KeyEvents, persist.KeyHealth)
	s.emit(analytics.EventScenarioSelected, map[string]string{"scenario": string(sc)})
	return s.record(ctx, intent, applied("selected "+string(sc)))
}
// #endregion scenario

// #region journal
// SaveCheckIn records a self-reported load score (clamped to the load range) and
// pulls the load metric halfway toward it.
func (s *Store) SaveCheckIn(ctx context.Context, loadScore int, note string) Decision {
	const intent = "saveCheckIn"
	now := s.clock.Now()
	reported := metric.LoadBounds.Clamp(loadScore)
	s.applyDelta(delta.CheckInDelta(s.e.Metrics, reported))
	detail := strings.TrimSpace(note)
	if detail == "" {
		detail = fmt.Sprintf("Reported load %d.", reported)
	}
	s.appendEvent(now, history.KindCheckIn, "Check-in", detail)
	s.refreshHealth(now)
	s.save(ctx, persist.KeyMetrics, persist.KeyEvents, persist.KeyHealth)
	s.emit(analytics.EventCheckInSaved, map[string]string{"load": strconv.Itoa(reported), "hasNote": strconv.FormatBool(note != "")})
	return s.record(ctx, intent, applied(fmt.Sprintf("check-in load %d", reported)))
}

// SaveReflection appends free text to the event log. Blank text is ignored.
func (s *Store) SaveReflection(ctx context.Context, text string) Decision {
	const intent = "saveReflection"
	text = strings.TrimSpace(text)
	if text == "" {
		return s.record(ctx, intent, noop("empty reflection"))
	}
	s.appendEvent(s.clock.Now(), history.KindReflection, "Reflection", text)
	s.save(ctx, persist.KeyEvents)
	s.emit(analytics.EventReflectionSaved, map[string]string{"length": strconv.Itoa(len(text))})
	return s.record(ctx, intent, applied("reflection saved"))
}

// FastForward simulates days passing under the current scenario.
func (s *Store) FastForward(ctx context.Context, days int) Decision {
	const intent = "fastForward"
	if days <= 0 {
		return s.record(ctx, intent, noop("days must be positive"))
	}
	days = min(days, MaxFastForwardDays)
	now := s.clock.Now()
	d := delta.FastForwardDelta(days, s.e.Scenario)
	s.applyDelta(d)
	s.e.DemoDay += days
	s.appendEvent(now, history.KindSystem, fmt.Sprintf("Fast-forwarded %d days", days), d.String())
	s.refreshHealth(now)
	s.save(ctx, persist.KeyMetrics, persist.KeyDemoDay, persist.KeyEvents, persist.KeyHealth)
	s.emit(analytics.EventFastForward, map[string]string{"days": strconv.Itoa(days)})
	return s.record(ctx, intent, applied(fmt.Sprintf("advanced %d days", days)))
}
// #endregion journal

// #region progress
// SaveInsight keeps a short insight. Duplicates (case-insensitive) are ignored
// and the list keeps the newest persist.MaxInsights entries.
func (s *Store) SaveInsight(ctx context.Context, text string) Decision {
	const intent = "saveInsight"
	text = strings.TrimSpace(text)
	if text == "" {
		return s.record(ctx, intent, noop("empty insight"))
	}
	for _, existing := range s.e.Insights {
		if strings.EqualFold(existing, text) {
			return s.record(ctx, intent, noop("insight already saved"))
		}
	}
	s.e.Insights = history.AppendCapped(s.Insights(), text, persist.MaxInsights)
	s.save(ctx, persist.KeyInsights)
	return s.record(ctx, intent, applied("insight saved"))
}

// AdvanceGuidedPath moves the guided path one step, up to persist.MaxGuidedStep.
func (s *Store) AdvanceGuidedPath(ctx context.Context) Decision {
	const intent = "advanceGuidedPath"
	if s.e.GuidedStep >= persist.MaxGuidedStep {
		return s.record(ctx, intent, noop("guided path complete"))
	}
	s.e.GuidedStep++
	s.save(ctx, persist.KeyGuidedPath)
	return s.record(ctx, intent, applied(fmt.Sprintf("guided step %d", s.e.GuidedStep)))
}

func (s *Store) ResetGuidedPath(ctx context.Context) Decision {
	const intent = "resetGuidedPath"
	if s.e.GuidedStep == 0 {
		return s.record(ctx, intent, noop("guided path not started"))
	}
	s.e.GuidedStep = 0
	s.save(ctx, persist.KeyGuidedPath)
	return s.record(ctx, intent, applied("guided path reset"))
}

// SetOnboardingStep stores the account's onboarding progress. Negative steps clamp to 0.
func (s *Store) SetOnboardingStep(ctx context.Context, step int) Decision {
	const intent = "setOnboardingStep"
	step = max(step, 0)
	if step == s.e.Onboarding {
		return s.record(ctx, intent, noop("onboarding step unchanged"))
	}
	s.e.Onboarding = step
	s.save(ctx, persist.KeyOnboarding)
	return s.record(ctx, intent, applied(fmt.Sprintf("onboarding step %d", step)))
}

// MarkKPIReviewed stamps the time the user last reviewed their metrics.
func (s *Store) MarkKPIReviewed(ctx context.Context) Decision {
	now := s.clock.Now()
	s.e.KPIReviewedAt = &now
	s.save(ctx, persist.KeyKPIReviewed)
	return s.record(ctx, "markKPIReviewed", applied("reviewed"))
}
// #endregion progress
