package state

import (
	"context"
	"fmt"
	"strconv"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/experiment"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
)

// StartExperiment activates a planned experiment. Any other active experiment
// reverts to planned with its progress cleared.
func (s *Store) StartExperiment(ctx context.Context, id string) Decision {
	const intent = "startExperiment"
	i := experiment.Find(s.e.Experiments, id)
	if i < 0 {
		return s.record(ctx, intent, noop(fmt.Sprintf("unknown experiment %q", id)))
	}
	now := s.clock.Now()
	list := s.Experiments()
	if !experiment.Start(list, id, now) {
		return s.record(ctx, intent, noop("experiment is not planned"))
	}
	s.e.Experiments = list
	s.appendEvent(now, history.KindExperiment, "Started "+list[i].Title, list[i].Hypothesis)
	s.refreshHealth(now)
	s.save(ctx, persist.KeyExperiments, persist.KeyEvents, persist.KeyHealth)
	s.emit(analytics.EventExperimentStarted, map[string]string{
		"experiment":   id,
		"focus":        string(list[i].FocusMetric),
		"durationDays": strconv.Itoa(list[i].DurationDays),
	})
	return s.record(ctx, intent, applied("started "+id))
}

// LogExperimentDay records a daily check-in on the active experiment.
func (s *Store) LogExperimentDay(ctx context.Context) Decision {
	const intent = "logExperimentDay"
	i := experiment.ActiveIndex(s.e.Experiments)
	if i < 0 {
		return s.record(ctx, intent, noop("no active experiment"))
	}
	now := s.clock.Now()
	list := s.Experiments()
	if !list[i].LogDay(now) {
		return s.record(ctx, intent, noop("experiment is not active"))
	}
	s.e.Experiments = list
	s.e.DemoDay++
	s.applyDelta(delta.ExperimentCheckInDelta(list[i].FocusMetric))
	s.appendEvent(now, history.KindExperiment, list[i].Title+" check-in",
		fmt.Sprintf("Day %d of %d logged.", list[i].CheckInDaysCompleted, list[i].DurationDays))
	s.refreshHealth(now)
	s.save(ctx, persist.KeyExperiments, persist.KeyDemoDay, persist.KeyMetrics, persist.KeyEvents, persist.KeyHealth)
	s.emit(analytics.EventExperimentDayLogged, map[string]string{
		"experiment": list[i].ID,
		"days":       strconv.Itoa(list[i].CheckInDaysCompleted),
		"adherence":  strconv.Itoa(list[i].AdherencePercent(now)),
	})
	return s.record(ctx, intent, applied(fmt.Sprintf("logged day %d", list[i].CheckInDaysCompleted)))
}

// CompleteExperiment closes the active experiment. perceivedChange is clamped to [-5,5].
func (s *Store) CompleteExperiment(ctx context.Context, perceivedChange int, note string) Decision {
	const intent = "completeExperiment"
	i := experiment.ActiveIndex(s.e.Experiments)
	if i < 0 {
		return s.record(ctx, intent, noop("no active experiment"))
	}
	now := s.clock.Now()
	list := s.Experiments()
	if !list[i].Complete(perceivedChange, note, s.profile.Title, now) {
		return s.record(ctx, intent, noop("experiment is not active"))
	}
	s.e.Experiments = list
	pc := list[i].Result.PerceivedChange
	s.applyDelta(delta.ExperimentCompletionDelta(list[i].FocusMetric, pc))
	s.appendEvent(now, history.KindExperiment, "Completed "+list[i].Title, list[i].Result.Summary)
	s.refreshHealth(now)
	s.save(ctx, persist.KeyExperiments, persist.KeyMetrics, persist.KeyEvents, persist.KeyHealth)
	s.emit(analytics.EventExperimentCompleted, map[string]string{
		"experiment":      list[i].ID,
		"perceivedChange": strconv.Itoa(pc),
		"adherence":       strconv.Itoa(list[i].AdherencePercent(now)),
	})
	return s.record(ctx, intent, applied(fmt.Sprintf("completed %s with change %d", list[i].ID, pc)))
}

// EditExperimentSummary replaces the generated summary of a completed experiment.
func (s *Store) EditExperimentSummary(ctx context.Context, id, text string) Decision {
	const intent = "editExperimentSummary"
	i := experiment.Find(s.e.Experiments, id)
	if i < 0 {
		return s.record(ctx, intent, noop(fmt.Sprintf("unknown experiment %q", id)))
	}
	list := s.Experiments()
	if !list[i].EditSummary(text) {
		return s.record(ctx, intent, noop("experiment has no editable summary"))
	}
	s.e.Experiments = list
	s.save(ctx, persist.KeyExperiments)
	return s.record(ctx, intent, applied("summary edited"))
}
