package state

import (
	"context"
	"strings"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
)

// Repair resets every entity that failed to load to its scenario default,
// rewrites those keys and clears the data issue.
func (s *Store) Repair(ctx context.Context) Decision {
	const intent = "repair"
	keys := s.adapter.Corrupted()
	if len(keys) == 0 && s.adapter.Issue() == nil {
		return s.record(ctx, intent, noop("no data issue"))
	}
	now := s.clock.Now()
	d := persist.Defaults(s.profile, now)
	for _, k := range keys {
		switch k {
		case persist.KeyScenario:
			s.e.Scenario = d.Scenario
		case persist.KeyMetrics:
			s.e.Metrics = d.Metrics
		case persist.KeyDemoDay:
			s.e.DemoDay = d.DemoDay
		case persist.KeySessionHistory:
			s.e.Sessions = nil
		case persist.KeyActiveSession:
			s.e.Active = nil
		case persist.KeyExperiments:
			s.e.Experiments = d.Experiments
		case persist.KeyEvents:
			s.e.Events = nil
		case persist.KeyHealth:
			s.e.Health = d.Health
		case persist.KeyInsights:
			s.e.Insights = nil
		case persist.KeyGuidedPath:
			s.e.GuidedStep = 0
		case persist.KeyOnboarding:
			s.e.Onboarding = 0
		case persist.KeyKPIReviewed:
			s.e.KPIReviewedAt = nil
		case persist.KeyPaywallSeen:
			s.e.PaywallSeen = false
		case persist.KeyAnalytics:
			s.e.Analytics = nil
		}
	}
	s.adapter.ClearIssue()
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, string(k))
	}
	s.appendEvent(now, history.KindSystem, "Data repaired", strings.Join(names, ", "))
	s.save(ctx, append(keys, persist.KeyEvents)...)
	s.emit(analytics.EventDataRepaired, map[string]string{"keys": strings.Join(names, ",")})
	return s.record(ctx, intent, applied("reset "+strings.Join(names, ", ")))
}
