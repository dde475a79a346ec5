package state

import (
	"context"
	"testing"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/experiment"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/health"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
)

var ctx = context.Background()

func better(intensity int) session.OutcomeInput {
	return session.OutcomeInput{
		Direction: delta.Better, Intensity: intensity, FeelRating: 4,
		Helpfulness: delta.HelpfulYes, Quality: delta.QualityLive,
	}
}

// #region load-tests
func TestFirstLoadUsesScenarioDefaults(t *testing.T) {
	h := newHarness(t)
	s := h.store
	if !s.Loaded() {
		t.Fatal("expected loaded store")
	}
	if s.Scenario() != persist.DefaultScenario {
		t.Fatalf("expected default scenario, got %s", s.Scenario())
	}
	want := metric.Snapshot{Load: 56, Readiness: 68, Consistency: 64}
	if s.Metrics() != want {
		t.Fatalf("expected %v, got %v", want, s.Metrics())
	}
	if s.DataIssue() != nil {
		t.Fatalf("unexpected data issue: %+v", s.DataIssue())
	}
	if got := s.SessionScreen().Kind; got != ScreenEmpty {
		t.Fatalf("expected empty session screen, got %s", got)
	}
	if got := s.HealthScreen().Kind; got != ScreenReady {
		t.Fatalf("expected ready health screen, got %s", got)
	}
}

func TestUnloadedScreensAreLoading(t *testing.T) {
	s := New(Options{Adapter: persist.NewAdapter(nil, persist.Options{})})
	if s.HealthScreen().Kind != ScreenLoading || s.SessionScreen().Kind != ScreenLoading {
		t.Fatal("expected loading screens before Load")
	}
}

func TestStateSurvivesReload(t *testing.T) {
	h := newHarness(t)
	h.store.SelectScenario(ctx, scenario.Recovery)
	h.store.StartSession(ctx, scenario.SleepDownshift, "test")
	h.store.SaveInsight(ctx, "Evening walks help")

	h2 := newHarnessOn(t, h.kv)
	if h2.store.Scenario() != scenario.Recovery {
		t.Fatalf("expected recovery after reload, got %s", h2.store.Scenario())
	}
	if h2.store.ActiveSession() == nil {
		t.Fatal("expected active session after reload")
	}
	if len(h2.store.Insights()) != 1 {
		t.Fatalf("expected 1 insight, got %d", len(h2.store.Insights()))
	}
}
// #endregion load-tests

// #region session-tests
func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	s := h.store
	start := s.Metrics()

	if d := s.StartSession(ctx, scenario.CalmNow, "recommendation"); !d.Applied() {
		t.Fatalf("expected start applied, got %+v", d)
	}
	if d := s.StartSession(ctx, scenario.FocusPrep, "library"); d.Applied() {
		t.Fatal("expected second start to be rejected")
	}
	if d := s.Tick(ctx); d.Applied() {
		t.Fatal("expected tick no-op before planned duration")
	}

	h.clock.Advance(2 * time.Minute)
	if d := s.Tick(ctx); !d.Applied() {
		t.Fatalf("expected tick to finish routine, got %+v", d)
	}
	if st := s.ActiveSession().State; st != session.AwaitingCheckIn {
		t.Fatalf("expected awaitingCheckIn, got %s", st)
	}

	day := s.DemoDay()
	if d := s.CompleteSession(ctx, better(4)); !d.Applied() {
		t.Fatalf("expected complete applied, got %+v", d)
	}
	want := start.Apply(metric.Delta{Load: -8, Readiness: 8, Consistency: 1})
	if s.Metrics() != want {
		t.Fatalf("expected %v, got %v", want, s.Metrics())
	}
	if s.DemoDay() != day+1 {
		t.Fatalf("expected day %d, got %d", day+1, s.DemoDay())
	}
	if s.ActiveSession() != nil {
		t.Fatal("expected no active session")
	}
	hist := s.Sessions()
	if len(hist) != 1 || hist[0].State != session.Completed || hist[0].Outcome == nil {
		t.Fatalf("unexpected history: %+v", hist)
	}
	if h.sink.count(analytics.EventSessionOutcomeRecorded) != 1 {
		t.Fatal("expected outcome event")
	}
	if s.SessionScreen().Kind != ScreenReady {
		t.Fatal("expected ready session screen")
	}
}

func TestCompleteFromInProgressAutoTransitions(t *testing.T) {
	h := newHarness(t)
	h.store.StartSession(ctx, scenario.FocusPrep, "test")
	if d := h.store.CompleteSession(ctx, better(2)); !d.Applied() {
		t.Fatalf("expected complete applied, got %+v", d)
	}
	if got := h.store.Sessions()[0].RoutineCompletedAt; got == nil {
		t.Fatal("expected routine completion to be stamped")
	}
}

func TestCancelAppliesPenalty(t *testing.T) {
	h := newHarness(t)
	s := h.store
	start := s.Metrics()
	s.StartSession(ctx, scenario.CalmNow, "test")
	if d := s.CancelSession(ctx); !d.Applied() {
		t.Fatalf("expected cancel applied, got %+v", d)
	}
	want := start.Apply(metric.Delta{Load: 1, Readiness: -1, Consistency: -1})
	if s.Metrics() != want {
		t.Fatalf("expected %v, got %v", want, s.Metrics())
	}
	if got := s.Sessions()[0].State; got != session.Cancelled {
		t.Fatalf("expected cancelled, got %s", got)
	}
	if d := s.CancelSession(ctx); d.Applied() {
		t.Fatal("expected second cancel to be a no-op")
	}
	if d := s.CompleteSession(ctx, better(3)); d.Applied() {
		t.Fatal("expected complete without session to be a no-op")
	}
	if s.Metrics() != want {
		t.Fatal("no-op intents must not change metrics")
	}
}

func TestUnknownPresetRejected(t *testing.T) {
	h := newHarness(t)
	if d := h.store.StartSession(ctx, "breathwork", "test"); d.Applied() {
		t.Fatal("expected unknown preset to be rejected")
	}
}

func TestUpsellFiresOnce(t *testing.T) {
	h := newHarness(t)
	s := h.store
	s.StartSession(ctx, scenario.CalmNow, "test")
	s.CompleteSession(ctx, better(3))
	if !s.UpsellPending() {
		t.Fatal("expected upsell after first completion")
	}
	if d := s.DismissUpsell(ctx); !d.Applied() {
		t.Fatal("expected dismiss applied")
	}
	s.StartSession(ctx, scenario.CalmNow, "test")
	s.CompleteSession(ctx, better(3))
	if s.UpsellPending() {
		t.Fatal("upsell must fire at most once")
	}

	h2 := newHarnessOn(t, h.kv)
	h2.store.StartSession(ctx, scenario.CalmNow, "test")
	h2.store.CompleteSession(ctx, better(3))
	if h2.store.UpsellPending() {
		t.Fatal("seen flag must survive reload")
	}
	if h.sink.count(analytics.EventUpsellShown) != 1 {
		t.Fatalf("expected one upsell event, got %d", h.sink.count(analytics.EventUpsellShown))
	}
}
// #endregion session-tests

// #region experiment-tests
func TestSingleActiveExperiment(t *testing.T) {
	h := newHarness(t)
	s := h.store
	if d := s.StartExperiment(ctx, "morning-light"); !d.Applied() {
		t.Fatalf("expected start applied, got %+v", d)
	}
	s.LogExperimentDay(ctx)
	if d := s.StartExperiment(ctx, "fixed-wind-down"); !d.Applied() {
		t.Fatalf("expected second start applied, got %+v", d)
	}
	active := 0
	for _, e := range s.Experiments() {
		if e.Status == experiment.Active {
			active++
		}
		if e.ID == "morning-light" {
			if e.Status != experiment.Planned || e.CheckInDaysCompleted != 0 || e.StartedAt != nil {
				t.Fatalf("expected first experiment reverted with progress cleared, got %+v", e)
			}
		}
	}
	if active != 1 {
		t.Fatalf("expected exactly one active experiment, got %d", active)
	}
}

func TestExperimentLogAndComplete(t *testing.T) {
	h := newHarness(t)
	s := h.store
	s.StartExperiment(ctx, "morning-light")
	day := s.DemoDay()
	before := s.Metrics()
	if d := s.LogExperimentDay(ctx); !d.Applied() {
		t.Fatalf("expected log applied, got %+v", d)
	}
	if s.DemoDay() != day+1 {
		t.Fatal("expected day to advance on log")
	}
	if want := before.Apply(delta.ExperimentCheckInDelta(metric.AxisReadiness)); s.Metrics() != want {
		t.Fatalf("expected %v, got %v", want, s.Metrics())
	}

	if d := s.CompleteExperiment(ctx, 9, "mornings felt lighter"); !d.Applied() {
		t.Fatalf("expected complete applied, got %+v", d)
	}
	var done experiment.Experiment
	for _, e := range s.Experiments() {
		if e.ID == "morning-light" {
			done = e
		}
	}
	if done.Status != experiment.Completed || done.Result == nil {
		t.Fatalf("expected completed with result, got %+v", done)
	}
	if done.Result.PerceivedChange != 5 {
		t.Fatalf("expected perceived change clamped to 5, got %d", done.Result.PerceivedChange)
	}
	if d := s.LogExperimentDay(ctx); d.Applied() {
		t.Fatal("expected log without active experiment to be a no-op")
	}
	if d := s.EditExperimentSummary(ctx, "morning-light", "Worth keeping."); !d.Applied() {
		t.Fatal("expected summary edit applied")
	}
	if d := s.EditExperimentSummary(ctx, "nope", "x"); d.Applied() {
		t.Fatal("expected edit of unknown experiment to be a no-op")
	}
}

func TestStartUnknownExperiment(t *testing.T) {
	h := newHarness(t)
	if d := h.store.StartExperiment(ctx, "missing"); d.Applied() {
		t.Fatal("expected unknown experiment to be a no-op")
	}
}
// #endregion experiment-tests

// #region journal-tests
func TestHighStressSignalsRecommendCalm(t *testing.T) {
	h := newHarness(t)
	s := h.store
	s.SelectScenario(ctx, scenario.HighStress)
	for i := 0; i < 3; i++ {
		s.SaveReflection(ctx, "Feeling stressed before the review")
	}
	if got := s.Signals().Stress; got != 3 {
		t.Fatalf("expected 3 stress signals, got %d", got)
	}
	if rec := s.Recommendation(); rec.Preset != scenario.CalmNow {
		t.Fatalf("expected calmNow, got %s", rec.Preset)
	}
	if len(s.RankedPresets()) != len(scenario.PresetOrder) {
		t.Fatal("expected every preset ranked")
	}
}

func TestSelectScenarioResets(t *testing.T) {
	h := newHarness(t)
	s := h.store
	s.StartSession(ctx, scenario.CalmNow, "test")
	s.CompleteSession(ctx, better(3))
	s.StartExperiment(ctx, "morning-light")
	s.SaveInsight(ctx, "keep")

	s.SelectScenario(ctx, scenario.HighStress)
	if len(s.Sessions()) != 0 || s.ActiveSession() != nil {
		t.Fatal("expected sessions cleared")
	}
	if experiment.ActiveIndex(s.Experiments()) >= 0 {
		t.Fatal("expected no active experiment")
	}
	if s.Metrics() != (metric.Snapshot{Load: 78, Readiness: 44, Consistency: 52}) {
		t.Fatalf("expected high-stress baseline, got %v", s.Metrics())
	}
	if s.DemoDay() != 3 {
		t.Fatalf("expected day 3, got %d", s.DemoDay())
	}
	if len(s.Events()) != 1 {
		t.Fatalf("expected only the scenario event, got %d", len(s.Events()))
	}
	if len(s.Insights()) != 1 {
		t.Fatal("insights are kept across scenarios")
	}
	if d := s.SelectScenario(ctx, "weekend"); d.Applied() {
		t.Fatal("expected unknown scenario to be a no-op")
	}
}

func TestCheckInAndDeltaSince(t *testing.T) {
	h := newHarness(t)
	s := h.store
	if d := s.SaveCheckIn(ctx, 200, "long day"); !d.Applied() {
		t.Fatal("expected check-in applied")
	}
	// 56 + (96-56)/2
	if got := s.Metrics().Load; got != 76 {
		t.Fatalf("expected load 76, got %d", got)
	}
	s.StartSession(ctx, scenario.CalmNow, "test")
	s.CompleteSession(ctx, better(1))
	d, ok := s.DeltaSinceCheckIn()
	if !ok {
		t.Fatal("expected delta since check-in")
	}
	if d != (metric.Delta{Load: -2, Readiness: 2, Consistency: 1}) {
		t.Fatalf("unexpected delta %v", d)
	}
}

func TestFastForward(t *testing.T) {
	h := newHarness(t)
	s := h.store
	s.SelectScenario(ctx, scenario.HighStress)
	if d := s.FastForward(ctx, 2); !d.Applied() {
		t.Fatal("expected fast-forward applied")
	}
	if s.Metrics() != (metric.Snapshot{Load: 82, Readiness: 41, Consistency: 50}) {
		t.Fatalf("unexpected metrics %v", s.Metrics())
	}
	if s.DemoDay() != 5 {
		t.Fatalf("expected day 5, got %d", s.DemoDay())
	}
	if d := s.FastForward(ctx, 0); d.Applied() {
		t.Fatal("expected zero days to be a no-op")
	}
}

func TestInsightsAndProgress(t *testing.T) {
	h := newHarness(t)
	s := h.store
	s.SaveInsight(ctx, "Breathing helps")
	if d := s.SaveInsight(ctx, "breathing HELPS"); d.Applied() {
		t.Fatal("expected duplicate insight ignored")
	}
	for i := 0; i < 10; i++ {
		s.AdvanceGuidedPath(ctx)
	}
	if s.GuidedStep() != persist.MaxGuidedStep {
		t.Fatalf("expected guided step capped at %d, got %d", persist.MaxGuidedStep, s.GuidedStep())
	}
	s.ResetGuidedPath(ctx)
	if s.GuidedStep() != 0 {
		t.Fatal("expected guided path reset")
	}
	s.SetOnboardingStep(ctx, 2)
	s.MarkKPIReviewed(ctx)

	h2 := newHarnessOn(t, h.kv)
	if h2.store.OnboardingStep() != 2 {
		t.Fatalf("expected onboarding step 2, got %d", h2.store.OnboardingStep())
	}
	if h2.store.KPIReviewedAt() == nil || !h2.store.KPIReviewedAt().Equal(t0) {
		t.Fatal("expected review time persisted")
	}
}
// #endregion journal-tests

// #region health-tests
func TestHealthIntents(t *testing.T) {
	h := newHarness(t)
	s := h.store
	id := s.Health().Episodes[0].ID
	note := "deadline"
	if d := s.SaveEpisodeContext(ctx, id, health.EpisodeContext{Note: &note}); !d.Applied() {
		t.Fatal("expected episode context applied")
	}
	if d := s.SaveEpisodeContext(ctx, "missing", health.EpisodeContext{Note: &note}); d.Applied() {
		t.Fatal("expected unknown episode to be a no-op")
	}

	s.DeleteDerivedHealth(ctx)
	if got := s.HealthScreen(); got.Kind != ScreenEmpty || got.Info == "" {
		t.Fatalf("expected empty health screen with info, got %+v", got)
	}
	s.RebuildHealth(ctx)
	if s.HealthScreen().Kind != ScreenReady {
		t.Fatal("expected ready after rebuild")
	}
	s.SetHealthConnected(ctx, false)
	if s.HealthScreen().Kind != ScreenEmpty {
		t.Fatal("expected empty while disconnected")
	}
	if d := s.SetHealthPermission(ctx, health.SignalWristTemperature, health.Granted); d.Applied() {
		t.Fatal("expected unsupported permission unchanged")
	}
}
// #endregion health-tests

// #region repair-tests
func TestCorruptHistoryRepair(t *testing.T) {
	h := newHarness(t)
	h.store.StartSession(ctx, scenario.CalmNow, "test")
	h.store.CompleteSession(ctx, better(3))
	metrics := h.store.Metrics()

	adapter := persist.NewAdapter(h.kv, persist.Options{Namespace: "test", Account: "tester"})
	h.kv.Set(ctx, adapter.StorageKey(persist.KeySessionHistory), []byte("\x00garbage"))

	h2 := newHarnessOn(t, h.kv)
	s := h2.store
	if s.DataIssue() == nil {
		t.Fatal("expected data issue")
	}
	if len(s.Sessions()) != 0 {
		t.Fatal("expected empty history fallback")
	}
	if s.Metrics() != metrics {
		t.Fatalf("expected metrics to load from their own key, got %v", s.Metrics())
	}
	if s.SessionScreen().Kind != ScreenError {
		t.Fatal("expected error session screen")
	}

	if d := s.Repair(ctx); !d.Applied() {
		t.Fatalf("expected repair applied, got %+v", d)
	}
	if s.DataIssue() != nil {
		t.Fatal("expected issue cleared")
	}
	if d := s.Repair(ctx); d.Applied() {
		t.Fatal("expected second repair to be a no-op")
	}

	h3 := newHarnessOn(t, h.kv)
	if h3.store.DataIssue() != nil {
		t.Fatal("expected clean load after repair")
	}
}
// #endregion repair-tests

// #region audit-tests
func TestIntentsAreAudited(t *testing.T) {
	h := newHarness(t)
	h.store.StartSession(ctx, scenario.CalmNow, "test")
	h.store.StartSession(ctx, scenario.CalmNow, "test")
	h.store.Tick(ctx)

	if len(h.audit.entries) != 2 {
		t.Fatalf("expected 2 audit entries (idle ticks are not audited), got %d", len(h.audit.entries))
	}
	if h.audit.entries[0].Decision != "applied" || h.audit.entries[1].Decision != "no_op" {
		t.Fatalf("unexpected decisions: %+v", h.audit.entries)
	}
	if h.audit.entries[0].Metrics == "" {
		t.Fatal("expected metrics recorded")
	}
}
// #endregion audit-tests
