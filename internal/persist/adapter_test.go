package persist

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/experiment"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/kv"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

func newAdapter(t *testing.T) (*Adapter, *kv.Memory) {
	t.Helper()
	store := kv.NewMemory()
	return NewAdapter(store, Options{Namespace: "test", Account: "alice"}), store
}

func seeded(t *testing.T, a *Adapter) Entities {
	t.Helper()
	e := Defaults(scenario.DefaultCatalog().Profile(scenario.HighStress), now)
	e.Metrics = metric.Snapshot{Load: 70, Readiness: 50, Consistency: 60}
	s := session.Begin(scenario.CalmNow, "test", 60, now)
	s.Cancel(now)
	e.Sessions = []session.Session{s}
	require.NoError(t, a.Save(context.Background(), e, EntityKeys...))
	return e
}

func TestLoadFirstRunUsesDefaults(t *testing.T) {
	a, _ := newAdapter(t)
	e := a.Load(context.Background(), now)
	p := scenario.DefaultCatalog().Profile(DefaultScenario)

	assert.Nil(t, a.Issue())
	assert.Equal(t, DefaultScenario, e.Scenario)
	assert.Equal(t, p.Baseline, e.Metrics)
	assert.Equal(t, p.DefaultDay, e.DemoDay)
	assert.Len(t, e.Experiments, len(p.Experiments))
	assert.NotEmpty(t, e.Health.Episodes)
	assert.Empty(t, e.Sessions)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.Background()
	saved := seeded(t, a)

	got := a.Load(ctx, now)
	require.Nil(t, a.Issue())
	assert.Equal(t, scenario.HighStress, got.Scenario)
	assert.Equal(t, saved.Metrics, got.Metrics)
	require.Len(t, got.Sessions, 1)
	assert.Equal(t, session.Cancelled, got.Sessions[0].State)
	assert.Nil(t, got.Active)
}

func TestCorruptedHistoryIsIsolated(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	saved := seeded(t, a)
	require.NoError(t, store.Set(ctx, a.StorageKey(KeySessionHistory), []byte("{not json")))

	got := a.Load(ctx, now)

	assert.Empty(t, got.Sessions)
	issue := a.Issue()
	require.NotNil(t, issue)
	assert.Equal(t, KeySessionHistory, issue.Key)
	assert.Equal(t, saved.Metrics, got.Metrics)
	assert.Equal(t, len(saved.Experiments), len(got.Experiments))
	assert.Equal(t, []Key{KeySessionHistory}, a.Corrupted())
}

func TestFirstIssueWins(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	seeded(t, a)
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyMetrics), []byte("[")))
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyExperiments), []byte("nope")))

	got := a.Load(ctx, now)
	require.NotNil(t, a.Issue())
	assert.Equal(t, KeyMetrics, a.Issue().Key, "metrics load before experiments")
	assert.ElementsMatch(t, []Key{KeyMetrics, KeyExperiments}, a.Corrupted())
	assert.Equal(t, scenario.DefaultCatalog().Profile(scenario.HighStress).Baseline, got.Metrics)

	a.ClearIssue()
	assert.Nil(t, a.Issue())
	assert.Empty(t, a.Corrupted())
}

func TestNewCycleResetsIssue(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	e := seeded(t, a)
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyEvents), []byte("x")))
	a.Load(ctx, now)
	require.NotNil(t, a.Issue())

	require.NoError(t, a.Save(ctx, e, KeyEvents))
	a.Load(ctx, now)
	assert.Nil(t, a.Issue())
}

func TestLegacyValuesDecode(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	started := now.Add(-time.Hour)
	done := now.Add(-50 * time.Minute)
	legacy := []map[string]any{{
		"id":                     "old-1",
		"preset":                 "calmNow",
		"startedAt":              started,
		"plannedDurationSeconds": 0,
		"cancelledAt":            done,
		"completedAt":            done,
	}}
	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, a.StorageKey(KeySessionHistory), raw))
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyDemoDay), []byte("12")))

	got := a.Load(ctx, now)
	require.Nil(t, a.Issue())
	require.Len(t, got.Sessions, 1)
	assert.Equal(t, session.Cancelled, got.Sessions[0].State)
	assert.Equal(t, scenario.DefaultDurationSeconds, got.Sessions[0].PlannedDurationSeconds)
	assert.Equal(t, 12, got.DemoDay)
}

func TestUnknownScenarioFallsBack(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	b, _ := encode("weekend")
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyScenario), b))
	got := a.Load(ctx, now)
	assert.Equal(t, DefaultScenario, got.Scenario)
	require.NotNil(t, a.Issue())
	assert.Equal(t, KeyScenario, a.Issue().Key)
}

func TestFutureVersionIsCorrupt(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyGuidedPath), []byte(`{"version":9,"data":2}`)))
	got := a.Load(ctx, now)
	assert.Equal(t, 0, got.GuidedStep)
	assert.Equal(t, []Key{KeyGuidedPath}, a.Corrupted())
}

func TestExperimentsKeepSingleActive(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.Background()
	e := Defaults(scenario.DefaultCatalog().Profile(scenario.Balanced), now)
	for i := range e.Experiments {
		e.Experiments[i].Status = experiment.Active
		e.Experiments[i].StartedAt = &now
	}
	require.NoError(t, a.Save(ctx, e, KeyExperiments))
	got := a.Load(ctx, now)
	active := 0
	for _, x := range got.Experiments {
		if x.Status == experiment.Active {
			active++
		}
	}
	assert.Equal(t, 1, active)
}

func TestActiveSessionRoundTrip(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	s := session.Begin(scenario.FocusPrep, "test", 180, now)
	e := Entities{Active: &s}
	require.NoError(t, a.Save(ctx, e, KeyActiveSession))
	got := a.Load(ctx, now)
	require.NotNil(t, got.Active)
	assert.Equal(t, s.ID, got.Active.ID)

	e.Active = nil
	require.NoError(t, a.Save(ctx, e, KeyActiveSession))
	_, err := store.Get(ctx, a.StorageKey(KeyActiveSession))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestFinishedActiveSessionMovesToHistory(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	started := now.Add(-time.Hour)
	done := now.Add(-55 * time.Minute)
	raw, err := json.Marshal(map[string]any{
		"id":                     "left-over",
		"preset":                 "calmNow",
		"startedAt":              started,
		"plannedDurationSeconds": 120,
		"cancelledAt":            done,
		"completedAt":            done,
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyActiveSession), raw))

	got := a.Load(ctx, now)
	require.Nil(t, a.Issue())
	assert.Nil(t, got.Active)
	require.Len(t, got.Sessions, 1)
	assert.Equal(t, "left-over", got.Sessions[0].ID)
	assert.Equal(t, session.Cancelled, got.Sessions[0].State)

	_, err = store.Get(ctx, a.StorageKey(KeyActiveSession))
	assert.ErrorIs(t, err, kv.ErrNotFound, "active key cleared once settled")

	again := a.Load(ctx, now)
	assert.Len(t, again.Sessions, 1, "second load must not duplicate the session")
}

func TestFinishedActiveSessionKeepsCorruptHistory(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	s := session.Begin(scenario.CalmNow, "test", 60, now.Add(-time.Hour))
	s.Cancel(now.Add(-50 * time.Minute))
	b, err := encode(s)
	require.NoError(t, err)
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyActiveSession), b))
	require.NoError(t, store.Set(ctx, a.StorageKey(KeySessionHistory), []byte("{broken")))

	got := a.Load(ctx, now)
	require.NotNil(t, a.Issue())
	assert.Equal(t, KeySessionHistory, a.Issue().Key)
	assert.Len(t, got.Sessions, 1)

	raw, err := store.Get(ctx, a.StorageKey(KeySessionHistory))
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(raw), "corrupt history is left for repair")
}

func TestOnboardingIsPerAccount(t *testing.T) {
	store := kv.NewMemory()
	ctx := context.Background()
	alice := NewAdapter(store, Options{Namespace: "test", Account: "alice"})
	bob := NewAdapter(store, Options{Namespace: "test", Account: "bob"})
	require.NoError(t, alice.Save(ctx, Entities{Onboarding: 3}, KeyOnboarding))

	assert.Equal(t, 3, alice.Load(ctx, now).Onboarding)
	assert.Equal(t, 0, bob.Load(ctx, now).Onboarding)
	assert.True(t, strings.HasSuffix(alice.StorageKey(KeyOnboarding), ".alice"))
}

func TestOversizedAnalyticsDiscarded(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	payload := `{"version":1,"data":[{"name":"` + strings.Repeat("x", analytics.MaxBytes+1024) + `"}]}`
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyAnalytics), []byte(payload)))

	got := a.Load(ctx, now)
	assert.Empty(t, got.Analytics)
	assert.Equal(t, []Key{KeyAnalytics}, a.Corrupted())
}

func TestSaveAnalyticsCaps(t *testing.T) {
	a, _ := newAdapter(t)
	ctx := context.Background()
	events := make([]analytics.Event, analytics.MaxEvents+10)
	for i := range events {
		events[i] = analytics.Event{Name: "e", Timestamp: now}
	}
	require.NoError(t, a.SaveAnalytics(ctx, events))
	got := a.Load(ctx, now)
	assert.Len(t, got.Analytics, analytics.MaxEvents)
}

func TestInspect(t *testing.T) {
	a, store := newAdapter(t)
	ctx := context.Background()
	seeded(t, a)
	require.NoError(t, store.Set(ctx, a.StorageKey(KeyInsights), []byte("{broken")))
	require.NoError(t, store.Set(ctx, "other.key", []byte("1")))

	rows, err := a.Inspect(ctx)
	require.NoError(t, err)
	status := map[string]string{}
	for _, r := range rows {
		status[r.Key] = r.Status
	}
	assert.Equal(t, "corrupt", status[string(KeyInsights)])
	assert.Equal(t, "ok", status[string(KeyMetrics)])
	_, leaked := status["other.key"]
	assert.False(t, leaked)
}
