package health

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

var now = time.Date(2026, 3, 4, 18, 0, 0, 0, time.UTC)

func inputs(s scenario.Scenario, m metric.Snapshot, day int) Inputs {
	return Inputs{Scenario: s, DemoDay: day, Metrics: m, Now: now}
}

var (
	highStressMetrics = metric.Snapshot{Load: 78, Readiness: 44, Consistency: 52}
	balancedMetrics   = metric.Snapshot{Load: 56, Readiness: 68, Consistency: 64}
)

// #region quality-tests

func TestQualityHighStressBaseline(t *testing.T) {
	q := Quality(inputs(scenario.HighStress, highStressMetrics, 3))
	if q.SleepCoverage != 65 || q.HeartRateDensity != 72 || q.HRVAvailability != 58 || q.WatchWear != 70 {
		t.Fatalf("unexpected sub-scores: %+v", q)
	}
	if q.Score != 66 {
		t.Fatalf("expected score 66, got %d", q.Score)
	}
	if q.ActionHint == "" {
		t.Fatal("expected an action hint")
	}
}

func TestQualityBalancedBaseline(t *testing.T) {
	q := Quality(inputs(scenario.Balanced, balancedMetrics, 9))
	if q.SleepCoverage != 86 {
		t.Fatalf("expected sleep coverage 86, got %d", q.SleepCoverage)
	}
	if q.Score != 83 {
		t.Fatalf("expected score 83, got %d", q.Score)
	}
}

func TestQualityStaysInBands(t *testing.T) {
	in := Inputs{
		Scenario:          scenario.Balanced,
		DemoDay:           400,
		Metrics:           metric.Snapshot{Load: 20, Readiness: 98, Consistency: 99},
		CompletedSessions: 50,
		Adherence:         100,
		Now:               now,
	}
	q := Quality(in)
	if q.SleepCoverage > SleepCoverageBand.Max || q.HeartRateDensity > HeartRateDensityBand.Max ||
		q.HRVAvailability > HRVAvailabilityBand.Max || q.WatchWear > WatchWearBand.Max {
		t.Fatalf("sub-score above band: %+v", q)
	}
	if q.Score < strongScore {
		t.Fatalf("expected a strong score, got %d", q.Score)
	}

	in.Metrics = metric.Snapshot{Load: 96, Readiness: 8, Consistency: 10}
	in.Scenario = scenario.HighStress
	in.DemoDay, in.CompletedSessions, in.Adherence = 0, 0, 0
	q = Quality(in)
	if q.WatchWear != 62 {
		t.Fatalf("expected wear penalty to 62, got %d", q.WatchWear)
	}
	if q.HRVAvailability != 52 {
		t.Fatalf("expected hrv penalty to 52, got %d", q.HRVAvailability)
	}
}

func TestWeightedScoreWeights(t *testing.T) {
	if got := WeightedScore(100, 100, 100, 100); got != 100 {
		t.Fatalf("weights should sum to 1, got %d", got)
	}
	if got := WeightedScore(100, 0, 0, 0); got != 34 {
		t.Fatalf("expected 34, got %d", got)
	}
}

// #endregion quality-tests

// #region seed-tests

func TestSeedIsDeterministic(t *testing.T) {
	a := Seed(inputs(scenario.HighStress, highStressMetrics, 3))
	b := Seed(inputs(scenario.HighStress, highStressMetrics, 3))
	if len(a.Episodes) != 3 {
		t.Fatalf("expected 3 episodes, got %d", len(a.Episodes))
	}
	for i := range a.Episodes {
		if a.Episodes[i].ID != b.Episodes[i].ID {
			t.Fatalf("episode %d id differs: %s vs %s", i, a.Episodes[i].ID, b.Episodes[i].ID)
		}
	}
	if !a.Episodes[0].Start.After(a.Episodes[1].Start) {
		t.Fatal("expected newest episode first")
	}
	if !a.Connected || a.Sync.LastSyncAt == nil {
		t.Fatal("expected seeded profile to be connected and synced")
	}
}

func TestSeedPermissions(t *testing.T) {
	p := Seed(inputs(scenario.Recovery, metric.Snapshot{Load: 48, Readiness: 58, Consistency: 71}, 16))
	if len(p.Permissions) != len(SignalTypes) {
		t.Fatalf("expected %d permissions, got %d", len(SignalTypes), len(p.Permissions))
	}
	statuses := map[SignalType]PermissionStatus{}
	for _, perm := range p.Permissions {
		statuses[perm.Signal] = perm.Status
	}
	if statuses[SignalWristTemperature] != Unsupported {
		t.Fatalf("expected wrist temperature unsupported, got %s", statuses[SignalWristTemperature])
	}
	if statuses[SignalMindfulMinutes] != Missing {
		t.Fatalf("expected mindful minutes missing, got %s", statuses[SignalMindfulMinutes])
	}
	if statuses[SignalHRV] != Granted {
		t.Fatalf("expected hrv granted, got %s", statuses[SignalHRV])
	}
}

// #endregion seed-tests

// #region timeline-tests

func TestTimelineSegments(t *testing.T) {
	p := Seed(inputs(scenario.HighStress, highStressMetrics, 3))
	if len(p.Timeline) != TimelineSegments {
		t.Fatalf("expected %d segments, got %d", TimelineSegments, len(p.Timeline))
	}
	want := map[int]SegmentState{
		0:  Stable,
		3:  Activated,
		4:  Recovering,
		9:  Stable,
		10: Activated,
		11: Recovering,
	}
	for idx, state := range want {
		if got := p.Timeline[idx].State; got != state {
			t.Fatalf("segment %d: expected %s, got %s", idx, state, got)
		}
	}
	if !p.Timeline[TimelineSegments-1].End.Equal(now) {
		t.Fatalf("expected last segment to end at now, got %s", p.Timeline[TimelineSegments-1].End)
	}
}

func TestTimelineEmptyIsStable(t *testing.T) {
	for _, seg := range Timeline(nil, now) {
		if seg.State != Stable {
			t.Fatalf("expected stable, got %s", seg.State)
		}
	}
}

// #endregion timeline-tests

// #region refresh-tests

func TestRefreshExtendsAfterQuietPeriod(t *testing.T) {
	in := inputs(scenario.Balanced, balancedMetrics, 9)
	p := Seed(in)
	if len(p.Episodes) != 2 {
		t.Fatalf("expected 2 seeded episodes, got %d", len(p.Episodes))
	}
	p = Refresh(p, in)
	if len(p.Episodes) != 3 {
		t.Fatalf("expected extension to 3 episodes, got %d", len(p.Episodes))
	}
	first := p.Episodes[0]
	if !first.End.Equal(now.Add(-10 * time.Minute)) {
		t.Fatalf("expected new episode to end 10m ago, got %s", first.End)
	}
	if first.Intensity != 0.43 {
		t.Fatalf("expected intensity 0.43, got %v", first.Intensity)
	}
	p = Refresh(p, in)
	if len(p.Episodes) != 3 {
		t.Fatalf("expected no further extension, got %d", len(p.Episodes))
	}
}

func TestRefreshCapsEpisodes(t *testing.T) {
	in := inputs(scenario.HighStress, highStressMetrics, 3)
	p := Seed(in)
	for i := 0; i < 20; i++ {
		in.Now = in.Now.Add(4 * time.Hour)
		p = Refresh(p, in)
	}
	if len(p.Episodes) != MaxEpisodes {
		t.Fatalf("expected %d episodes, got %d", MaxEpisodes, len(p.Episodes))
	}
}

func TestRefreshDisconnectedFreezesSync(t *testing.T) {
	in := inputs(scenario.Balanced, balancedMetrics, 9)
	p := Seed(in)
	p.Connected = false
	synced := *p.Sync.LastSyncAt
	in.Now = in.Now.Add(6 * time.Hour)
	p = Refresh(p, in)
	if !p.Sync.LastSyncAt.Equal(synced) {
		t.Fatalf("expected sync time frozen at %s, got %s", synced, p.Sync.LastSyncAt)
	}
	if len(p.Episodes) != 2 {
		t.Fatalf("expected no extension while disconnected, got %d", len(p.Episodes))
	}
}

func TestRefreshEmptyStaysEmpty(t *testing.T) {
	in := inputs(scenario.Balanced, balancedMetrics, 9)
	p := DeleteDerived(Seed(in))
	p = Refresh(p, in)
	if len(p.Episodes) != 0 {
		t.Fatalf("expected no episodes after clear, got %d", len(p.Episodes))
	}
}

// #endregion refresh-tests

// #region reset-tests

func TestDeleteDerivedFloors(t *testing.T) {
	p := DeleteDerived(Seed(inputs(scenario.HighStress, highStressMetrics, 3)))
	if p.Episodes != nil || p.Timeline != nil {
		t.Fatal("expected episodes and timeline cleared")
	}
	q := p.Quality
	if q.SleepCoverage != 42 || q.HeartRateDensity != 45 || q.HRVAvailability != 38 || q.WatchWear != 40 {
		t.Fatalf("expected floors, got %+v", q)
	}
	if len(p.Permissions) != len(SignalTypes) {
		t.Fatal("expected permissions untouched")
	}
}

func TestRebuildPreservesPermissions(t *testing.T) {
	in := inputs(scenario.HighStress, highStressMetrics, 3)
	p := Seed(in)
	p, ok := SetPermission(p, SignalMindfulMinutes, Granted)
	if !ok {
		t.Fatal("expected permission change")
	}
	p = DeleteDerived(p)
	p = Rebuild(p, in)
	if len(p.Episodes) != 3 {
		t.Fatalf("expected reseeded episodes, got %d", len(p.Episodes))
	}
	for _, perm := range p.Permissions {
		if perm.Signal == SignalMindfulMinutes && perm.Status != Granted {
			t.Fatalf("expected mindful minutes to stay granted, got %s", perm.Status)
		}
	}
}

func TestSetPermissionUnsupported(t *testing.T) {
	p := Seed(inputs(scenario.Balanced, balancedMetrics, 9))
	if _, ok := SetPermission(p, SignalWristTemperature, Granted); ok {
		t.Fatal("expected unsupported signal to stay unsupported")
	}
}

// #endregion reset-tests

// #region context-tests

func TestApplyEpisodeContext(t *testing.T) {
	p := Seed(inputs(scenario.HighStress, highStressMetrics, 3))
	id := p.Episodes[1].ID
	note := "  back-to-back meetings "
	attr := AttributionAdjusted
	p, ok := ApplyEpisodeContext(p, id, EpisodeContext{Tags: []string{"Meetings", "meetings", " "}, Note: &note, Attribution: &attr})
	if !ok {
		t.Fatal("expected episode to be found")
	}
	e := p.Episodes[1]
	if len(e.Tags) != 1 || e.Tags[0] != "meetings" {
		t.Fatalf("expected deduped tags, got %v", e.Tags)
	}
	if e.Note != "back-to-back meetings" {
		t.Fatalf("expected trimmed note, got %q", e.Note)
	}
	if e.Attribution != AttributionAdjusted {
		t.Fatalf("expected adjusted attribution, got %s", e.Attribution)
	}

	p, _ = ApplyEpisodeContext(p, id, EpisodeContext{Tags: []string{"travel"}})
	if len(p.Episodes[1].Tags) != 2 || p.Episodes[1].Note == "" {
		t.Fatalf("expected merge to keep note and append tag, got %+v", p.Episodes[1])
	}
}

func TestApplyEpisodeContextUnknown(t *testing.T) {
	p := Seed(inputs(scenario.Balanced, balancedMetrics, 9))
	if _, ok := ApplyEpisodeContext(p, "missing", EpisodeContext{}); ok {
		t.Fatal("expected unknown id to report false")
	}
}

// #endregion context-tests
