package health

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/google/uuid"
)

// #region scenario-seeds
type subScores struct {
	sleep, heartRate, hrv, wear int
}

var baseScores = map[scenario.Scenario]subScores{
	scenario.HighStress: {sleep: 64, heartRate: 72, hrv: 58, wear: 70},
	scenario.Balanced:   {sleep: 82, heartRate: 84, hrv: 76, wear: 86},
	scenario.Recovery:   {sleep: 78, heartRate: 80, hrv: 81, wear: 83},
}

// episodeSeed places an episode relative to now.
type episodeSeed struct {
	startBefore time.Duration
	length      time.Duration
	intensity   float64
	confidence  float64
	driver      DriverCategory
	preset      scenario.PresetID
}

var seeds = map[scenario.Scenario][]episodeSeed{
	scenario.HighStress: {
		{9 * time.Hour, 50 * time.Minute, 0.82, 0.78, DriverWorkload, scenario.CalmNow},
		{5*time.Hour + 30*time.Minute, 35 * time.Minute, 0.68, 0.71, DriverCaffeine, scenario.CalmNow},
		{2 * time.Hour, 40 * time.Minute, 0.74, 0.74, DriverSleepDebt, scenario.SleepDownshift},
	},
	scenario.Balanced: {
		{8 * time.Hour, 30 * time.Minute, 0.52, 0.66, DriverWorkload, scenario.FocusPrep},
		{3*time.Hour + 30*time.Minute, 25 * time.Minute, 0.46, 0.62, DriverCaffeine, scenario.CalmNow},
	},
	scenario.Recovery: {
		{10 * time.Hour, 40 * time.Minute, 0.48, 0.64, DriverSleepDebt, scenario.SleepDownshift},
		{4 * time.Hour, 30 * time.Minute, 0.41, 0.6, DriverPhysical, scenario.CalmNow},
	},
}

// synthesized is the per-scenario template for incrementally added episodes.
var synthesized = map[scenario.Scenario]episodeSeed{
	scenario.HighStress: {40 * time.Minute, 30 * time.Minute, 0.76, 0.72, DriverWorkload, scenario.CalmNow},
	scenario.Balanced:   {40 * time.Minute, 30 * time.Minute, 0.5, 0.64, DriverCaffeine, scenario.FocusPrep},
	scenario.Recovery:   {40 * time.Minute, 30 * time.Minute, 0.44, 0.6, DriverSleepDebt, scenario.SleepDownshift},
}

const (
	SourceLabel       = "HealthKit bridge (demo)"
	quietPeriod       = 3 * time.Hour
	recoveryWindow    = 90 * time.Minute
	importLag         = 10 * time.Minute
	strongScore       = 85
	derivedClearedMsg = "Derived data cleared. Rebuild to regenerate insights."
)

// #endregion scenario-seeds

// #region seed
// Seed generates a full profile from scratch with default permissions.
func Seed(in Inputs) Profile {
	synced := in.Now
	imported := in.Now.Add(-importLag)
	eps := seedEpisodes(in)
	return Profile{
		Connected:   true,
		Sync:        SyncSnapshot{Source: SourceLabel, LastSyncAt: &synced, LastImportAt: &imported},
		Quality:     Quality(in),
		Permissions: DefaultPermissions(),
		Timeline:    Timeline(eps, in.Now),
		Episodes:    eps,
	}
}

// DefaultPermissions is the initial checklist.
func DefaultPermissions() []Permission {
	out := make([]Permission, 0, len(SignalTypes))
	for _, s := range SignalTypes {
		status := Granted
		switch s {
		case SignalRespiratoryRate, SignalMindfulMinutes:
			status = Missing
		case SignalWristTemperature:
			status = Unsupported
		}
		out = append(out, Permission{Signal: s, Status: status})
	}
	return out
}

func seedEpisodes(in Inputs) []Episode {
	list := seeds[in.Scenario]
	out := make([]Episode, 0, len(list))
	// newest first
	for i := len(list) - 1; i >= 0; i-- {
		out = append(out, buildEpisode(in, list[i], i))
	}
	return out
}

func buildEpisode(in Inputs, s episodeSeed, idx int) Episode {
	start := in.Now.Add(-s.startBefore)
	return Episode{
		ID:                episodeID(in.Scenario, idx, start),
		Start:             start,
		End:               start.Add(s.length),
		Intensity:         s.intensity,
		Confidence:        s.confidence,
		Driver:            s.driver,
		RecommendedPreset: s.preset,
	}
}

// episodeID is deterministic for a scenario, ordinal and start time.
func episodeID(sc scenario.Scenario, idx int, start time.Time) string {
	name := fmt.Sprintf("%s/%d/%d", sc, idx, start.UnixNano())
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}

// #endregion seed

// #region refresh
// Refresh re-derives quality, extends episodes and rebuilds the timeline.
// Permissions and user annotations are preserved.
func Refresh(p Profile, in Inputs) Profile {
	p.Quality = Quality(in)
	if p.Connected {
		p.Episodes = extendEpisodes(p.Episodes, in)
		synced := in.Now
		imported := in.Now.Add(-importLag)
		p.Sync = SyncSnapshot{Source: SourceLabel, LastSyncAt: &synced, LastImportAt: &imported}
	} else if p.Sync.Source == "" {
		p.Sync.Source = SourceLabel
	}
	p.Timeline = Timeline(p.Episodes, in.Now)
	return p
}

// extendEpisodes adds one synthesized episode when every existing episode ended more
// than the quiet period ago. An empty list stays empty.
func extendEpisodes(eps []Episode, in Inputs) []Episode {
	if len(eps) == 0 {
		return eps
	}
	cutoff := in.Now.Add(-quietPeriod)
	for _, e := range eps {
		if !e.End.Before(cutoff) {
			return eps
		}
	}
	tmpl, ok := synthesized[in.Scenario]
	if !ok {
		tmpl = synthesized[scenario.Balanced]
	}
	ep := buildEpisode(in, tmpl, len(eps))
	ep.Intensity = round2(clampFloat(tmpl.intensity+float64(in.Metrics.Load-70)/200, 0.2, 0.95))
	out := make([]Episode, 0, len(eps)+1)
	out = append(out, ep)
	out = append(out, eps...)
	if len(out) > MaxEpisodes {
		out = out[:MaxEpisodes]
	}
	return out
}

// #endregion refresh

// #region quality
// Quality computes the four sub-scores and the weighted total.
func Quality(in Inputs) QualityBreakdown {
	b, ok := baseScores[in.Scenario]
	if !ok {
		b = baseScores[scenario.Balanced]
	}
	sessions := min(max(in.CompletedSessions, 0), 6)
	adherence := max(in.Adherence, 0) / 10
	m := in.Metrics

	sleep := b.sleep + adherence + min(max(in.DemoDay, 0), 14)/2
	if m.Readiness > 70 {
		sleep += 4
	}
	hr := b.heartRate + sessions
	if m.Load > 80 {
		hr -= 3
	}
	hrv := b.hrv + adherence + sessions/2
	if m.Load > 80 {
		hrv -= 6
	}
	wear := b.wear + sessions
	if m.Consistency > 70 {
		wear += 5
	}
	if m.Consistency < 40 {
		wear -= 8
	}
	return breakdown(
		SleepCoverageBand.clamp(sleep),
		HeartRateDensityBand.clamp(hr),
		HRVAvailabilityBand.clamp(hrv),
		WatchWearBand.clamp(wear),
	)
}

func breakdown(sleep, hr, hrv, wear int) QualityBreakdown {
	q := QualityBreakdown{
		SleepCoverage:    sleep,
		HeartRateDensity: hr,
		HRVAvailability:  hrv,
		WatchWear:        wear,
	}
	q.Score = WeightedScore(sleep, hr, hrv, wear)
	q.ActionHint = actionHint(q)
	return q
}

// WeightedScore combines sub-scores with the fixed weights.
func WeightedScore(sleep, hr, hrv, wear int) int {
	return int(math.Round(WeightSleepCoverage*float64(sleep) +
		WeightHeartRateDensity*float64(hr) +
		WeightHRVAvailability*float64(hrv) +
		WeightWatchWear*float64(wear)))
}

func actionHint(q QualityBreakdown) string {
	if q.Score >= strongScore {
		return "Data quality is strong; no action needed."
	}
	lowest, hint := q.SleepCoverage, "Wear your watch overnight to improve sleep coverage."
	if q.HeartRateDensity < lowest {
		lowest, hint = q.HeartRateDensity, "Keep the watch snug during the day for denser heart-rate data."
	}
	if q.HRVAvailability < lowest {
		lowest, hint = q.HRVAvailability, "Sit still for a calm-now session to capture an HRV reading."
	}
	if q.WatchWear < lowest {
		hint = "Wear the watch at least 12 hours a day."
	}
	return hint
}

func (b Band) clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// #endregion quality

// #region timeline
// Timeline buckets the trailing 12 hours. A bucket overlapping an episode is
// activated; one overlapping an episode's 90-minute aftermath is recovery.
func Timeline(eps []Episode, now time.Time) []Segment {
	windowStart := now.Add(-TimelineSegments * time.Hour)
	out := make([]Segment, 0, TimelineSegments)
	for i := 0; i < TimelineSegments; i++ {
		start := windowStart.Add(time.Duration(i) * time.Hour)
		end := start.Add(time.Hour)
		state := Stable
		for _, e := range eps {
			if overlaps(e.Start, e.End, start, end) {
				state = Activated
				break
			}
		}
		if state == Stable {
			for _, e := range eps {
				if overlaps(e.End, e.End.Add(recoveryWindow), start, end) {
					state = Recovering
					break
				}
			}
		}
		out = append(out, Segment{Start: start, End: end, State: state})
	}
	return out
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// #endregion timeline

// #region resets
// Rebuild regenerates everything from the seed but keeps existing permission grants.
func Rebuild(p Profile, in Inputs) Profile {
	fresh := Seed(in)
	if len(p.Permissions) > 0 {
		fresh.Permissions = p.Permissions
	}
	fresh.Connected = p.Connected
	if !fresh.Connected {
		fresh.Sync = p.Sync
	}
	return fresh
}

// DeleteDerived clears episodes and timeline and drops quality to its floors.
// Permissions and connection state are untouched.
func DeleteDerived(p Profile) Profile {
	p.Episodes = nil
	p.Timeline = nil
	p.Quality = breakdown(SleepCoverageBand.Min, HeartRateDensityBand.Min, HRVAvailabilityBand.Min, WatchWearBand.Min)
	p.Quality.ActionHint = derivedClearedMsg
	return p
}

// #endregion resets

// #region mutation
// ApplyEpisodeContext merges user annotations into the episode with id.
// Returns false when no episode matches.
func ApplyEpisodeContext(p Profile, id string, ctx EpisodeContext) (Profile, bool) {
	for i := range p.Episodes {
		if p.Episodes[i].ID != id {
			continue
		}
		eps := append([]Episode(nil), p.Episodes...)
		e := &eps[i]
		if ctx.Tags != nil {
			e.Tags = mergeTags(e.Tags, ctx.Tags)
		}
		if ctx.Note != nil {
			e.Note = strings.TrimSpace(*ctx.Note)
		}
		if ctx.Attribution != nil {
			e.Attribution = *ctx.Attribution
		}
		p.Episodes = eps
		return p, true
	}
	return p, false
}

// SetPermission updates one checklist row. Unsupported signals cannot be granted.
func SetPermission(p Profile, signal SignalType, status PermissionStatus) (Profile, bool) {
	for i := range p.Permissions {
		if p.Permissions[i].Signal != signal {
			continue
		}
		if p.Permissions[i].Status == Unsupported || p.Permissions[i].Status == status {
			return p, false
		}
		perms := append([]Permission(nil), p.Permissions...)
		perms[i].Status = status
		p.Permissions = perms
		return p, true
	}
	return p, false
}

func mergeTags(existing, added []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(added))
	out := make([]string, 0, len(existing)+len(added))
	for _, t := range append(append([]string(nil), existing...), added...) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// #endregion mutation

// #region helpers
func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// #endregion helpers
