package recommend

import (
	"fmt"
	"math"
	"sort"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
)

// #region engine
// Engine selects and ranks regulation presets.
type Engine struct {
	config Config
}

// NewEngine creates an engine with the given tables.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// #endregion engine

// #region decision-tree
// rule is one ordered branch of a scenario decision tree. The last rule of each
// tree has a nil when and always matches.
type rule struct {
	branch string
	when   func(in Input) bool
	preset scenario.PresetID
	what   string
	why    func(in Input) string
}

var trees = map[scenario.Scenario][]rule{
	scenario.HighStress: {
		{
			branch: "acute-load",
			when:   func(in Input) bool { return in.Metrics.Load >= 78 || in.Signals.Stress >= 3 },
			preset: scenario.CalmNow,
			what:   "Take two minutes to bring arousal down now.",
			why: func(in Input) string {
				return fmt.Sprintf("Load is %d with %d recent stress signals; a fast exhale reset works best here.", in.Metrics.Load, in.Signals.Stress)
			},
		},
		{
			branch: "focus-window",
			when:   func(in Input) bool { return in.Metrics.Readiness >= 66 && in.Metrics.Load <= 72 },
			preset: scenario.FocusPrep,
			what:   "Use this window for a focus block.",
			why: func(in Input) string {
				return fmt.Sprintf("Readiness %d is holding up while load stays at %d.", in.Metrics.Readiness, in.Metrics.Load)
			},
		},
		{
			branch: "protect-sleep",
			preset: scenario.SleepDownshift,
			what:   "Start winding down to protect tonight's sleep.",
			why: func(in Input) string {
				return fmt.Sprintf("Readiness is %d; recovery tonight matters more than output today.", in.Metrics.Readiness)
			},
		},
	},
	scenario.Balanced: {
		{
			branch: "load-spike",
			when:   func(in Input) bool { return in.Metrics.Load >= 74 || in.Signals.Stress >= 3 },
			preset: scenario.CalmNow,
			what:   "Reset before the spike carries into your next task.",
			why: func(in Input) string {
				return fmt.Sprintf("Load jumped to %d on an otherwise steady day.", in.Metrics.Load)
			},
		},
		{
			branch: "focus-window",
			when: func(in Input) bool {
				return in.Metrics.Readiness-in.Metrics.Load >= 16 && in.Metrics.Consistency >= 60
			},
			preset: scenario.FocusPrep,
			what:   "Prime a deep-work block while readiness leads load.",
			why: func(in Input) string {
				return fmt.Sprintf("Readiness leads load by %d points and consistency is %d.",
					in.Metrics.Readiness-in.Metrics.Load, in.Metrics.Consistency)
			},
		},
		{
			branch: "short-reset",
			preset: scenario.CalmNow,
			what:   "Take a short reset between tasks.",
			why: func(in Input) string {
				return "Metrics are steady; a brief reset keeps them that way."
			},
		},
	},
	scenario.Recovery: {
		{
			branch: "residual-activation",
			when:   func(in Input) bool { return in.Metrics.Load >= 70 || in.Signals.Stress >= 3 },
			preset: scenario.CalmNow,
			what:   "Settle residual activation before it eats into recovery.",
			why: func(in Input) string {
				return fmt.Sprintf("Load is %d during a recovery week.", in.Metrics.Load)
			},
		},
		{
			branch: "sleep-debt",
			when:   func(in Input) bool { return in.Metrics.Readiness < 60 || in.Signals.Caffeine >= 2 },
			preset: scenario.SleepDownshift,
			what:   "Bank extra sleep tonight with an early downshift.",
			why: func(in Input) string {
				return fmt.Sprintf("Readiness is %d with %d recent caffeine mentions.", in.Metrics.Readiness, in.Signals.Caffeine)
			},
		},
		{
			branch: "rebuild-focus",
			preset: scenario.FocusPrep,
			what:   "Energy is back; ease into a light focus block.",
			why: func(in Input) string {
				return fmt.Sprintf("Readiness %d and low load support light activation.", in.Metrics.Readiness)
			},
		},
	},
}

// Recommend walks the scenario decision tree and returns the first matching branch
// with its 2-hour load projection.
func (e *Engine) Recommend(in Input) Recommendation {
	tree, ok := trees[in.Profile.Scenario]
	if !ok {
		tree = trees[scenario.Balanced]
	}
	chosen := tree[len(tree)-1]
	for _, r := range tree {
		if r.when == nil || r.when(in) {
			chosen = r
			break
		}
	}
	confidence := e.Confidence(in)
	projected, load := e.project(in, chosen.preset, confidence)
	return Recommendation{
		Preset:         chosen.preset,
		Branch:         chosen.branch,
		What:           chosen.what,
		Why:            chosen.why(in),
		Confidence:     confidence,
		ProjectedDelta: projected,
		ProjectedLoad:  load,
		HorizonHours:   2,
	}
}

// #endregion decision-tree

// #region projection
// Confidence blends the scenario base with recent signals and completed sessions,
// rounded to two decimals.
func (e *Engine) Confidence(in Input) float64 {
	completed := 0
	for _, s := range in.Sessions {
		if s.State == session.Completed {
			completed++
		}
	}
	c := in.Profile.ConfidenceBase +
		0.02*float64(min(in.Signals.Recovery, 3)) -
		0.03*float64(min(in.Signals.NetStress(), 3)) +
		0.01*float64(min(completed, 5))
	c = math.Max(e.config.MinConfidence, math.Min(e.config.MaxConfidence, c))
	return math.Round(c*100) / 100
}

// Project returns the 2-hour load shift and resulting load for a preset.
func (e *Engine) Project(in Input, preset scenario.PresetID) (int, int) {
	return e.project(in, preset, e.Confidence(in))
}

func (e *Engine) project(in Input, preset scenario.PresetID, confidence float64) (int, int) {
	base := e.config.BaseDelta[in.Profile.Scenario][preset]
	d := base + int(math.Round((confidence-0.65)*10)) - in.Signals.NetStress()
	d = clampInt(d, e.config.ProjectionMin, e.config.ProjectionMax)
	return d, metric.LoadBounds.Clamp(in.Metrics.Load + d)
}

// #endregion projection

// #region ranking
// Rank scores every catalog preset: affinity + weight*meanReward + stateAdjustment.
// Ties keep preset declaration order.
func (e *Engine) Rank(in Input) []RankedPreset {
	rows := make([]RankedPreset, 0, len(scenario.PresetOrder))
	for _, id := range scenario.PresetOrder {
		if _, ok := in.Profile.Preset(id); !ok {
			continue
		}
		mean, n := MeanReward(in.Sessions, id)
		aff := e.config.Affinity[in.Profile.Scenario][id]
		adj := stateAdjustment(id, in.Metrics)
		rows = append(rows, RankedPreset{
			Preset:     id,
			Score:      aff + e.config.RewardWeight*mean + adj,
			Affinity:   aff,
			MeanReward: mean,
			Samples:    n,
			Adjustment: adj,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Score > rows[j].Score })
	return rows
}

// stateAdjustment keys a small bonus off live metrics. Thresholds are literal and
// intentionally independent of the clamp bounds.
func stateAdjustment(id scenario.PresetID, m metric.Snapshot) float64 {
	var adj float64
	switch id {
	case scenario.CalmNow:
		if m.Load > 70 {
			adj += 0.18
		}
		if m.Load < 45 {
			adj -= 0.05
		}
	case scenario.FocusPrep:
		if m.Readiness > 70 && m.Load < 60 {
			adj += 0.16
		}
		if m.Readiness < 50 {
			adj -= 0.08
		}
	case scenario.SleepDownshift:
		if m.Readiness < 55 {
			adj += 0.14
		}
		if m.Consistency < 40 {
			adj += 0.08
		}
	}
	return adj
}

// #endregion ranking

// #region helpers
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion helpers
