package replay

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/kv"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/state"
)

// #region types

// Options configures a replay run.
type Options struct {
	Catalog *scenario.Catalog
	Logger  *logging.Logger
	Audit   state.Auditor
}

// StepResult captures the decision and observable state after one step.
type StepResult struct {
	StepID         string
	Intent         string
	Action         state.Action
	Reason         string
	Metrics        metric.Snapshot
	Recommendation scenario.PresetID
	DemoDay        int
	SessionState   session.State // empty when no session is active
}

// Mismatch is one expectation a step failed.
type Mismatch struct {
	StepID string
	Field  string
	Want   string
	Got    string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %s want %s, got %s", m.StepID, m.Field, m.Want, m.Got)
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalSteps   int
	Applied      int
	NoOps        int
	FinalMetrics metric.Snapshot
	FinalDay     int
}

// #endregion types

// #region clock
// stepClock only moves when a step asks it to.
type stepClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *stepClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type heldTimer struct{}

func (heldTimer) Stop() bool { return true }

// heldScheduler never fires; the step clock alone decides banner expiry.
type heldScheduler struct{}

func (heldScheduler) AfterFunc(time.Duration, func()) state.Timer { return heldTimer{} }

// #endregion clock

// #region replay

// Replay drives a fresh in-memory Store through every step of f.
// An unknown intent aborts the run.
func Replay(ctx context.Context, f *Fixture, opts Options) ([]StepResult, error) {
	start := f.StartTime
	if start.IsZero() {
		start = time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	}
	clock := &stepClock{t: start.UTC()}
	store := state.New(state.Options{
		Adapter: persist.NewAdapter(kv.NewMemory(), persist.Options{
			Namespace: "replay",
			Account:   "replay",
			Catalog:   opts.Catalog,
			Logger:    opts.Logger,
		}),
		Catalog:   opts.Catalog,
		Clock:     clock,
		Scheduler: heldScheduler{},
		Audit:     opts.Audit,
		Logger:    opts.Logger,
	})
	store.Load(ctx)

	results := make([]StepResult, 0, len(f.Steps))
	for i, step := range f.Steps {
		if step.AdvanceSeconds > 0 {
			clock.advance(time.Duration(step.AdvanceSeconds) * time.Second)
		}
		d, err := apply(ctx, store, step)
		if err != nil {
			return results, fmt.Errorf("step %d (%s): %w", i, step.ID, err)
		}
		r := StepResult{
			StepID:         step.ID,
			Intent:         step.Intent,
			Action:         d.Action,
			Reason:         d.Reason,
			Metrics:        store.Metrics(),
			Recommendation: store.Recommendation().Preset,
			DemoDay:        store.DemoDay(),
		}
		if a := store.ActiveSession(); a != nil {
			r.SessionState = a.State
		}
		results = append(results, r)
	}
	return results, nil
}

func apply(ctx context.Context, s *state.Store, step FixtureStep) (state.Decision, error) {
	switch step.Intent {
	case "selectScenario":
		return s.SelectScenario(ctx, step.Scenario), nil
	case "startSession":
		source := step.Source
		if source == "" {
			source = "replay"
		}
		return s.StartSession(ctx, step.Preset, source), nil
	case "tick":
		return s.Tick(ctx), nil
	case "finishSessionEarly":
		return s.FinishSessionEarly(ctx), nil
	case "cancelSession":
		return s.CancelSession(ctx), nil
	case "completeSession":
		return s.CompleteSession(ctx, step.outcome()), nil
	case "checkIn":
		return s.SaveCheckIn(ctx, step.Load, step.Text), nil
	case "reflect":
		return s.SaveReflection(ctx, step.Text), nil
	case "fastForward":
		return s.FastForward(ctx, step.Days), nil
	case "saveInsight":
		return s.SaveInsight(ctx, step.Text), nil
	case "startExperiment":
		return s.StartExperiment(ctx, step.ExperimentID), nil
	case "logExperimentDay":
		return s.LogExperimentDay(ctx), nil
	case "completeExperiment":
		return s.CompleteExperiment(ctx, step.PerceivedChange, step.Text), nil
	case "editExperimentSummary":
		return s.EditExperimentSummary(ctx, step.ExperimentID, step.Text), nil
	}
	return state.Decision{}, fmt.Errorf("unknown intent %q", step.Intent)
}

// Check compares results against the expectations in f, step by step.
func Check(f *Fixture, results []StepResult) []Mismatch {
	var out []Mismatch
	for i, step := range f.Steps {
		if step.Expect == nil {
			continue
		}
		if i >= len(results) {
			out = append(out, Mismatch{StepID: step.ID, Field: "result", Want: "present", Got: "missing"})
			continue
		}
		want, got := step.Expect, results[i]
		if want.Action != "" && want.Action != string(got.Action) {
			out = append(out, Mismatch{StepID: step.ID, Field: "action", Want: want.Action, Got: string(got.Action)})
		}
		if want.Metrics != nil && *want.Metrics != got.Metrics {
			out = append(out, Mismatch{StepID: step.ID, Field: "metrics", Want: want.Metrics.String(), Got: got.Metrics.String()})
		}
		if want.Recommendation != "" && want.Recommendation != got.Recommendation {
			out = append(out, Mismatch{StepID: step.ID, Field: "recommendation", Want: string(want.Recommendation), Got: string(got.Recommendation)})
		}
		if want.DemoDay != nil && *want.DemoDay != got.DemoDay {
			out = append(out, Mismatch{StepID: step.ID, Field: "demo_day", Want: strconv.Itoa(*want.DemoDay), Got: strconv.Itoa(got.DemoDay)})
		}
		if want.SessionState != "" && want.SessionState != got.SessionState {
			out = append(out, Mismatch{StepID: step.ID, Field: "session_state", Want: string(want.SessionState), Got: string(got.SessionState)})
		}
	}
	return out
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []StepResult) Summary {
	s := Summary{TotalSteps: len(results)}
	for _, r := range results {
		switch r.Action {
		case state.Applied:
			s.Applied++
		case state.NoOp:
			s.NoOps++
		}
	}
	if n := len(results); n > 0 {
		s.FinalMetrics = results[n-1].Metrics
		s.FinalDay = results[n-1].DemoDay
	}
	return s
}

// #endregion replay
