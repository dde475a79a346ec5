package experiment

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

// #region construct
// FromTemplate builds a planned experiment from catalog text.
func FromTemplate(t scenario.ExperimentTemplate) Experiment {
	return Experiment{
		ID:           t.ID,
		Title:        t.Title,
		Hypothesis:   t.Hypothesis,
		FocusMetric:  t.FocusMetric,
		Rationale:    t.Rationale,
		DurationDays: t.DurationDays,
		Status:       Planned,
	}
}

// Defaults builds the planned experiment list for a profile.
func Defaults(p scenario.Profile) []Experiment {
	out := make([]Experiment, 0, len(p.Experiments))
	for _, t := range p.Experiments {
		out = append(out, FromTemplate(t))
	}
	return out
}

// #endregion construct

// #region list-ops
// Find returns the index of id, or -1.
func Find(list []Experiment, id string) int {
	for i := range list {
		if list[i].ID == id {
			return i
		}
	}
	return -1
}

// ActiveIndex returns the index of the active experiment, or -1.
func ActiveIndex(list []Experiment) int {
	for i := range list {
		if list[i].Status == Active {
			return i
		}
	}
	return -1
}

// Start activates id and reverts any other active experiment to planned with its
// progress cleared. Only planned experiments can start.
func Start(list []Experiment, id string, now time.Time) bool {
	idx := Find(list, id)
	if idx < 0 || list[idx].Status != Planned {
		return false
	}
	for i := range list {
		if i != idx && list[i].Status == Active {
			list[i].resetProgress()
			list[i].Status = Planned
		}
	}
	e := &list[idx]
	e.resetProgress()
	started := now
	end := now
	if e.DurationDays > 1 {
		end = now.AddDate(0, 0, e.DurationDays-1)
	}
	e.Status = Active
	e.StartedAt = &started
	e.TargetEndDate = &end
	return true
}

func (e *Experiment) resetProgress() {
	e.StartedAt = nil
	e.TargetEndDate = nil
	e.EndedAt = nil
	e.CheckInDaysCompleted = 0
	e.CheckInLog = nil
	e.Result = nil
}

// #endregion list-ops

// #region transitions
// LogDay records one daily check-in, capped at DurationDays.
func (e *Experiment) LogDay(now time.Time) bool {
	if e.Status != Active {
		return false
	}
	if e.CheckInDaysCompleted < e.DurationDays {
		e.CheckInDaysCompleted++
	}
	e.CheckInLog = append(e.CheckInLog, now)
	return true
}

// Complete closes an active trial with a clamped perceived change and a templated
// summary. note is appended to the summary when non-empty.
func (e *Experiment) Complete(perceivedChange int, note, scenarioTitle string, now time.Time) bool {
	if e.Status != Active {
		return false
	}
	pc := delta.ClampPerceivedChange(perceivedChange)
	ended := now
	e.Status = Completed
	e.EndedAt = &ended
	e.Result = &Result{
		PerceivedChange: pc,
		Summary:         e.summary(scenarioTitle, pc, note),
	}
	return true
}

// EditSummary replaces the summary of a completed trial.
func (e *Experiment) EditSummary(text string) bool {
	text = strings.TrimSpace(text)
	if e.Status != Completed || e.Result == nil || text == "" {
		return false
	}
	e.Result.Summary = text
	e.Result.Edited = true
	return true
}

func (e *Experiment) summary(scenarioTitle string, pc int, note string) string {
	s := fmt.Sprintf("%s: %s finished at %d%% adherence with %s trend.",
		scenarioTitle, e.Title, e.AdherencePercent(time.Time{}), TrendWord(pc))
	if n := strings.TrimSpace(note); n != "" {
		s += " " + n
	}
	return s
}

// TrendWord describes the sign of a perceived change.
func TrendWord(pc int) string {
	switch {
	case pc > 0:
		return "an improving"
	case pc < 0:
		return "a declining"
	}
	return "a steady"
}

// #endregion transitions

// #region adherence
// AdherencePercent is the share of expected check-ins logged, rounded and clamped
// to [0,100]. While active the expectation grows one day per calendar day since
// start, inclusive of the start day.
func (e Experiment) AdherencePercent(now time.Time) int {
	switch e.Status {
	case Active:
		if e.StartedAt == nil {
			return 0
		}
		elapsed := calendarDaysBetween(*e.StartedAt, now) + 1
		return percent(e.CheckInDaysCompleted, min(e.DurationDays, elapsed))
	case Completed:
		return percent(e.CheckInDaysCompleted, e.DurationDays)
	}
	return 0
}

func percent(done, expected int) int {
	if expected <= 0 {
		return 0
	}
	p := int(math.Round(float64(done) / float64(expected) * 100))
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}

// calendarDaysBetween counts midnights crossed from a to b in a's location.
func calendarDaysBetween(a, b time.Time) int {
	loc := a.Location()
	b = b.In(loc)
	a0 := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, loc)
	b0 := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, loc)
	return int(math.Round(b0.Sub(a0).Hours() / 24))
}

// #endregion adherence
