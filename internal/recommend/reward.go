package recommend

import (
	"fmt"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/delta"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
)

// #region reward
func directionScore(d delta.Direction) float64 {
	switch d {
	case delta.Better:
		return 1.0
	case delta.Worse:
		return -0.45
	}
	return 0.42
}

func helpfulnessScore(h delta.Helpfulness) float64 {
	switch h {
	case delta.HelpfulYes:
		return 0.42
	case delta.HelpfulNo:
		return -0.3
	}
	return 0.14
}

// Reward scores one outcome.
func Reward(o session.Outcome) float64 {
	return directionScore(o.Direction) +
		float64(o.Effect.HeartRateDownshiftBPM)/12 +
		float64(o.Effect.HRVShiftMS)/16 +
		float64(o.FeelRating-3)/3 +
		helpfulnessScore(o.Helpfulness)
}

// MeanReward averages Reward over completed sessions of one preset. Returns 0, 0
// when there are none.
func MeanReward(sessions []session.Session, preset scenario.PresetID) (float64, int) {
	var sum float64
	n := 0
	for _, s := range sessions {
		if s.Preset != preset || s.State != session.Completed || s.Outcome == nil {
			continue
		}
		sum += Reward(*s.Outcome)
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return sum / float64(n), n
}

// #endregion reward

// #region whats-working
// Summarize reports the best preset by mean reward and the completion rate.
func Summarize(sessions []session.Session) WhatsWorking {
	var out WhatsWorking
	for _, id := range scenario.PresetOrder {
		mean, n := MeanReward(sessions, id)
		if n == 0 {
			continue
		}
		out.Stats = append(out.Stats, PresetStat{Preset: id, Completed: n, MeanReward: mean})
	}
	completed, cancelled := 0, 0
	for _, s := range sessions {
		switch s.State {
		case session.Completed:
			completed++
		case session.Cancelled:
			cancelled++
		}
	}
	if total := completed + cancelled; total > 0 {
		out.CompletionRate = int(float64(completed)/float64(total)*100 + 0.5)
	}
	for i := range out.Stats {
		if out.Best == nil || out.Stats[i].MeanReward > out.Best.MeanReward {
			best := out.Stats[i]
			out.Best = &best
		}
	}
	if out.Best == nil {
		out.Headline = "Complete a session to see what's working."
		return out
	}
	out.Headline = fmt.Sprintf("%s is working best across %d sessions (%d%% completion).",
		out.Best.Preset, out.Best.Completed, out.CompletionRate)
	return out
}

// #endregion whats-working
