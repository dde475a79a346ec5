package delta

import (
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

// #region session-outcome
// SessionOutcomeDelta maps a session result to a metric change.
// Intensity is clamped to [1,5].
func SessionOutcomeDelta(dir Direction, intensity int) metric.Delta {
	i := ClampIntensity(intensity)
	switch dir {
	case Better:
		return metric.Delta{Load: -2 * i, Readiness: 2 * i, Consistency: 1}
	case Worse:
		return metric.Delta{Load: 2 * i, Readiness: -2 * i, Consistency: -1}
	default:
		return metric.Delta{Load: -1, Readiness: 1, Consistency: 1}
	}
}

// CancellationDelta is applied when a session is abandoned.
func CancellationDelta() metric.Delta {
	return metric.Delta{Load: 1, Readiness: -1, Consistency: -1}
}

// #endregion session-outcome

// #region experiment
// ExperimentCheckInDelta nudges the focus axis toward improvement for one logged day.
func ExperimentCheckInDelta(focus metric.Axis) metric.Delta {
	switch focus {
	case metric.AxisLoad:
		return metric.Delta{Load: -2, Readiness: 1, Consistency: 1}
	case metric.AxisReadiness:
		return metric.Delta{Load: -1, Readiness: 2, Consistency: 1}
	case metric.AxisConsistency:
		return metric.Delta{Load: -1, Readiness: 1, Consistency: 2}
	}
	return metric.Delta{}
}

// ExperimentCompletionDelta scales the focus axis by the perceived change in [-5,5].
// Completing a trial always credits consistency by 2 on the non-focus path.
func ExperimentCompletionDelta(focus metric.Axis, perceivedChange int) metric.Delta {
	m := ClampPerceivedChange(perceivedChange)
	half := m / 2
	switch focus {
	case metric.AxisLoad:
		return metric.Delta{Load: -m, Readiness: half, Consistency: 2}
	case metric.AxisReadiness:
		return metric.Delta{Load: -half, Readiness: m, Consistency: 2}
	case metric.AxisConsistency:
		return metric.Delta{Load: -1, Readiness: half, Consistency: m + 2}
	}
	return metric.Delta{}
}

// #endregion experiment

// #region fast-forward
// FastForwardDelta simulates days passing without intervention.
func FastForwardDelta(days int, s scenario.Scenario) metric.Delta {
	if days <= 0 {
		return metric.Delta{}
	}
	switch s {
	case scenario.HighStress:
		return metric.Delta{Load: min(8, days+2), Readiness: -min(6, days+1), Consistency: -min(4, days)}
	case scenario.Recovery:
		return metric.Delta{Load: -min(4, days), Readiness: min(6, days+1), Consistency: -min(2, days)}
	default:
		return metric.Delta{Load: min(4, days), Readiness: -min(3, days), Consistency: -min(3, days)}
	}
}

// #endregion fast-forward

// #region check-in
// CheckInDelta pulls load halfway toward a user-reported score clamped to the load range.
func CheckInDelta(current metric.Snapshot, reportedLoad int) metric.Delta {
	target := metric.LoadBounds.Clamp(reportedLoad)
	return metric.Delta{Load: (target - current.Load) / 2}
}

// #endregion check-in

// #region effect-metrics
// presetBoost and scenarioBoost feed the effect base score.
func presetBoost(p scenario.PresetID) int {
	switch p {
	case scenario.CalmNow:
		return 2
	case scenario.FocusPrep:
		return 1
	case scenario.SleepDownshift:
		return 3
	}
	return 0
}

func scenarioBoost(s scenario.Scenario) int {
	switch s {
	case scenario.HighStress:
		return 2
	case scenario.Balanced:
		return 1
	}
	return 0
}

// EffectBase returns intensity + preset boost + scenario boost.
func EffectBase(intensity int, preset scenario.PresetID, s scenario.Scenario) int {
	return ClampIntensity(intensity) + presetBoost(preset) + scenarioBoost(s)
}

// Effect computes the simulated physiological effect of a session.
// Worse outcomes invert sign and are always estimated.
func Effect(dir Direction, intensity int, preset scenario.PresetID, s scenario.Scenario, quality Quality) EffectMetrics {
	base := EffectBase(intensity, preset, s)
	if quality != QualityLive {
		quality = QualityEstimated
	}
	switch dir {
	case Better:
		slope := SlopeModerate
		if base >= StrongSlopeBase {
			slope = SlopeStrong
		}
		return EffectMetrics{
			HeartRateDownshiftBPM: min(MaxHeartRateDownshift, base+base/2),
			HRVShiftMS:            min(MaxHRVShift, 2*base),
			RecoverySlope:         slope,
			Quality:               quality,
		}
	case Worse:
		return EffectMetrics{
			HeartRateDownshiftBPM: -min(MaxHeartRateDownshift, base/2),
			HRVShiftMS:            -min(MaxHRVShift, base),
			RecoverySlope:         SlopeGentle,
			Quality:               QualityEstimated,
		}
	default:
		slope := SlopeGentle
		if base >= StrongSlopeBase {
			slope = SlopeModerate
		}
		return EffectMetrics{
			HeartRateDownshiftBPM: min(MaxHeartRateDownshift, base/2),
			HRVShiftMS:            min(MaxHRVShift, base),
			RecoverySlope:         slope,
			Quality:               quality,
		}
	}
}

// #endregion effect-metrics

// #region clamps
// ClampIntensity restricts a 1-5 rating.
func ClampIntensity(v int) int {
	return clampInt(v, MinIntensity, MaxIntensity)
}

// ClampPerceivedChange restricts a perceived change to [-5,5].
func ClampPerceivedChange(v int) int {
	return clampInt(v, MinPerceivedChange, MaxPerceivedChange)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// #endregion clamps
