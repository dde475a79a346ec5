package recommend

import (
	"math"
	"sort"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/signals"
)

// #region drivers
// driverShift returns the per-id nudge from signals and metric drift off baseline.
func driverShift(id string, c signals.Counts, d metric.Delta) float64 {
	stress := float64(min(c.Stress, 3))
	recovery := float64(min(c.Recovery, 3))
	caffeine := float64(min(c.Caffeine, 3))
	switch id {
	case "sleep_fragmentation":
		return 0.03*stress + 0.02*math.Min(caffeine, 2) - 0.02*recovery + float64(d.Load)/200
	case "meeting_density":
		return 0.04*stress - 0.01*recovery
	case "caffeine_timing":
		return 0.06 * caffeine
	case "movement_gap":
		return -0.02*recovery - float64(d.Readiness)/150
	case "sleep_timing":
		return 0.01*stress - float64(d.Consistency)/120
	case "focus_blocks":
		return float64(d.Readiness)/150 - 0.02*stress
	case "recovery_sleep":
		return 0.02*recovery - float64(d.Readiness)/120
	case "training_load":
		return 0.02*stress + float64(d.Load)/120
	}
	return float64(d.Load) / 200
}

// Drivers re-scores the profile's base drivers against recent signals and the
// current drift from baseline, sorted by impact descending then name.
func (e *Engine) Drivers(in Input) []DriverImpact {
	drift := in.Metrics.Sub(in.Profile.Baseline)
	out := make([]DriverImpact, 0, len(in.Profile.Drivers))
	for _, d := range in.Profile.Drivers {
		impact := d.Impact + driverShift(d.ID, in.Signals, drift)
		impact = math.Max(e.config.DriverMin, math.Min(e.config.DriverMax, impact))
		impact = math.Round(impact*1000) / 1000
		influence := Stable
		switch shift := impact - d.Impact; {
		case shift > e.config.InfluenceThreshold:
			influence = Rising
		case shift < -e.config.InfluenceThreshold:
			influence = Falling
		}
		out = append(out, DriverImpact{
			ID:         d.ID,
			Name:       d.Name,
			Impact:     impact,
			BaseImpact: d.Impact,
			Influence:  influence,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Impact != out[j].Impact {
			return out[i].Impact > out[j].Impact
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// #endregion drivers
