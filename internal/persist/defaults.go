package persist

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/experiment"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/health"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

// DefaultScenario is used on first run.
const DefaultScenario = scenario.Balanced

// Defaults returns first-run values for every entity of the profile's scenario.
func Defaults(p scenario.Profile, now time.Time) Entities {
	return Entities{
		Scenario:    p.Scenario,
		Metrics:     p.Baseline.Clamped(),
		DemoDay:     p.DefaultDay,
		Experiments: experiment.Defaults(p),
		Health:      DefaultHealth(p, now),
	}
}

// DefaultHealth seeds the health profile from the scenario baseline.
func DefaultHealth(p scenario.Profile, now time.Time) health.Profile {
	return health.Seed(health.Inputs{
		Scenario: p.Scenario,
		DemoDay:  p.DefaultDay,
		Metrics:  p.Baseline.Clamped(),
		Now:      now,
	})
}
