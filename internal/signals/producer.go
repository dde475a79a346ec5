package signals

import (
	"strings"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
)

// #region producer

// Producer derives keyword signal counts from the event log.
type Producer struct {
	config ProducerConfig
}

// NewProducer creates a Producer.
func NewProducer(config ProducerConfig) *Producer {
	if config.Window <= 0 {
		config.Window = DefaultProducerConfig().Window
	}
	return &Producer{config: config}
}

// #endregion producer

// #region count

// Count inspects the last Window events. Each event counts at most once per category.
// Scenario events occupy the window but never count.
func (p *Producer) Count(events []history.Event) Counts {
	var c Counts
	for _, ev := range history.Recent(events, p.config.Window) {
		if ev.Kind == history.KindScenario {
			continue
		}
		text := normalize(ev.Title + " " + ev.Detail)
		if containsAny(text, p.config.StressTerms) {
			c.Stress++
		}
		if containsAny(text, p.config.RecoveryTerms) {
			c.Recovery++
		}
		if containsAny(text, p.config.CaffeineTerms) {
			c.Caffeine++
		}
	}
	return c
}

// #endregion count

// #region deltas

// DeltaSinceCheckIn returns current minus the snapshot recorded on the newest check-in.
// ok is false when no check-in with a snapshot exists.
func DeltaSinceCheckIn(events []history.Event, current metric.Snapshot) (metric.Delta, bool) {
	ev, found := history.LastOfKind(events, history.KindCheckIn)
	if !found || ev.Snapshot == nil {
		return metric.Delta{}, false
	}
	return current.Sub(*ev.Snapshot), true
}

// #endregion deltas

// #region helpers

// normalize lowercases text and collapses whitespace.
func normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if t != "" && strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// #endregion helpers
