// Package persist maps engine entities onto namespaced, versioned kv keys and
// isolates decode failures to the entity that failed.
package persist

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/analytics"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/experiment"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/health"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/history"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/session"
)

// SchemaVersion is written into every envelope.
const SchemaVersion = 1

// #region keys
// Key names one persisted entity.
type Key string

const (
	KeySessionHistory Key = "session-history"
	KeyActiveSession  Key = "active-session"
	KeyExperiments    Key = "experiments"
	KeyMetrics        Key = "metric-snapshot"
	KeyEvents         Key = "event-history"
	KeyHealth         Key = "health-profile"
	KeyInsights       Key = "saved-insights"
	KeyGuidedPath     Key = "guided-path-step"
	KeyDemoDay        Key = "simulated-day-counter"
	KeyScenario       Key = "demo-scenario"
	KeyAnalytics      Key = "analytics-events"
	KeyOnboarding     Key = "onboarding-progress"
	KeyKPIReviewed    Key = "kpi-last-reviewed"
	KeyPaywallSeen    Key = "paywall-seen"
)

// EntityKeys lists every key in load order. KeyOnboarding is stored per account.
var EntityKeys = []Key{
	KeyScenario, KeyMetrics, KeyDemoDay, KeySessionHistory, KeyActiveSession,
	KeyExperiments, KeyEvents, KeyHealth, KeyInsights, KeyGuidedPath,
	KeyOnboarding, KeyKPIReviewed, KeyPaywallSeen, KeyAnalytics,
}

var labels = map[Key]string{
	KeySessionHistory: "session history",
	KeyActiveSession:  "active session",
	KeyExperiments:    "experiments",
	KeyMetrics:        "metrics",
	KeyEvents:         "activity history",
	KeyHealth:         "health profile",
	KeyInsights:       "saved insights",
	KeyGuidedPath:     "guided path progress",
	KeyDemoDay:        "day counter",
	KeyScenario:       "scenario",
	KeyAnalytics:      "analytics log",
	KeyOnboarding:     "onboarding progress",
	KeyKPIReviewed:    "review date",
	KeyPaywallSeen:    "upgrade prompt state",
}

// Label is the user-facing name of the entity.
func (k Key) Label() string {
	if l, ok := labels[k]; ok {
		return l
	}
	return string(k)
}
// #endregion keys

// #region entities
// Entities is every persisted value of one account.
type Entities struct {
	Scenario      scenario.Scenario
	Metrics       metric.Snapshot
	DemoDay       int
	Sessions      []session.Session
	Active        *session.Session
	Experiments   []experiment.Experiment
	Events        []history.Event
	Health        health.Profile
	Insights      []string
	GuidedStep    int
	Onboarding    int
	KPIReviewedAt *time.Time
	PaywallSeen   bool
	Analytics     []analytics.Event
}

// DataIssue is the user-visible notice raised by the first decode failure of a load cycle.
type DataIssue struct {
	Key     Key    `json:"key"`
	Message string `json:"message"`
}

// KeyStatus is one row of Inspect output.
type KeyStatus struct {
	Key     string `json:"key"`
	Bytes   int    `json:"bytes"`
	Version int    `json:"version"`
	Status  string `json:"status"` // "ok" | "legacy" | "corrupt"
	Error   string `json:"error,omitempty"`
}

// Limits applied to decoded values.
const (
	MaxInsights   = 30
	MaxGuidedStep = 4
)
// #endregion entities
