// Package analytics is the named-event sink the engine emits telemetry through.
package analytics

import (
	"context"
	"time"
)

// Event names emitted by the engine.
const (
	EventScenarioSelected       = "scenario_selected"
	EventSessionStarted         = "session_started"
	EventSessionRoutineDone     = "session_routine_completed"
	EventSessionCancelled       = "session_cancelled"
	EventSessionOutcomeRecorded = "session_outcome_recorded"
	EventExperimentStarted      = "experiment_started"
	EventExperimentDayLogged    = "experiment_day_logged"
	EventExperimentCompleted    = "experiment_completed"
	EventCheckInSaved           = "checkin_saved"
	EventReflectionSaved        = "reflection_saved"
	EventFastForward            = "fast_forward"
	EventHealthRebuilt          = "health_rebuilt"
	EventHealthDerivedCleared   = "health_derived_cleared"
	EventEpisodeContextSaved    = "episode_context_saved"
	EventUpsellShown            = "post_activation_upsell_shown"
	EventDataRepaired           = "data_repaired"
)

// Limits on the persisted log.
const (
	MaxEvents = 400
	MaxBytes  = 350 * 1024
)

// Event is one emitted telemetry record.
type Event struct {
	Name      string            `json:"name"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// Sink receives engine events.
type Sink interface {
	Emit(name string, metadata map[string]string)
}

// Persister stores the full event list under one key, replacing the previous value.
type Persister interface {
	SaveAnalytics(ctx context.Context, events []Event) error
}

// Forwarder ships events to an external transport.
type Forwarder interface {
	Forward(ctx context.Context, e Event) error
}
