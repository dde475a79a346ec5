package health

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/scenario"
)

// #region permissions
// SignalType is one of the nine device signals the checklist tracks.
type SignalType string

const (
	SignalSleep            SignalType = "sleep"
	SignalHeartRate        SignalType = "heartRate"
	SignalHRV              SignalType = "hrv"
	SignalRestingHeartRate SignalType = "restingHeartRate"
	SignalRespiratoryRate  SignalType = "respiratoryRate"
	SignalSteps            SignalType = "steps"
	SignalActiveEnergy     SignalType = "activeEnergy"
	SignalMindfulMinutes   SignalType = "mindfulMinutes"
	SignalWristTemperature SignalType = "wristTemperature"
)

// SignalTypes is the fixed checklist order.
var SignalTypes = []SignalType{
	SignalSleep, SignalHeartRate, SignalHRV, SignalRestingHeartRate, SignalRespiratoryRate,
	SignalSteps, SignalActiveEnergy, SignalMindfulMinutes, SignalWristTemperature,
}

// PermissionStatus is the grant state of one signal.
type PermissionStatus string

const (
	Granted     PermissionStatus = "granted"
	Missing     PermissionStatus = "missing"
	Unsupported PermissionStatus = "unsupported"
)

// Permission is one checklist row.
type Permission struct {
	Signal SignalType       `json:"signal"`
	Status PermissionStatus `json:"status"`
}

// #endregion permissions

// #region quality
// Quality weights for sleep coverage, heart-rate density, HRV availability, watch wear.
const (
	WeightSleepCoverage    = 0.34
	WeightHeartRateDensity = 0.27
	WeightHRVAvailability  = 0.22
	WeightWatchWear        = 0.17
)

// Band is an inclusive sub-score range.
type Band struct{ Min, Max int }

var (
	SleepCoverageBand    = Band{Min: 42, Max: 99}
	HeartRateDensityBand = Band{Min: 45, Max: 99}
	HRVAvailabilityBand  = Band{Min: 38, Max: 98}
	WatchWearBand        = Band{Min: 40, Max: 99}
)

// QualityBreakdown is the data-quality score and its four components.
type QualityBreakdown struct {
	SleepCoverage    int    `json:"sleepCoverage"`
	HeartRateDensity int    `json:"heartRateDensity"`
	HRVAvailability  int    `json:"hrvAvailability"`
	WatchWear        int    `json:"watchWear"`
	Score            int    `json:"score"`
	ActionHint       string `json:"actionHint"`
}

// #endregion quality

// #region sync
// SyncSnapshot describes the simulated device bridge.
type SyncSnapshot struct {
	Source       string     `json:"source"`
	LastSyncAt   *time.Time `json:"lastSyncAt,omitempty"`
	LastImportAt *time.Time `json:"lastImportAt,omitempty"`
}

// #endregion sync

// #region timeline
// SegmentState classifies one timeline hour.
type SegmentState string

const (
	Stable     SegmentState = "stable"
	Activated  SegmentState = "activated"
	Recovering SegmentState = "recovery"
)

// Segment is one 1-hour timeline bucket.
type Segment struct {
	Start time.Time    `json:"start"`
	End   time.Time    `json:"end"`
	State SegmentState `json:"state"`
}

// #endregion timeline

// #region episodes
// DriverCategory is the likely cause attributed to an episode.
type DriverCategory string

const (
	DriverWorkload  DriverCategory = "workload"
	DriverCaffeine  DriverCategory = "caffeine"
	DriverSleepDebt DriverCategory = "sleepDebt"
	DriverSocial    DriverCategory = "social"
	DriverPhysical  DriverCategory = "physical"
)

// Attribution is user feedback on the driver attribution.
type Attribution string

const (
	AttributionConfirmed Attribution = "confirmed"
	AttributionAdjusted  Attribution = "adjusted"
	AttributionRejected  Attribution = "rejected"
)

// Episode is a simulated period of elevated stress.
type Episode struct {
	ID                string            `json:"id"`
	Start             time.Time         `json:"start"`
	End               time.Time         `json:"end"`
	Intensity         float64           `json:"intensity"`
	Confidence        float64           `json:"confidence"`
	Driver            DriverCategory    `json:"driver"`
	RecommendedPreset scenario.PresetID `json:"recommendedPreset"`
	Tags              []string          `json:"tags,omitempty"`
	Note              string            `json:"note,omitempty"`
	Attribution       Attribution       `json:"attribution,omitempty"`
}

// EpisodeContext is the user-supplied annotation merged into an episode.
// Nil fields leave the existing value untouched.
type EpisodeContext struct {
	Tags        []string
	Note        *string
	Attribution *Attribution
}

// #endregion episodes

// #region profile
// Limits on the derived lists.
const (
	MaxEpisodes      = 12
	TimelineSegments = 12
)

// Profile is the simulated device-integration state.
type Profile struct {
	Connected   bool             `json:"connected"`
	Sync        SyncSnapshot     `json:"sync"`
	Quality     QualityBreakdown `json:"quality"`
	Permissions []Permission     `json:"permissions"`
	Timeline    []Segment        `json:"timeline"`
	Episodes    []Episode        `json:"episodes"`
}

// Inputs are everything the simulator derives from.
type Inputs struct {
	Scenario          scenario.Scenario
	DemoDay           int
	Metrics           metric.Snapshot
	CompletedSessions int
	Adherence         int
	Now               time.Time
}

// #endregion profile
