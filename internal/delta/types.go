package delta

// #region direction
// Direction is the user's reported change after a session.
type Direction string

const (
	Worse  Direction = "worse"
	Same   Direction = "same"
	Better Direction = "better"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == Worse || d == Same || d == Better
}

// #endregion direction

// #region helpfulness
// Helpfulness is the user's verdict on a session.
type Helpfulness string

const (
	HelpfulYes  Helpfulness = "yes"
	HelpfulSome Helpfulness = "some"
	HelpfulNo   Helpfulness = "no"
)

// Valid reports whether h is a known helpfulness value.
func (h Helpfulness) Valid() bool {
	return h == HelpfulYes || h == HelpfulSome || h == HelpfulNo
}

// #endregion helpfulness

// #region effect-metrics
// Slope is the three-level recovery slope.
type Slope string

const (
	SlopeGentle   Slope = "gentle"
	SlopeModerate Slope = "moderate"
	SlopeStrong   Slope = "strong"
)

// Quality tags how an effect measurement was obtained.
type Quality string

const (
	QualityLive      Quality = "live"
	QualityEstimated Quality = "estimated"
)

// EffectMetrics is the simulated physiological effect of a session.
type EffectMetrics struct {
	HeartRateDownshiftBPM int     `json:"heartRateDownshiftBPM"`
	HRVShiftMS            int     `json:"hrvShiftMS"`
	RecoverySlope         Slope   `json:"recoverySlope"`
	Quality               Quality `json:"quality"`
}

// #endregion effect-metrics

// #region caps
const (
	MaxHeartRateDownshift = 14 // bpm
	MaxHRVShift           = 18 // ms
	StrongSlopeBase       = 8
	MinIntensity          = 1
	MaxIntensity          = 5
	MinPerceivedChange    = -5
	MaxPerceivedChange    = 5
)

// #endregion caps
