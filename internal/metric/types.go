package metric

// #region bounds
// Bounds is the legal inclusive range of one metric axis.
type Bounds struct {
	Min int
	Max int
}

var (
	LoadBounds        = Bounds{Min: 8, Max: 96}
	ReadinessBounds   = Bounds{Min: 8, Max: 98}
	ConsistencyBounds = Bounds{Min: 10, Max: 99}
)

// Clamp restricts v to the bounds.
func (b Bounds) Clamp(v int) int {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// #endregion bounds

// #region axis
// Axis names one of the three metric dimensions.
type Axis string

const (
	AxisLoad        Axis = "load"
	AxisReadiness   Axis = "readiness"
	AxisConsistency Axis = "consistency"
)

// Valid reports whether a is a known axis.
func (a Axis) Valid() bool {
	switch a {
	case AxisLoad, AxisReadiness, AxisConsistency:
		return true
	}
	return false
}

// #endregion axis

// #region snapshot
// Snapshot is the bounded load/readiness/consistency triple.
type Snapshot struct {
	Load        int `json:"load"`
	Readiness   int `json:"readiness"`
	Consistency int `json:"consistency"`
}

// Delta is a transient change to apply to a Snapshot. Never persisted.
type Delta struct {
	Load        int `json:"load"`
	Readiness   int `json:"readiness"`
	Consistency int `json:"consistency"`
}

// #endregion snapshot
