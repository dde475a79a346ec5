package metric

import "fmt"

// #region clamp
// Clamped returns s with every axis pulled into its legal range.
func (s Snapshot) Clamped() Snapshot {
	return Snapshot{
		Load:        LoadBounds.Clamp(s.Load),
		Readiness:   ReadinessBounds.Clamp(s.Readiness),
		Consistency: ConsistencyBounds.Clamp(s.Consistency),
	}
}

// Apply adds d and re-clamps.
func (s Snapshot) Apply(d Delta) Snapshot {
	return Snapshot{
		Load:        s.Load + d.Load,
		Readiness:   s.Readiness + d.Readiness,
		Consistency: s.Consistency + d.Consistency,
	}.Clamped()
}

// Sub returns the per-axis difference s - other.
func (s Snapshot) Sub(other Snapshot) Delta {
	return Delta{
		Load:        s.Load - other.Load,
		Readiness:   s.Readiness - other.Readiness,
		Consistency: s.Consistency - other.Consistency,
	}
}

// Value returns the value on one axis. Unknown axes read as 0.
func (s Snapshot) Value(a Axis) int {
	switch a {
	case AxisLoad:
		return s.Load
	case AxisReadiness:
		return s.Readiness
	case AxisConsistency:
		return s.Consistency
	}
	return 0
}

func (s Snapshot) String() string {
	return fmt.Sprintf("load=%d readiness=%d consistency=%d", s.Load, s.Readiness, s.Consistency)
}

// #endregion clamp

// #region delta-helpers
// Add returns the element-wise sum of d and o.
func (d Delta) Add(o Delta) Delta {
	return Delta{
		Load:        d.Load + o.Load,
		Readiness:   d.Readiness + o.Readiness,
		Consistency: d.Consistency + o.Consistency,
	}
}

// IsZero reports whether d changes nothing.
func (d Delta) IsZero() bool {
	return d.Load == 0 && d.Readiness == 0 && d.Consistency == 0
}

func (d Delta) String() string {
	return fmt.Sprintf("load=%+d readiness=%+d consistency=%+d", d.Load, d.Readiness, d.Consistency)
}

// #endregion delta-helpers
