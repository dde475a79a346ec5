package history

import (
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
	"github.com/google/uuid"
)

// #region append
// AppendCapped appends item and drops the oldest entries beyond limit.
func AppendCapped[T any](list []T, item T, limit int) []T {
	list = append(list, item)
	if limit > 0 && len(list) > limit {
		list = append([]T(nil), list[len(list)-limit:]...)
	}
	return list
}

// NewEvent builds an event stamped with a fresh id and a copy of the snapshot.
func NewEvent(now time.Time, kind Kind, title, detail string, snap metric.Snapshot, day int) Event {
	s := snap
	d := day
	return Event{
		ID:        uuid.New().String(),
		Timestamp: now,
		Title:     title,
		Detail:    detail,
		Kind:      kind,
		Snapshot:  &s,
		Day:       &d,
	}
}

// Append adds e to the log and enforces MaxEvents.
func Append(events []Event, e Event) []Event {
	return AppendCapped(events, e, MaxEvents)
}

// #endregion append

// #region queries
// Recent returns the last n events, oldest first.
func Recent(events []Event, n int) []Event {
	if n <= 0 {
		return nil
	}
	if len(events) <= n {
		return events
	}
	return events[len(events)-n:]
}

// LastOfKind returns the newest event of the given kind.
func LastOfKind(events []Event, kind Kind) (Event, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Kind == kind {
			return events[i], true
		}
	}
	return Event{}, false
}

// #endregion queries
