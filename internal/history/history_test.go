package history

import (
	"testing"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/metric"
)

func TestAppendCapsAtMaxEvents(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var events []Event
	for i := 0; i < MaxEvents+15; i++ {
		events = Append(events, NewEvent(now.Add(time.Duration(i)*time.Minute), KindSystem, "tick", "", metric.Snapshot{}, i))
	}
	if len(events) != MaxEvents {
		t.Fatalf("expected %d events, got %d", MaxEvents, len(events))
	}
	if *events[0].Day != 15 {
		t.Fatalf("expected oldest retained day 15, got %d", *events[0].Day)
	}
}

func TestRecentAndLastOfKind(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var events []Event
	events = Append(events, NewEvent(now, KindCheckIn, "first", "", metric.Snapshot{Load: 50}, 1))
	events = Append(events, NewEvent(now, KindSession, "s", "", metric.Snapshot{}, 1))
	events = Append(events, NewEvent(now, KindCheckIn, "second", "", metric.Snapshot{Load: 60}, 2))

	if got := Recent(events, 2); len(got) != 2 || got[1].Title != "second" {
		t.Fatalf("unexpected recent slice: %+v", got)
	}
	if got := Recent(events, 0); got != nil {
		t.Fatal("expected nil for n=0")
	}
	ev, ok := LastOfKind(events, KindCheckIn)
	if !ok || ev.Title != "second" {
		t.Fatalf("expected latest check-in, got %+v", ev)
	}
	if _, ok := LastOfKind(events, KindExperiment); ok {
		t.Fatal("expected no experiment event")
	}
}

func TestNewEventCopiesSnapshot(t *testing.T) {
	snap := metric.Snapshot{Load: 40}
	ev := NewEvent(time.Now(), KindSystem, "x", "", snap, 3)
	snap.Load = 90
	if ev.Snapshot.Load != 40 {
		t.Fatal("event snapshot should not alias the caller's value")
	}
	if ev.ID == "" {
		t.Fatal("expected id")
	}
}
