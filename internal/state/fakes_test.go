package state

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/kv"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
	"github.com/danielpatrickdp/mindsense/go-engine/internal/persist"
)

// #region fakes
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// fire runs every timer that is neither stopped nor already fired.
func (s *fakeScheduler) fire() int {
	n := 0
	for _, t := range s.timers {
		if t.stopped || t.fired {
			continue
		}
		t.fired = true
		t.f()
		n++
	}
	return n
}

type fakeSink struct {
	names []string
}

func (f *fakeSink) Emit(name string, _ map[string]string) {
	f.names = append(f.names, name)
}

func (f *fakeSink) count(name string) int {
	n := 0
	for _, x := range f.names {
		if x == name {
			n++
		}
	}
	return n
}

type fakeAuditor struct {
	entries []logging.TransitionEntry
}

func (f *fakeAuditor) Record(_ context.Context, e logging.TransitionEntry) error {
	f.entries = append(f.entries, e)
	return nil
}
// #endregion fakes

// #region harness
var t0 = time.Date(2026, 3, 4, 9, 0, 0, 0, time.UTC)

type harness struct {
	store     *Store
	kv        *kv.Memory
	clock     *fakeClock
	scheduler *fakeScheduler
	sink      *fakeSink
	audit     *fakeAuditor
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessOn(t, kv.NewMemory())
}

func newHarnessOn(t *testing.T, store *kv.Memory) *harness {
	t.Helper()
	h := &harness{
		kv:        store,
		clock:     &fakeClock{t: t0},
		scheduler: &fakeScheduler{},
		sink:      &fakeSink{},
		audit:     &fakeAuditor{},
	}
	h.store = New(Options{
		Adapter:   persist.NewAdapter(store, persist.Options{Namespace: "test", Account: "tester"}),
		Clock:     h.clock,
		Scheduler: h.scheduler,
		Sink:      h.sink,
		Audit:     h.audit,
	})
	h.store.Load(context.Background())
	return h
}
// #endregion harness
