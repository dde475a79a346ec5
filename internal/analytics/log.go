package analytics

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/danielpatrickdp/mindsense/go-engine/internal/logging"
)

// #region log
// Log is a capped in-memory event list with debounced persistence.
// Emit never blocks on I/O; a write fires once the log has been quiet for
// the debounce interval and stores a snapshot of the whole list.
type Log struct {
	mu        sync.Mutex
	events    []Event
	pending   []Event
	timer     *time.Timer
	debounce  time.Duration
	persister Persister
	forwarder Forwarder
	now       func() time.Time
	log       *logging.Logger
	writeMu   sync.Mutex
}

// Options configures a Log. Zero values are valid: no persistence, no forwarding.
type Options struct {
	Persister Persister
	Forwarder Forwarder
	Debounce  time.Duration
	Now       func() time.Time
	Logger    *logging.Logger
}

// NewLog seeds the log with previously persisted events.
func NewLog(initial []Event, opts Options) *Log {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	return &Log{
		events:    Cap(append([]Event(nil), initial...)),
		debounce:  opts.Debounce,
		persister: opts.Persister,
		forwarder: opts.Forwarder,
		now:       opts.Now,
		log:       opts.Logger,
	}
}

// Emit appends an event and (re)arms the debounce timer.
func (l *Log) Emit(name string, metadata map[string]string) {
	e := Event{Name: name, Timestamp: l.now().UTC()}
	if len(metadata) > 0 {
		e.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			e.Metadata[k] = v
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = Cap(append(l.events, e))
	if l.forwarder != nil {
		l.pending = append(l.pending, e)
	}
	if l.persister == nil && l.forwarder == nil {
		return
	}
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, func() { l.flush(context.Background()) })
}

// Events returns a copy of the current list, oldest first.
func (l *Log) Events() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Event(nil), l.events...)
}

// Reset empties the log. The empty list is persisted by the next Flush.
func (l *Log) Reset() {
	l.mu.Lock()
	l.events = nil
	l.pending = nil
	l.mu.Unlock()
}

// Flush cancels any pending timer and writes immediately.
func (l *Log) Flush(ctx context.Context) {
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	l.mu.Unlock()
	l.flush(ctx)
}

func (l *Log) flush(ctx context.Context) {
	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	l.mu.Lock()
	snapshot := append([]Event(nil), l.events...)
	pending := l.pending
	l.pending = nil
	l.mu.Unlock()

	if l.forwarder != nil {
		for i, e := range pending {
			if err := l.forwarder.Forward(ctx, e); err != nil {
				l.log.Warn("analytics forward failed", "event", e.Name, "unsent", len(pending)-i, "error", err)
				l.requeue(pending[i:])
				break
			}
		}
	}
	if l.persister != nil {
		if err := l.persister.SaveAnalytics(ctx, snapshot); err != nil {
			l.log.Warn("analytics persist failed", "events", len(snapshot), "error", err)
		}
	}
}
// requeue puts unsent events back ahead of anything emitted since the snapshot,
// so the next flush retries them in order.
func (l *Log) requeue(unsent []Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = Cap(append(append([]Event(nil), unsent...), l.pending...))
}
// #endregion log

// #region cap
// Cap keeps the newest MaxEvents entries and then drops the oldest until the
// encoded list fits in MaxBytes.
func Cap(events []Event) []Event {
	if len(events) > MaxEvents {
		events = append([]Event(nil), events[len(events)-MaxEvents:]...)
	}
	for len(events) > 0 && EncodedSize(events) > MaxBytes {
		drop := max(1, len(events)/10)
		events = append([]Event(nil), events[drop:]...)
	}
	return events
}

// EncodedSize is the JSON length of the list.
func EncodedSize(events []Event) int {
	b, err := json.Marshal(events)
	if err != nil {
		return 0
	}
	return len(b)
}
// #endregion cap

// #region discard
// Discard is a Sink that drops everything.
type Discard struct{}

func (Discard) Emit(string, map[string]string) {}
// #endregion discard
