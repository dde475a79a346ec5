package state

import (
	"context"
	"errors"
	"time"
)

// ErrLoopStopped is returned by Do once Run has returned.
var ErrLoopStopped = errors.New("state: loop stopped")

// TickInterval is the session poll period.
const TickInterval = time.Second

// #region loop
// Loop confines every Store call to the goroutine running Run. Timer callbacks
// and the session tick arrive as messages on the same inbox.
type Loop struct {
	store   *Store
	inbox   chan func(*Store)
	ticks   <-chan time.Time
	stopped chan struct{}
}

// LoopOptions configures the tick source. A nil Ticks uses a TickInterval ticker.
type LoopOptions struct {
	Ticks <-chan time.Time
}

// NewLoop takes ownership of s. After this call s must only be touched through Do.
func NewLoop(s *Store, opts LoopOptions) *Loop {
	l := &Loop{
		store:   s,
		inbox:   make(chan func(*Store), 16),
		ticks:   opts.Ticks,
		stopped: make(chan struct{}),
	}
	s.dispatch = l.post
	return l
}

// Run processes messages until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.stopped)
	ticks := l.ticks
	if ticks == nil {
		t := time.NewTicker(TickInterval)
		defer t.Stop()
		ticks = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			l.store.Tick(ctx)
		case fn := <-l.inbox:
			fn(l.store)
		}
	}
}

// Do runs fn on the loop goroutine and waits for it to return.
func (l *Loop) Do(ctx context.Context, fn func(*Store)) error {
	done := make(chan struct{})
	msg := func(s *Store) {
		defer close(done)
		fn(s)
	}
	select {
	case l.inbox <- msg:
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	}
}

// post enqueues fn without waiting. Used by timer callbacks.
func (l *Loop) post(fn func(*Store)) {
	select {
	case l.inbox <- fn:
	case <-l.stopped:
	}
}
// #endregion loop
