// Package track owns the polling loop that turns focus snapshots into
// per-application time entries.
package track

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Loskoss/Productivity-Tracker/internal/focus"
	"github.com/Loskoss/Productivity-Tracker/internal/log"
	"github.com/Loskoss/Productivity-Tracker/internal/model"
	"github.com/Loskoss/Productivity-Tracker/internal/storage"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

// DefaultInterval is the polling interval used when none is configured.
const DefaultInterval = time.Second

// SessionStore is the persistence the tracker drives: load at start, save on
// every focus transition and at stop.
type SessionStore interface {
	Load(day time.Time) (*model.Session, error)
	Save(sess *model.Session) error
}

// Tracker accumulates focus time into the current day's session. The poll
// loop is the sole mutator; readers get deep copies under the same lock, so
// no live reference into tracker internals ever escapes.
//
// Known limitation: a tracker kept running across midnight keeps writing to
// the session of the day it started in.
type Tracker struct {
	store    SessionStore
	source   focus.Source
	interval time.Duration
	now      func() time.Time

	mu          sync.Mutex
	running     bool
	session     *model.Session
	current     *model.Activity
	lastSnap    focus.Snapshot
	hasSnap     bool
	transition  time.Time
	savePending bool
	stopCh      chan struct{}
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithInterval sets the polling interval.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New builds a stopped tracker over the given store and focus source.
func New(store SessionStore, source focus.Source, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		source:   source,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Start transitions Stopped -> Running and loads the current day's session.
// A corrupt session file is logged and tracking starts fresh in memory; the
// preserved .corrupt copy is left for diagnosis. Calling Start while already
// running is a no-op.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return nil
	}

	now := t.now()
	sess, err := t.store.Load(now)
	if err != nil {
		if !errors.Is(err, storage.ErrCorruptSession) {
			return err
		}
		log.Warn().Err(err).Msg("session file corrupt, starting fresh")
	}
	t.session = sess
	t.current = nil
	t.hasSnap = false
	t.transition = now
	t.running = true
	t.stopCh = make(chan struct{})

	log.Info().
		Str("date", sess.Date).
		Int("activities", len(sess.Activities)).
		Dur("interval", t.interval).
		Msg("tracker started")
	return nil
}

// Run blocks, polling the focus source until ctx is cancelled or Stop is
// called. Transient failures never terminate the loop.
func (t *Tracker) Run(ctx context.Context) {
	t.mu.Lock()
	stopCh := t.stopCh
	running := t.running
	t.mu.Unlock()
	if !running {
		return
	}

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

// tick performs one poll: fetch a snapshot, detect a focus change, and
// persist on transitions.
func (t *Tracker) tick(ctx context.Context) {
	snap, err := t.source.Current(ctx)
	if err != nil {
		// Permissions, transient OS errors, nothing focused: skip the
		// tick, keep the last-known current activity unchanged.
		log.Debug().Err(err).Msg("focus lookup failed, skipping tick")
		return
	}
	snap = snap.Normalize()

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}

	if t.hasSnap && snap.Same(t.lastSnap) {
		// No change. Retry a previously failed save so disk-full or
		// permission hiccups heal without waiting for the next switch.
		if t.savePending {
			t.saveLocked()
		}
		return
	}

	t.transitionLocked(snap)
}

// transitionLocked closes out the current activity, switches to the one
// matching snap, and persists the session. Callers hold t.mu.
func (t *Tracker) transitionLocked(snap focus.Snapshot) {
	now := t.now()

	t.closeOutLocked(now)

	details := snap.Details()
	a := t.session.FindOrCreate(snap.Name, details)
	a.SetDetails(details)

	t.current = a
	t.lastSnap = snap
	t.hasSnap = true
	t.transition = now

	log.Debug().
		Str("activity", a.Name).
		Str("window_title", snap.WindowTitle).
		Msg("focus changed")

	t.saveLocked()
}

// closeOutLocked appends the span since the last transition to the current
// activity. A clock stepped backwards makes the span invalid; that is logged
// and skipped rather than corrupting totals.
func (t *Tracker) closeOutLocked(now time.Time) {
	if t.current == nil {
		return
	}
	entry, err := model.NewTimeEntry(t.transition, now)
	if err != nil {
		log.Warn().Err(err).Str("activity", t.current.Name).Msg("dropping span with invalid range")
		return
	}
	t.current.AppendEntry(entry)
	log.Debug().
		Str("activity", t.current.Name).
		Str("duration", entry.Label()).
		Msg("closed out activity span")
}

// saveLocked persists the full session. Failures keep the tracker running on
// in-memory state and are retried on the next tick. Callers hold t.mu.
func (t *Tracker) saveLocked() {
	if err := t.store.Save(t.session); err != nil {
		log.Error().Err(err).Msg("saving session failed, keeping in-memory state")
		t.savePending = true
		return
	}
	t.savePending = false
}

// Stop transitions Running -> Stopped: the in-progress span is closed out
// with "now" and the session is persisted. Safe to call from any goroutine
// (e.g. a signal handler) and idempotent.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.running = false
	close(t.stopCh)

	t.closeOutLocked(t.now())
	t.current = nil
	t.hasSnap = false
	t.saveLocked()

	log.Info().
		Str("date", t.session.Date).
		Str("total", timecalc.FormatDuration(t.session.TotalSeconds())).
		Msg("tracker stopped")
}

// Running reports whether the tracker is in the Running state.
func (t *Tracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// CurrentActivity returns a snapshot of the in-progress activity, or nil
// when stopped or nothing has been observed yet. The copy is safe to use
// outside the tracker's lock.
func (t *Tracker) CurrentActivity() *model.Activity {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.current == nil {
		return nil
	}
	return t.current.Clone()
}

// Elapsed returns how long the current activity has been focused, zero when
// nothing is current.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running || t.current == nil {
		return 0
	}
	return t.now().Sub(t.transition)
}

// ListForDate returns the activities recorded for the given date. For the
// live session this reflects the last persisted state plus nothing more; a
// corrupt or unreadable file yields an empty list, never an error surface.
func (t *Tracker) ListForDate(day time.Time) []*model.Activity {
	sess, err := t.store.Load(day)
	if err != nil {
		log.Warn().Err(err).Str("date", day.Format(timecalc.DateKey)).Msg("listing session failed")
		return []*model.Activity{}
	}
	// Load already returns freshly built values, but clone anyway so two
	// callers never share mutable state.
	out := make([]*model.Activity, len(sess.Activities))
	for i, a := range sess.Activities {
		out[i] = a.Clone()
	}
	return out
}
