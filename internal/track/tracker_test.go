package track

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Loskoss/Productivity-Tracker/internal/focus"
	"github.com/Loskoss/Productivity-Tracker/internal/model"
	"github.com/Loskoss/Productivity-Tracker/internal/storage"
)

// fakeClock is an adjustable time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
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

// fakeSource returns a settable snapshot or error.
type fakeSource struct {
	mu   sync.Mutex
	snap focus.Snapshot
	err  error
}

func (s *fakeSource) Current(ctx context.Context) (focus.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap, s.err
}

func (s *fakeSource) set(snap focus.Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.err = nil
	s.mu.Unlock()
}

func (s *fakeSource) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func newTestTracker(t *testing.T) (*Tracker, *fakeSource, *fakeClock, *storage.Store) {
	t.Helper()
	store := storage.NewStore(t.TempDir())
	source := &fakeSource{err: focus.ErrNoFocus}
	clock := newFakeClock(time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local))
	tr := New(store, source, WithClock(clock.Now))
	return tr, source, clock, store
}

func TestStartIsIdempotent(t *testing.T) {
	tr, _, _, _ := newTestTracker(t)

	require.NoError(t, tr.Start())
	require.NoError(t, tr.Start())
	assert.True(t, tr.Running())

	tr.Stop()
	tr.Stop()
	assert.False(t, tr.Running())
}

func TestEndToEndScenario(t *testing.T) {
	tr, source, clock, store := newTestTracker(t)
	ctx := context.Background()
	day := clock.Now()

	require.NoError(t, tr.Start())

	// T0: focused on Chrome 119, tab A.
	source.set(focus.Snapshot{Name: "Chrome 119", Exe: "/usr/bin/chrome", WindowTitle: "Tab A"})
	tr.tick(ctx)

	cur := tr.CurrentActivity()
	require.NotNil(t, cur)
	assert.Equal(t, "Chrome", cur.Name)
	assert.Empty(t, cur.TimeEntries, "no span is closed until focus moves away")

	// T0+30s: focus shifts to Notepad with the generic Untitled title.
	clock.Advance(30 * time.Second)
	source.set(focus.Snapshot{Name: "Notepad.exe", Exe: `C:\Windows\notepad.exe`, WindowTitle: "Untitled"})
	tr.tick(ctx)

	cur = tr.CurrentActivity()
	require.NotNil(t, cur)
	assert.Equal(t, "Notepad", cur.Name)
	assert.Equal(t, "Notepad.exe - Untitled", cur.Details[model.DetailWindowTitle])

	// T0+50s: stop.
	clock.Advance(20 * time.Second)
	tr.Stop()
	assert.Nil(t, tr.CurrentActivity())

	// The persisted session holds both activities with correct totals.
	sess, err := store.Load(day)
	require.NoError(t, err)
	require.Len(t, sess.Activities, 2)

	chrome := sess.Find("Chrome")
	require.NotNil(t, chrome)
	require.Len(t, chrome.TimeEntries, 1)
	assert.Equal(t, int64(30), chrome.TimeEntries[0].DurationSeconds)
	assert.Equal(t, int64(30), chrome.TotalSeconds)
	assert.Equal(t, "30s", chrome.TotalTime)

	notepad := sess.Find("Notepad")
	require.NotNil(t, notepad)
	require.Len(t, notepad.TimeEntries, 1)
	assert.Equal(t, int64(20), notepad.TimeEntries[0].DurationSeconds)
	assert.Equal(t, "Notepad.exe - Untitled", notepad.Details[model.DetailWindowTitle])
}

func TestTitleChangeOnSameAppAppendsToSameActivity(t *testing.T) {
	tr, source, clock, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Start())

	source.set(focus.Snapshot{Name: "Chrome 119", WindowTitle: "Tab A"})
	tr.tick(ctx)

	// Same process, new tab: the change key includes the title, so the
	// current span closes, but it lands on the same activity bucket.
	clock.Advance(30 * time.Second)
	source.set(focus.Snapshot{Name: "Chrome 120", WindowTitle: "Tab B"})
	tr.tick(ctx)

	cur := tr.CurrentActivity()
	require.NotNil(t, cur)
	assert.Equal(t, "Chrome", cur.Name)
	require.Len(t, cur.TimeEntries, 1)
	assert.Equal(t, int64(30), cur.TimeEntries[0].DurationSeconds)
	assert.Equal(t, "Tab B", cur.Details[model.DetailWindowTitle])

	clock.Advance(15 * time.Second)
	tr.Stop()

	acts := tr.ListForDate(clock.Now())
	require.Len(t, acts, 1)
	assert.Equal(t, int64(45), acts[0].TotalSeconds)
}

func TestUnchangedSnapshotIsANoOp(t *testing.T) {
	tr, source, clock, store := newTestTracker(t)
	ctx := context.Background()
	day := clock.Now()

	require.NoError(t, tr.Start())
	source.set(focus.Snapshot{Name: "Chrome", WindowTitle: "Tab A"})
	tr.tick(ctx)

	for i := 0; i < 5; i++ {
		clock.Advance(time.Second)
		tr.tick(ctx)
	}

	sess, err := store.Load(day)
	require.NoError(t, err)
	chrome := sess.Find("Chrome")
	require.NotNil(t, chrome)
	assert.Empty(t, chrome.TimeEntries, "no transitions, no closed spans")
}

func TestFocusLookupFailureRetainsCurrentActivity(t *testing.T) {
	tr, source, clock, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Start())
	source.set(focus.Snapshot{Name: "Chrome", WindowTitle: "Tab A"})
	tr.tick(ctx)

	clock.Advance(10 * time.Second)
	source.fail(focus.ErrNoFocus)
	tr.tick(ctx)
	tr.tick(ctx)

	cur := tr.CurrentActivity()
	require.NotNil(t, cur, "lookup failure must not drop the current activity")
	assert.Equal(t, "Chrome", cur.Name)
	assert.True(t, tr.Running())

	// When focus comes back unchanged, the span keeps accruing from the
	// original transition time.
	clock.Advance(20 * time.Second)
	source.set(focus.Snapshot{Name: "Chrome", WindowTitle: "Tab A"})
	tr.tick(ctx)
	tr.Stop()

	acts := tr.ListForDate(clock.Now())
	require.Len(t, acts, 1)
	assert.Equal(t, int64(30), acts[0].TotalSeconds)
}

func TestClockSteppedBackwardsDropsSpan(t *testing.T) {
	tr, source, clock, _ := newTestTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.Start())
	source.set(focus.Snapshot{Name: "Chrome", WindowTitle: "Tab A"})
	tr.tick(ctx)

	clock.Advance(-time.Hour)
	source.set(focus.Snapshot{Name: "Notepad", WindowTitle: "x"})
	tr.tick(ctx)

	// The invalid span is dropped, not recorded as a negative duration,
	// and the loop keeps going.
	assert.True(t, tr.Running())
	cur := tr.CurrentActivity()
	require.NotNil(t, cur)
	assert.Equal(t, "Notepad", cur.Name)

	acts := tr.ListForDate(clock.Now())
	for _, a := range acts {
		assert.GreaterOrEqual(t, a.TotalSeconds, int64(0))
		for _, e := range a.TimeEntries {
			assert.GreaterOrEqual(t, e.DurationSeconds, int64(0))
		}
	}
}

func TestStartWithCorruptSessionFile(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewStore(dir)
	clock := newFakeClock(time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local))
	source := &fakeSource{err: focus.ErrNoFocus}

	path := filepath.Join(dir, "2026-02-27.json")
	require.NoError(t, os.WriteFile(path, []byte("{truncated"), 0o600))

	tr := New(store, source, WithClock(clock.Now))
	require.NoError(t, tr.Start(), "corrupt session must not prevent startup")

	// Until new data is recorded the date lists as empty.
	assert.Empty(t, tr.ListForDate(clock.Now()))

	source.set(focus.Snapshot{Name: "Chrome", WindowTitle: "Tab A"})
	tr.tick(context.Background())
	clock.Advance(10 * time.Second)
	tr.Stop()

	acts := tr.ListForDate(clock.Now())
	require.Len(t, acts, 1)
	assert.Equal(t, int64(10), acts[0].TotalSeconds)
}

// flakyStore fails saves on demand, wrapping a real store.
type flakyStore struct {
	*storage.Store
	failSaves bool
	saves     int
}

func (s *flakyStore) Save(sess *model.Session) error {
	if s.failSaves {
		return errors.New("disk full")
	}
	s.saves++
	return s.Store.Save(sess)
}

func TestSaveFailureKeepsTrackingAndRetries(t *testing.T) {
	store := &flakyStore{Store: storage.NewStore(t.TempDir()), failSaves: true}
	clock := newFakeClock(time.Date(2026, 2, 27, 9, 0, 0, 0, time.Local))
	source := &fakeSource{}
	tr := New(store, source, WithClock(clock.Now))

	require.NoError(t, tr.Start())
	source.set(focus.Snapshot{Name: "Chrome", WindowTitle: "Tab A"})
	tr.tick(context.Background())

	clock.Advance(30 * time.Second)
	source.set(focus.Snapshot{Name: "Notepad", WindowTitle: "x"})
	tr.tick(context.Background())

	// Saves fail, but in-memory accumulation continues.
	assert.True(t, tr.Running())
	cur := tr.CurrentActivity()
	require.NotNil(t, cur)
	assert.Equal(t, "Notepad", cur.Name)
	assert.Zero(t, store.saves)

	// Once the disk recovers, the pending save goes through on the next
	// tick even without a focus change.
	store.failSaves = false
	clock.Advance(time.Second)
	tr.tick(context.Background())
	assert.Equal(t, 1, store.saves)

	sess, err := store.Store.Load(clock.Now())
	require.NoError(t, err)
	require.NotNil(t, sess.Find("Chrome"))
	assert.Equal(t, int64(30), sess.Find("Chrome").TotalSeconds)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	source := &fakeSource{err: focus.ErrNoFocus}
	tr := New(store, source, WithInterval(5*time.Millisecond))

	require.NoError(t, tr.Start())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		tr.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}

	tr.Stop()
	assert.False(t, tr.Running())
}

func TestRunStopsOnStop(t *testing.T) {
	store := storage.NewStore(t.TempDir())
	source := &fakeSource{err: focus.ErrNoFocus}
	tr := New(store, source, WithInterval(5*time.Millisecond))

	require.NoError(t, tr.Start())

	done := make(chan struct{})
	go func() {
		tr.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	tr.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not exit after Stop")
	}
}
