package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

// ErrInvalidRange is returned when a time entry would end before it starts.
// Under a well-behaved clock the tracker never produces such a pair; a
// system clock stepped backwards can.
var ErrInvalidRange = errors.New("time entry ends before it starts")

// TimeEntry is one contiguous span of focus time. DurationSeconds is derived
// from the timestamps and is persisted alongside them for fast reload.
type TimeEntry struct {
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	DurationSeconds int64     `json:"duration_seconds"`
}

// NewTimeEntry builds an entry spanning [start, end], rejecting end < start
// with ErrInvalidRange. The duration is floored to whole seconds.
func NewTimeEntry(start, end time.Time) (TimeEntry, error) {
	if end.Before(start) {
		return TimeEntry{}, fmt.Errorf("%w: start %s, end %s",
			ErrInvalidRange, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeEntry{
		StartTime:       start,
		EndTime:         end,
		DurationSeconds: int64(end.Sub(start) / time.Second),
	}, nil
}

// Reconcile recomputes the duration from the timestamps, overwriting
// whatever value was deserialized. The recomputed value is authoritative;
// the previously stored value and whether it disagreed are returned so the
// caller can flag the mismatch.
func (e *TimeEntry) Reconcile() (stored int64, mismatch bool) {
	stored = e.DurationSeconds
	e.DurationSeconds = int64(e.EndTime.Sub(e.StartTime) / time.Second)
	return stored, stored != e.DurationSeconds
}

// Label formats the duration as "1h 1m", "45m" or "30s".
func (e TimeEntry) Label() string {
	return timecalc.FormatDuration(e.DurationSeconds)
}
