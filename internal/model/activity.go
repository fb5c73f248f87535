package model

import "github.com/Loskoss/Productivity-Tracker/internal/timecalc"

// Recognized detail keys. The map permits arbitrary extra keys; these two
// are the contract written by the tracker on every focus change.
const (
	DetailExe         = "exe"
	DetailWindowTitle = "window_title"
)

// Activity is a normalized application identity accumulating usage time
// across one or more entries. TotalSeconds and TotalTime are derived from
// the entries and kept in sync on every append.
type Activity struct {
	Name         string            `json:"name"`
	Details      map[string]string `json:"details"`
	TotalSeconds int64             `json:"total_seconds"`
	TotalTime    string            `json:"total_time"`
	TimeEntries  []TimeEntry       `json:"time_entries"`
}

// NewActivity builds an activity from a raw application name, normalizing it
// via CleanAppName, and computes the total over the initial entries.
func NewActivity(rawName string, entries []TimeEntry, details map[string]string) *Activity {
	a := &Activity{
		Name:        CleanAppName(rawName),
		Details:     details,
		TimeEntries: entries,
	}
	if a.Details == nil {
		a.Details = map[string]string{}
	}
	if a.TimeEntries == nil {
		a.TimeEntries = []TimeEntry{}
	}
	a.Recompute()
	return a
}

// AppendEntry appends an entry and updates the cached total.
func (a *Activity) AppendEntry(e TimeEntry) {
	a.TimeEntries = append(a.TimeEntries, e)
	a.TotalSeconds += e.DurationSeconds
	a.TotalTime = timecalc.FormatDuration(a.TotalSeconds)
}

// Recompute recalculates the total from scratch. Entry counts stay in the
// hundreds per day, so this is cheap.
func (a *Activity) Recompute() {
	var total int64
	for _, e := range a.TimeEntries {
		total += e.DurationSeconds
	}
	a.TotalSeconds = total
	a.TotalTime = timecalc.FormatDuration(total)
}

// SetDetails replaces the detail map; last observation wins.
func (a *Activity) SetDetails(details map[string]string) {
	if details == nil {
		details = map[string]string{}
	}
	a.Details = details
}

// Clone returns a deep copy, safe to hand to readers outside the tracker's
// lock.
func (a *Activity) Clone() *Activity {
	cp := &Activity{
		Name:         a.Name,
		Details:      make(map[string]string, len(a.Details)),
		TotalSeconds: a.TotalSeconds,
		TotalTime:    a.TotalTime,
		TimeEntries:  make([]TimeEntry, len(a.TimeEntries)),
	}
	for k, v := range a.Details {
		cp.Details[k] = v
	}
	copy(cp.TimeEntries, a.TimeEntries)
	return cp
}
