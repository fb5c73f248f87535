// Package focus abstracts "which window is focused right now" behind a
// Source so the tracker core stays platform-agnostic.
package focus

import (
	"context"
	"errors"

	"github.com/Loskoss/Productivity-Tracker/internal/model"
)

// ErrNoFocus is returned when no window is focused or the platform lookup
// failed. The tracker treats it as a skipped tick, never as a crash.
var ErrNoFocus = errors.New("no focused window")

// Snapshot is a point-in-time observation of the focused window.
type Snapshot struct {
	// Name is the process name as reported by the platform, e.g. "chrome".
	Name string `json:"name"`
	// Exe is the executable path.
	Exe string `json:"exe"`
	// WindowTitle is the focused window's title.
	WindowTitle string `json:"window_title"`
}

// Source supplies focus snapshots. Implementations are platform
// collaborators; the core never inspects windows itself.
type Source interface {
	Current(ctx context.Context) (Snapshot, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Snapshot, error)

// Current calls f.
func (f SourceFunc) Current(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}

// Normalize applies the window-title rules the tracker stores: an empty
// title becomes the process name, and the generic "Untitled" placeholder is
// qualified with the process name.
func (s Snapshot) Normalize() Snapshot {
	switch s.WindowTitle {
	case "":
		s.WindowTitle = s.Name
	case "Untitled":
		s.WindowTitle = s.Name + " - " + s.WindowTitle
	}
	return s
}

// Details returns the activity detail map for this snapshot. Call Normalize
// first; the stored title must be the normalized one.
func (s Snapshot) Details() map[string]string {
	return map[string]string{
		model.DetailExe:         s.Exe,
		model.DetailWindowTitle: s.WindowTitle,
	}
}

// Same reports whether two snapshots describe the same focus target.
// Both the process name and the window title participate: switching browser
// tabs changes the title and counts as a focus change.
func (s Snapshot) Same(other Snapshot) bool {
	return s.Name == other.Name && s.WindowTitle == other.WindowTitle
}
