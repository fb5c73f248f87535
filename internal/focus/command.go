package focus

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// commandTimeout bounds a single focus lookup so a hung helper cannot stall
// the polling loop for more than a couple of ticks.
const commandTimeout = 2 * time.Second

// CommandSource resolves the focused window by running an external helper
// command that prints a Snapshot as JSON on stdout:
//
//	{"name": "chrome", "exe": "/usr/bin/chrome", "window_title": "Tab A"}
//
// This keeps platform specifics (win32, AppKit, X11 tooling) out of the
// binary entirely.
type CommandSource struct {
	command string
}

// NewCommandSource returns a source backed by the given shell command.
func NewCommandSource(command string) *CommandSource {
	return &CommandSource{command: command}
}

// Current runs the helper and parses its output. An empty command, a failed
// run, or output with no process name all map to ErrNoFocus.
func (c *CommandSource) Current(ctx context.Context) (Snapshot, error) {
	if c.command == "" {
		return Snapshot{}, fmt.Errorf("%w: no focus_command configured", ErrNoFocus)
	}

	ctx, cancel := context.WithTimeout(ctx, commandTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "/bin/sh", "-c", c.command).Output()
	if err != nil {
		return Snapshot{}, fmt.Errorf("%w: running %q: %v", ErrNoFocus, c.command, err)
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(out))), &snap); err != nil {
		return Snapshot{}, fmt.Errorf("%w: parsing helper output: %v", ErrNoFocus, err)
	}
	if snap.Name == "" {
		return Snapshot{}, fmt.Errorf("%w: helper reported no process name", ErrNoFocus)
	}
	return snap.Normalize(), nil
}
