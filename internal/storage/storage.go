// Package storage persists one JSON session record per calendar day.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Loskoss/Productivity-Tracker/internal/log"
	"github.com/Loskoss/Productivity-Tracker/internal/model"
	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

// ErrCorruptSession marks a session file that exists but cannot be parsed.
// The caller gets an empty session alongside it and may continue; the bad
// file is preserved under a .corrupt suffix for diagnosis.
var ErrCorruptSession = errors.New("corrupt session file")

// Store reads and writes session files under a single directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created lazily on
// the first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the session directory.
func (s *Store) Dir() string {
	return s.dir
}

// sessionPath returns the file path for the given date, e.g. 2026-02-27.json.
func (s *Store) sessionPath(day time.Time) string {
	return filepath.Join(s.dir, day.Format(timecalc.DateKey)+".json")
}

// Load reads the session for the given date. A missing file yields an empty
// session and no error. A file that fails to parse is renamed to
// <name>.corrupt and an empty session is returned together with
// ErrCorruptSession; a fresh file is only written on the next Save.
func (s *Store) Load(day time.Time) (*model.Session, error) {
	path := s.sessionPath(day)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return model.NewSession(day), nil
	}
	if err != nil {
		return model.NewSession(day), fmt.Errorf("reading %s: %w", path, err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		backupPath := path + ".corrupt"
		_ = os.Rename(path, backupPath)
		return model.NewSession(day), fmt.Errorf("%w: %s (preserved as %s): %v",
			ErrCorruptSession, path, backupPath, err)
	}
	if sess.Date == "" {
		sess.Date = day.Format(timecalc.DateKey)
	}
	if sess.Activities == nil {
		sess.Activities = []*model.Activity{}
	}

	reconcile(&sess, path)
	return &sess, nil
}

// reconcile recomputes every derived duration after load. Timestamps are
// authoritative; a persisted value that disagrees is a data-quality warning,
// not a load failure.
func reconcile(sess *model.Session, path string) {
	for _, a := range sess.Activities {
		for i := range a.TimeEntries {
			stored, mismatch := a.TimeEntries[i].Reconcile()
			if mismatch {
				log.Warn().
					Str("file", path).
					Str("activity", a.Name).
					Int64("stored_seconds", stored).
					Int64("recomputed_seconds", a.TimeEntries[i].DurationSeconds).
					Msg("persisted duration disagrees with timestamps, recomputed value wins")
			}
		}
		a.Recompute()
		if a.Details == nil {
			a.Details = map[string]string{}
		}
	}
}

// Save atomically writes the full session record, overwriting any prior
// record for that date. Saves happen on every focus change, so the write
// goes to a temp file first and is renamed into place.
func (s *Store) Save(sess *model.Session) error {
	day, err := time.ParseInLocation(timecalc.DateKey, sess.Date, time.Local)
	if err != nil {
		return fmt.Errorf("invalid session date %q: %w", sess.Date, err)
	}
	path := s.sessionPath(day)

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("creating session directory: %w", err)
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling session: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// LoadRange loads the sessions for every day in [from, to] inclusive.
// Corrupt days are skipped with a warning so a single bad file cannot sink a
// whole report.
func (s *Store) LoadRange(from, to time.Time) ([]*model.Session, error) {
	var sessions []*model.Session
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		sess, err := s.Load(d)
		if errors.Is(err, ErrCorruptSession) {
			log.Warn().Err(err).Msg("skipping corrupt session in range")
			continue
		}
		if err != nil {
			return nil, err
		}
		if len(sess.Activities) > 0 {
			sessions = append(sessions, sess)
		}
	}
	return sessions, nil
}
