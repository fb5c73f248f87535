package model

import (
	"time"

	"github.com/Loskoss/Productivity-Tracker/internal/timecalc"
)

// Session is the full set of activities observed on one calendar day.
// The Activities slice owns every activity; the tracker's "current" pointer
// always refers into this slice, never to a copy.
type Session struct {
	Date       string      `json:"date"`
	Activities []*Activity `json:"activities"`
}

// NewSession returns an empty session for the given day.
func NewSession(day time.Time) *Session {
	return &Session{
		Date:       day.Format(timecalc.DateKey),
		Activities: []*Activity{},
	}
}

// Find returns the activity whose normalized name matches rawName, or nil.
func (s *Session) Find(rawName string) *Activity {
	name := CleanAppName(rawName)
	for _, a := range s.Activities {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// FindOrCreate returns the activity for rawName's normalized form, creating
// it with empty entries and the given details if it does not exist yet.
// Names are unique within a session.
func (s *Session) FindOrCreate(rawName string, details map[string]string) *Activity {
	if a := s.Find(rawName); a != nil {
		return a
	}
	a := NewActivity(rawName, nil, details)
	s.Activities = append(s.Activities, a)
	return a
}

// TotalSeconds sums the totals of all activities.
func (s *Session) TotalSeconds() int64 {
	var total int64
	for _, a := range s.Activities {
		total += a.TotalSeconds
	}
	return total
}

// Clone deep-copies the session.
func (s *Session) Clone() *Session {
	cp := &Session{
		Date:       s.Date,
		Activities: make([]*Activity, len(s.Activities)),
	}
	for i, a := range s.Activities {
		cp.Activities[i] = a.Clone()
	}
	return cp
}
