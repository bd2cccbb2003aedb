package models

import "time"

// Task is a single recorded work session. ID and CreatedAt are
// assigned once at creation and never change afterwards.
type Task struct {
	ID               string
	Description      string
	StartTime        time.Time
	EndTime          time.Time
	ReferenceTickets []string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Duration returns the length of the work session.
func (t *Task) Duration() time.Duration {
	return t.EndTime.Sub(t.StartTime)
}

// Clone returns a deep copy so callers can't mutate stored state
// through the shared tickets slice.
func (t *Task) Clone() *Task {
	clone := *t
	if t.ReferenceTickets != nil {
		clone.ReferenceTickets = make([]string, len(t.ReferenceTickets))
		copy(clone.ReferenceTickets, t.ReferenceTickets)
	}
	return &clone
}
