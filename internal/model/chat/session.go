package chat

import "time"

// Session captures one support conversation for a user. A session is
// open while EndedAt is unset; Summary is written once, at close (or
// lazily on first admin read for sessions that ended without one).
type Session struct {
	ID        string     `json:"id"`
	UserID    string     `json:"userId"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Summary   string     `json:"summary,omitempty"`
}

// Open reports whether the session is still accepting turns.
func (s Session) Open() bool {
	return s.EndedAt == nil
}
