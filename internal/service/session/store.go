package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/carezhou/heartline/backend/internal/model/chat"
)

var (
	ErrUserRequired    = errors.New("user id is required")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionClosed   = errors.New("session already closed")
)

// Store keeps sessions, their turns and assessment records in memory.
// It is the only mutable state shared across turns; all access goes
// through the mutex so overlapping requests stay consistent.
type Store struct {
	mu          sync.RWMutex
	sessions    map[string]chat.Session
	turns       map[string][]chat.Turn
	assessments []chat.Assessment
}

// NewStore bootstraps the in-memory store suitable for single-process
// deployments.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]chat.Session),
		turns:    make(map[string][]chat.Turn),
	}
}

// Start provisions a new open session for the user. Existing open
// sessions are left untouched; Active resolves the most recent one.
func (s *Store) Start(_ context.Context, userID string) (chat.Session, error) {
	if userID == "" {
		return chat.Session{}, ErrUserRequired
	}

	session := chat.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.turns[session.ID] = make([]chat.Turn, 0, 16)
	s.mu.Unlock()

	return session, nil
}

// Get retrieves a session by identifier.
func (s *Store) Get(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Active returns the user's most recently started open session.
func (s *Store) Active(_ context.Context, userID string) (chat.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest chat.Session
	found := false
	for _, session := range s.sessions {
		if session.UserID != userID || !session.Open() {
			continue
		}
		if !found || session.StartedAt.After(latest.StartedAt) {
			latest = session
			found = true
		}
	}
	return latest, found
}

// AppendExchange commits a user turn and its paired bot response
// together. Either both turns are recorded or neither is, so a failure
// cannot leave a user turn without its response.
func (s *Store) AppendExchange(_ context.Context, userTurn, botTurn chat.Turn) error {
	if userTurn.SessionID == "" || userTurn.SessionID != botTurn.SessionID {
		return ErrSessionNotFound
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[userTurn.SessionID]
	if !ok {
		return ErrSessionNotFound
	}
	if !session.Open() {
		return ErrSessionClosed
	}

	now := time.Now().UTC()
	for _, turn := range []*chat.Turn{&userTurn, &botTurn} {
		turn.ID = uuid.NewString()
		if turn.CreatedAt.IsZero() {
			turn.CreatedAt = now
		}
	}

	s.turns[userTurn.SessionID] = append(s.turns[userTurn.SessionID], userTurn, botTurn)
	return nil
}

// RecentTurns returns up to limit stored turns, most recent first.
func (s *Store) RecentTurns(_ context.Context, sessionID string, limit int) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if limit < 0 {
		limit = 0
	}
	if limit > len(turns) {
		limit = len(turns)
	}

	recent := make([]chat.Turn, 0, limit)
	for i := len(turns) - 1; i >= len(turns)-limit; i-- {
		recent = append(recent, turns[i])
	}
	return recent, nil
}

// Transcript returns all stored turns in chronological order.
func (s *Store) Transcript(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns, ok := s.turns[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}

	copied := make([]chat.Turn, len(turns))
	copy(copied, turns)
	return copied, nil
}

// Close ends the session and records its summary. Closing an already
// closed session fails rather than rewriting history.
func (s *Store) Close(_ context.Context, sessionID, summaryText string) (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	if !session.Open() {
		return chat.Session{}, ErrSessionClosed
	}

	now := time.Now().UTC()
	session.EndedAt = &now
	session.Summary = summaryText
	s.sessions[sessionID] = session
	return session, nil
}

// SetSummary backfills a summary on a session that ended without one.
func (s *Store) SetSummary(_ context.Context, sessionID, summaryText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	session.Summary = summaryText
	s.sessions[sessionID] = session
	return nil
}

// List returns all sessions ordered by start time, oldest first.
func (s *Store) List(_ context.Context) []chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]chat.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].StartedAt.Before(sessions[j].StartedAt)
	})
	return sessions
}

// RecordAssessment appends a per-turn risk evaluation for reporting.
func (s *Store) RecordAssessment(_ context.Context, assessment chat.Assessment) {
	assessment.ID = uuid.NewString()
	if assessment.CreatedAt.IsZero() {
		assessment.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	s.assessments = append(s.assessments, assessment)
	s.mu.Unlock()
}

// Assessments returns recorded assessments for a session, oldest first.
func (s *Store) Assessments(_ context.Context, sessionID string) []chat.Assessment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []chat.Assessment
	for _, a := range s.assessments {
		if a.SessionID == sessionID {
			out = append(out, a)
		}
	}
	return out
}
