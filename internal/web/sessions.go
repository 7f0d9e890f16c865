package web

// sessions.go keeps the open view sessions of the server.
//
// Every session owns one view.Table behind its own mutex; the store only
// guards the map. Sessions unused for longer than the TTL are removed by the
// sweeper, which runs until its context is cancelled.

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/deeptable/internal/record"
	"github.com/JonMunkholm/deeptable/internal/view"
)

var (
	// ErrSessionNotFound is returned for unknown, malformed or expired ids.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions is returned when the store is full.
	ErrTooManySessions = errors.New("too many sessions open, please try again later")
)

// Session is one client's view over the dataset.
type Session struct {
	ID string

	mu       sync.Mutex
	table    *view.Table
	lastUsed time.Time
	event    *HookEvent // set by the table's hooks during Notify
}

// HookEvent is what an add, edit or delete hook was notified with.
type HookEvent struct {
	Action string        `json:"action"`
	Index  *int          `json:"index,omitempty"`
	Record record.Record `json:"record,omitempty"`
}

func newSession() *Session {
	return &Session{ID: uuid.NewString()}
}

// hooks returns view hooks that record the notification on the session.
// They run with the session locked.
func (s *Session) hooks() view.Hooks {
	row := func(action string) func(int, record.Record) {
		return func(index int, r record.Record) {
			s.event = &HookEvent{Action: action, Index: &index, Record: r}
		}
	}
	return view.Hooks{
		OnAdd:    func() { s.event = &HookEvent{Action: "add"} },
		OnEdit:   row("edit"),
		OnDelete: row("delete"),
	}
}

// Do runs fn with exclusive access to the session's table and returns the
// page afterwards. When fn fails the page is not built.
func (s *Session) Do(fn func(t *view.Table) error) (view.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.table); err != nil {
		return view.Page{}, err
	}
	return s.table.Snapshot(), nil
}

// View runs fn with exclusive access to the session's table.
func (s *Session) View(fn func(t *view.Table)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.table)
}

// Notify runs fn, which invokes one of the table's hooks, and returns the
// event the hook received.
func (s *Session) Notify(fn func(t *view.Table) error) (HookEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.event = nil
	if err := fn(s.table); err != nil {
		return HookEvent{}, err
	}
	if s.event == nil {
		return HookEvent{}, errors.New("hook was not invoked")
	}
	return *s.event, nil
}

// SessionStore holds the open sessions.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	max      int
	ttl      time.Duration
	now      func() time.Time
}

// NewSessionStore returns an empty store allowing max sessions that expire
// ttl after their last use.
func NewSessionStore(max int, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		max:      max,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Add registers a session whose table is set.
func (st *SessionStore) Add(sess *Session) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if len(st.sessions) >= st.max {
		return ErrTooManySessions
	}

	sess.lastUsed = st.now()
	st.sessions[sess.ID] = sess
	return nil
}

// Get returns the session and marks it used.
func (st *SessionStore) Get(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrSessionNotFound
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastUsed = st.now()
	return sess, nil
}

// Remove closes a session. Unknown ids report ErrSessionNotFound.
func (st *SessionStore) Remove(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()

	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len returns the number of open sessions.
func (st *SessionStore) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep removes every session idle for longer than the TTL and returns how
// many were removed.
func (st *SessionStore) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()

	cutoff := st.now().Add(-st.ttl)
	removed := 0
	for id, sess := range st.sessions {
		if sess.lastUsed.Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// StartSweeper removes expired sessions every interval until ctx is
// cancelled.
func (st *SessionStore) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("session sweeper started", "interval", interval, "ttl", st.ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("session sweeper stopped")
			return
		case <-ticker.C:
			start := time.Now()
			if removed := st.Sweep(); removed > 0 {
				slog.Info("expired sessions removed",
					"removed", removed,
					"open", st.Len(),
					"duration_ms", time.Since(start).Milliseconds(),
				)
			}
		}
	}
}
