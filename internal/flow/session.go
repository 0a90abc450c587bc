package flow

import (
	"log/slog"
	"sync"
	"time"
)

// Session is one in-flight dialogue for a (user, kind) pair. Draft maps
// field names to their canonical collected values and grows until a
// terminal state clears the session.
type Session struct {
	UserID    int64
	Kind      Kind
	State     State
	Draft     map[string]string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewSession creates an empty session at the given entry state.
func NewSession(userID int64, kind Kind, state State, now time.Time) *Session {
	return &Session{
		UserID:    userID,
		Kind:      kind,
		State:     state,
		Draft:     make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Merge copies the given fields into the draft.
func (s *Session) Merge(set map[string]string) {
	for k, v := range set {
		s.Draft[k] = v
	}
}

// SessionStore tracks at most one in-flight dialogue per (user, kind).
// It is ephemeral: nothing survives a restart and a cleared session has
// no representation.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]map[Kind]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]map[Kind]*Session)}
}

// Get returns the live session for (user, kind), or nil.
func (st *SessionStore) Get(userID int64, kind Kind) *Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[userID][kind]
}

// Put stores a session, unconditionally overwriting any existing one for
// the same (user, kind). Starting a new dialogue of a kind abandons a
// stale one.
func (st *SessionStore) Put(sess *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.sessions[sess.UserID] == nil {
		st.sessions[sess.UserID] = make(map[Kind]*Session)
	}
	if old := st.sessions[sess.UserID][sess.Kind]; old != nil && old != sess {
		slog.Debug("session overwritten", "userID", sess.UserID, "kind", sess.Kind, "oldState", old.State)
	}
	st.sessions[sess.UserID][sess.Kind] = sess
}

// Clear removes the session for (user, kind), if any.
func (st *SessionStore) Clear(userID int64, kind Kind) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions[userID], kind)
	if len(st.sessions[userID]) == 0 {
		delete(st.sessions, userID)
	}
}

// ClearAll removes every live session for a user and returns how many
// were cleared. Clearing with none active is a no-op, which makes the
// global cancel idempotent.
func (st *SessionStore) ClearAll(userID int64) int {
	st.mu.Lock()
	defer st.mu.Unlock()
	n := len(st.sessions[userID])
	delete(st.sessions, userID)
	return n
}

// Active returns the user's live sessions, most recently updated first.
func (st *SessionStore) Active(userID int64) []*Session {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []*Session
	for _, sess := range st.sessions[userID] {
		out = append(out, sess)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].UpdatedAt.After(out[j-1].UpdatedAt); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
