// internal/storage/session_store.go
package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Annany2002/cvm-baseprep/internal/generation"
	"github.com/Annany2002/cvm-baseprep/internal/session"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionEntry is a draft session and its most recent generation run, if any.
type SessionEntry struct {
	ID        string
	Session   session.Session
	Run       *generation.Run
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SessionStore keeps draft sessions in memory. They do not survive a restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionEntry
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*SessionEntry),
		now:      time.Now,
	}
}

// Create stores s under a fresh id.
func (st *SessionStore) Create(s session.Session) SessionEntry {
	now := st.now()
	entry := &SessionEntry{ID: uuid.New().String(), Session: s, CreatedAt: now, UpdatedAt: now}

	st.mu.Lock()
	st.sessions[entry.ID] = entry
	st.mu.Unlock()

	customLog.Debugf("Storage: Created session %s", entry.ID)
	return *entry
}

// Get returns a copy of the entry.
func (st *SessionStore) Get(id string) (SessionEntry, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	entry, ok := st.sessions[id]
	if !ok {
		return SessionEntry{}, ErrSessionNotFound
	}
	return *entry, nil
}

// Update applies fn to the entry under the store lock. The entry is replaced
// only when fn returns nil, so a failed transition leaves the session unchanged.
func (st *SessionStore) Update(id string, fn func(*SessionEntry) error) (SessionEntry, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	current, ok := st.sessions[id]
	if !ok {
		return SessionEntry{}, ErrSessionNotFound
	}
	next := *current
	if err := fn(&next); err != nil {
		return *current, err
	}
	next.ID = current.ID
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = st.now()
	st.sessions[id] = &next
	return next, nil
}

// Delete discards the session. A running generation keeps going but is no
// longer reachable through the store.
func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	return nil
}

// Len reports the number of live sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
