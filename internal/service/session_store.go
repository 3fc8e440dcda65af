package service

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps the live sessions of the HTTP server in memory.
type SessionStore struct {
	svc      *RAGService
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionStore(svc *RAGService) *SessionStore {
	return &SessionStore{svc: svc, sessions: make(map[string]*Session)}
}

func (st *SessionStore) Create() *Session {
	sess := st.svc.NewSession(uuid.NewString())
	st.mu.Lock()
	st.sessions[sess.ID()] = sess
	st.mu.Unlock()
	return sess
}

func (st *SessionStore) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sess, ok := st.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (st *SessionStore) Delete(id string) error {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.Reset()
	return nil
}

func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
