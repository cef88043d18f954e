package database

import (
	"context"
	"sync"

	"github.com/jason-s-yu/lobbyd/internal/apperr"
	"github.com/jason-s-yu/lobbyd/internal/models"
)

// MemoryStore is a process-local credential store with the same contract as
// PostgresStore. Records are copied in and out.
type MemoryStore struct {
	mu          sync.Mutex
	credentials map[string]models.Credential
	sessions    map[string]models.SessionToken // token -> session
	byUsername  map[string]map[string]struct{} // username -> tokens
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		credentials: make(map[string]models.Credential),
		sessions:    make(map[string]models.SessionToken),
		byUsername:  make(map[string]map[string]struct{}),
	}
}

func (s *MemoryStore) InsertCredential(_ context.Context, cred *models.Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.credentials[cred.Username]; exists {
		return apperr.Wrap(apperr.ErrUsernameTaken, cred.Username)
	}
	c := *cred
	c.Salt = append([]byte(nil), cred.Salt...)
	c.PasswordHash = append([]byte(nil), cred.PasswordHash...)
	s.credentials[cred.Username] = c
	return nil
}

func (s *MemoryStore) FindCredential(_ context.Context, username string) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.credentials[username]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrUnknownPlayer, username)
	}
	c.Salt = append([]byte(nil), c.Salt...)
	c.PasswordHash = append([]byte(nil), c.PasswordHash...)
	return &c, nil
}

func (s *MemoryStore) DeleteCredential(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.credentials, username)
	return nil
}

func (s *MemoryStore) ReplaceSession(_ context.Context, session models.SessionToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSessionsLocked(session.Username)
	s.sessions[session.Token] = session
	s.byUsername[session.Username] = map[string]struct{}{session.Token: {}}
	return nil
}

func (s *MemoryStore) FindSession(_ context.Context, token string) (*models.SessionToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[token]
	if !ok {
		return nil, apperr.ErrSessionNotFound
	}
	return &st, nil
}

func (s *MemoryStore) DeleteSessions(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteSessionsLocked(username)
	return nil
}

func (s *MemoryStore) deleteSessionsLocked(username string) {
	for token := range s.byUsername[username] {
		delete(s.sessions, token)
	}
	delete(s.byUsername, username)
}
