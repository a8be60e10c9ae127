// Package storetest provides an in-memory SessionStore for tests.
package storetest

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"claim-intake/internal/common/errors"
	"claim-intake/internal/models"
)

// MemoryStore is a mutex-guarded SessionStore. Setting Fail makes every call
// return a store-unavailable error.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
	fail     error

	Creates int
	Merges  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: map[string]*models.Session{}}
}

// Fail injects a driver error into every subsequent call; nil clears it.
func (m *MemoryStore) Fail(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = err
}

func (m *MemoryStore) failure(op string) error {
	if m.fail == nil {
		return nil
	}
	return errors.NewStoreUnavailableError(op, m.fail)
}

func (m *MemoryStore) GetOrCreate(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("create session"); err != nil {
		return nil, err
	}

	s, ok := m.sessions[sessionID]
	if !ok {
		now := time.Now().UTC()
		s = &models.Session{SessionID: sessionID, StoredStatus: models.StatusOpen, CreatedAt: now, UpdatedAt: now}
		m.sessions[sessionID] = s
		m.Creates++
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) MergeFields(_ context.Context, sessionID string, values models.FieldValues) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("merge fields"); err != nil {
		return err
	}

	nonEmpty := false
	for _, v := range values {
		if v != "" {
			nonEmpty = true
		}
	}
	if !nonEmpty {
		return nil
	}

	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.NewSessionNotFoundError(sessionID)
	}
	s.Apply(values)
	s.UpdatedAt = time.Now().UTC()
	m.Merges++
	return nil
}

func (m *MemoryStore) Fetch(_ context.Context, sessionID string) (*models.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("fetch session"); err != nil {
		return nil, err
	}

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.NewSessionNotFoundError(sessionID)
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) MarkPhotoUploaded(_ context.Context, sessionID, damageReport string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("mark photo uploaded"); err != nil {
		return err
	}

	s, ok := m.sessions[sessionID]
	if !ok {
		return errors.NewSessionNotFoundError(sessionID)
	}
	s.PhotoUploaded = true
	s.DamageReport = damageReport
	return nil
}

func (m *MemoryStore) MarkComplete(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failure("mark complete"); err != nil {
		return false, err
	}

	s, ok := m.sessions[sessionID]
	if !ok || s.StoredStatus != models.StatusOpen {
		return false, nil
	}
	s.StoredStatus = models.StatusComplete
	return true, nil
}

func (m *MemoryStore) Ping(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failure("ping")
}

// Put seeds a session.
func (m *MemoryStore) Put(s models.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.StoredStatus == "" {
		s.StoredStatus = models.StatusOpen
	}
	m.sessions[s.SessionID] = &s
}

// Len reports how many sessions exist.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// ErrInjected is a convenient driver error for Fail.
var ErrInjected = stderrors.New("connection refused")
