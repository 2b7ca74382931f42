package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore хранилище состояний в памяти процесса.
// Используется в тестах и в окружениях без Redis.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

// NewMemoryStore создает хранилище состояний в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[uuid.UUID]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, appointmentID uuid.UUID) (*State, error) {
	s.mu.RLock()
	entry, ok := s.entries[appointmentID]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrStateNotFound
	}

	state := entry.state
	return &state, nil
}

func (s *MemoryStore) Set(_ context.Context, state *State, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[state.AppointmentID] = memoryEntry{
		state:     *state,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, appointmentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, appointmentID)
	return nil
}
