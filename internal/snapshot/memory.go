package snapshot

import (
	"context"
	"sync"

	"github.com/bradykim7/menza/internal/models"
)

// MemoryStore is a Store that lives only as long as the process
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[Key]string
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[Key]string)}
}

// Get implements Store
func (s *MemoryStore) Get(_ context.Context, key Key) (models.FoodStatus, bool, error) {
	s.mu.RLock()
	raw, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return "", false, nil
	}
	status, valid := decode(raw)
	return status, valid, nil
}

// Set implements Store
func (s *MemoryStore) Set(_ context.Context, key Key, status models.FoodStatus) error {
	s.mu.Lock()
	s.entries[key] = string(status)
	s.mu.Unlock()
	return nil
}

// Prune implements Store
func (s *MemoryStore) Prune(_ context.Context, userID string, keep []string) (int, error) {
	keepSet := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		keepSet[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key := range s.entries {
		if key.UserID != userID {
			continue
		}
		if _, ok := keepSet[key.FoodID]; !ok {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored entries
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
