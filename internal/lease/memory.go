package lease

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryManager is a Manager for a single process
type MemoryManager struct {
	mu    sync.Mutex
	held  map[string]memoryEntry
	nowFn func() time.Time
}

type memoryEntry struct {
	token     string
	expiresAt time.Time
}

// NewMemoryManager creates an in-process lease manager
func NewMemoryManager() *MemoryManager {
	return &MemoryManager{
		held:  make(map[string]memoryEntry),
		nowFn: time.Now,
	}
}

// TryAcquire implements Manager
func (m *MemoryManager) TryAcquire(_ context.Context, name string, ttl time.Duration) (Lease, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	if entry, ok := m.held[name]; ok && now.Before(entry.expiresAt) {
		return nil, ErrHeld
	}

	token := uuid.NewString()
	m.held[name] = memoryEntry{token: token, expiresAt: now.Add(ttl)}

	return &memoryLease{manager: m, name: name, token: token}, nil
}

func (m *MemoryManager) release(name, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.held[name]; ok && entry.token == token {
		delete(m.held, name)
	}
}

type memoryLease struct {
	manager *MemoryManager
	name    string
	token   string
}

func (l *memoryLease) Name() string {
	return l.name
}

func (l *memoryLease) Release(_ context.Context) error {
	l.manager.release(l.name, l.token)
	return nil
}
