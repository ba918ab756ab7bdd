package sessionstore

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anandgupta07/coach-sub000/internal/checkout/domain"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore holds encoded sessions in a map. Expired entries are dropped on access.
// Sessions are stored as copies, so callers never share state through the store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	claims  map[uuid.UUID]time.Time
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryStore creates a store whose entries live for ttl after each save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[uuid.UUID]memoryEntry),
		claims:  make(map[uuid.UUID]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithClock replaces the store's clock.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Save(_ context.Context, session *domain.Session) error {
	data, err := encode(session)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[session.ID] = memoryEntry{data: data, expiresAt: m.now().Add(m.ttl)}
	m.sweepLocked()
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	m.mu.Lock()
	entry, ok := m.entries[id]
	if ok && !m.now().Before(entry.expiresAt) {
		delete(m.entries, id)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return nil, nil
	}
	return decode(entry.data)
}

func (m *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// ClaimConfirmation takes the claim unless a live one exists. The check and
// the write happen under one lock.
func (m *MemoryStore) ClaimConfirmation(_ context.Context, id uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if until, ok := m.claims[id]; ok && now.Before(until) {
		return false, nil
	}
	m.claims[id] = now.Add(m.ttl)
	return true, nil
}

func (m *MemoryStore) ReleaseConfirmation(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.claims, id)
	return nil
}

// Len returns the number of live entries.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweepLocked()
	return len(m.entries)
}

func (m *MemoryStore) sweepLocked() {
	now := m.now()
	for id, entry := range m.entries {
		if !now.Before(entry.expiresAt) {
			delete(m.entries, id)
		}
	}
	for id, until := range m.claims {
		if !now.Before(until) {
			delete(m.claims, id)
		}
	}
}

var _ domain.SessionStore = (*MemoryStore)(nil)
