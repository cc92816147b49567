package sessionstore

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/thetoretto/hotpoint-bookings/internal/booking"
)

// ErrNotFound means the session token is unknown or the session
// expired. An abandoned flow leaves nothing behind.
var ErrNotFound = errors.New("booking session not found")

// Store holds in-progress booking sessions keyed by token. Sessions are
// single-writer: the HTTP layer loads, mutates through the flow, and
// saves back; no two requests for the same token run concurrently in
// practice (one rider, one active flow).
type Store interface {
	Get(ctx context.Context, token string) (*booking.Session, error)
	Save(ctx context.Context, s *booking.Session) error
	Delete(ctx context.Context, token string) error
}

type memoryEntry struct {
	session   booking.Session
	expiresAt time.Time
}

// MemoryStore is the dev/test store. TTL handling mirrors the redis
// store: expired sessions read as not found.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memoryEntry
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		sessions: make(map[string]memoryEntry),
		now:      time.Now,
	}
}

func (m *MemoryStore) Get(_ context.Context, token string) (*booking.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[token]
	if !ok || (m.ttl > 0 && m.now().After(e.expiresAt)) {
		delete(m.sessions, token)
		return nil, ErrNotFound
	}
	s := e.session
	return &s, nil
}

func (m *MemoryStore) Save(_ context.Context, s *booking.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.Token] = memoryEntry{session: *s, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}
