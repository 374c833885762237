// internal/store/memory.go
//
// In-memory session store.
// A session owns one game.Engine for as long as a player keeps playing it;
// sessions are discarded explicitly or swept once idle.
//
// Characteristics:
//   - Stores *Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/infosphere/wordgame/internal/daily"
	"github.com/infosphere/wordgame/internal/game"
)

var ErrNotFound = errors.New("store: session not found")

// Challenge ties a session to a periodic challenge word.
type Challenge struct {
	Period    daily.Period
	Key       string
	WordIndex int
}

// Session is one player's puzzle.
type Session struct {
	ID        string
	PlayerID  string
	Mode      string
	Engine    *game.Engine
	Challenge *Challenge // nil for normal games
	StartedAt time.Time
	Round     int // bumped by each reset

	lastActivity time.Time // guarded by the owning store
}

// Store defines the persistence interface for sessions.
type Store interface {
	// Save persists or updates a session and marks it active.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID, or ErrNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete discards a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// Sweep discards sessions idle for longer than maxIdle and reports how many.
	Sweep(ctx context.Context, maxIdle time.Duration) int
}

type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session), now: time.Now}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.lastActivity = m.now()
	m.sessions[s.ID] = s
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *memory) Sweep(ctx context.Context, maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().Add(-maxIdle)
	n := 0
	for id, s := range m.sessions {
		if s.lastActivity.Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}
