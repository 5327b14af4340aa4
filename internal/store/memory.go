// internal/store/memory.go
//
// In-memory implementation of the session Store.
// Sessions are ephemeral: a poem session lives only as long as the player
// is on the board, so nothing here is durable.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Update holds the store lock while the callback runs, so every game
//     has exactly one writer at a time.
//   - Sessions idle longer than the TTL are dropped by Sweep.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/poemlink/internal/game"
)

// ErrNotFound is returned for unknown or expired game ids.
var ErrNotFound = errors.New("store: game not found")

// Store defines the persistence interface for game sessions.
type Store interface {
	// Save persists or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Update runs fn on the stored game under the store's write lock.
	// The error from fn is returned as-is.
	Update(ctx context.Context, id string, fn func(g *game.Game) error) error

	// Delete removes a game. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
}

type entry struct {
	g       *game.Game
	touched time.Time
}

// Memory is an in-memory map-based Store.
type Memory struct {
	mu    sync.Mutex
	games map[string]*entry
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore constructs an in-memory Store. ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *Memory {
	return &Memory{games: make(map[string]*entry), ttl: ttl, now: time.Now}
}

// Save adds or updates the game in the map.
func (m *Memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[g.ID] = &entry{g: g, touched: m.now()}
	return nil
}

// Update looks up id and applies fn while holding the lock.
func (m *Memory) Update(ctx context.Context, id string, fn func(g *game.Game) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.games[id]
	if !ok || m.expired(e) {
		delete(m.games, id)
		return ErrNotFound
	}
	e.touched = m.now()
	return fn(e.g)
}

// Delete removes id.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.games, id)
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, e := range m.games {
		if m.expired(e) {
			delete(m.games, id)
			n++
		}
	}
	return n
}

// Len reports how many sessions are held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.games)
}

func (m *Memory) expired(e *entry) bool {
	return m.ttl > 0 && m.now().Sub(e.touched) > m.ttl
}
