// internal/store/memory.go
//
// In-memory session store. Sessions only live as long as the process;
// there is no durable backend.
//
// Characteristics:
//   - Stores *Session values keyed by game ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Idle sessions are evicted by Sweep, usually driven by RunJanitor.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordmaster/internal/game"
)

// ErrNotFound is returned by Get and Delete for unknown ids.
var ErrNotFound = errors.New("not found")

// Session binds a game to the player that created it.
type Session struct {
	Game      *game.Service
	Owner     string // player id
	Daily     string // date key when playing the daily word, else ""
	CreatedAt time.Time
}

// ID is the game identifier the session is stored under.
func (s *Session) ID() string { return s.Game.ID() }

// Store defines the session persistence interface.
type Store interface {
	// Save adds or replaces a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by game ID.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session and ends any streams watching it.
	Delete(ctx context.Context, id string) error

	// Len is the number of live sessions.
	Len() int

	// Sweep drops sessions idle for longer than idle and returns how many.
	// Evicted games are closed like deleted ones.
	Sweep(ctx context.Context, idle time.Duration) int
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return newMemory(time.Now)
}

func newMemory(now func() time.Time) *memory {
	return &memory{sessions: make(map[string]*Session), now: now}
}

func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID()] = s
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

// Delete removes the session and closes its game's subscriptions.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	s.Game.Close()
	return nil
}

func (m *memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *memory) Sweep(ctx context.Context, idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.Game.LastActivity().Before(cutoff) {
			delete(m.sessions, id)
			s.Game.Close()
			n++
		}
	}
	return n
}

// RunJanitor sweeps st every interval until ctx is done.
func RunJanitor(ctx context.Context, st Store, every, idle time.Duration) {
	if every <= 0 || idle <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := st.Sweep(ctx, idle); n > 0 {
				log.Info().Int("evicted", n).Int("live", st.Len()).Msg("swept idle sessions")
			}
		}
	}
}
