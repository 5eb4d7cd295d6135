package cart

import (
	"context"
	"sync"
	"time"

	"github.com/automarket/automarket-backend/pkg/logger"
)

type session struct {
	store    *Store
	lastUsed time.Time
	holders  int
}

// Manager hands out one Store per browsing session. It is created once at
// startup and shared by all handlers.
type Manager struct {
	mu       sync.Mutex
	storage  Storage
	prefix   string
	sessions map[string]*session
	now      func() time.Time
}

func NewManager(storage Storage, keyPrefix string) *Manager {
	return &Manager{
		storage:  storage,
		prefix:   keyPrefix,
		sessions: make(map[string]*session),
		now:      time.Now,
	}
}

// Acquire returns the cart for sessionID, loading it from storage on first
// use. The store is never evicted while held; callers must call release
// once they are done with it.
func (m *Manager) Acquire(ctx context.Context, sessionID string) (store *Store, release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		s = &session{store: Open(ctx, m.storage, m.prefix+sessionID)}
		m.sessions[sessionID] = s
	}
	s.holders++
	s.lastUsed = m.now()

	var once sync.Once
	return s.store, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			s.holders--
			s.lastUsed = m.now()
		})
	}
}

// Evict drops stores nobody holds that have been idle for longer than
// maxIdle. Their snapshots stay in storage and are reloaded on the next
// request.
func (m *Manager) Evict(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	evicted := 0
	for id, s := range m.sessions {
		if s.holders == 0 && s.lastUsed.Before(cutoff) {
			delete(m.sessions, id)
			evicted++
		}
	}

	if evicted > 0 {
		logger.Debug("Evicted idle cart sessions", map[string]interface{}{
			"evicted":   evicted,
			"remaining": len(m.sessions),
		})
	}
	return evicted
}

// Len returns the number of cached sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
