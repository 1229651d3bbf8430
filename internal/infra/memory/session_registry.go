package memory

import (
	"sync"
	"time"

	"tugofwar-quiz-service/internal/app"
)

// SessionRegistry is an in-memory implementation of app.SessionRegistry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Insert(code string, s *app.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[code]; taken {
		return false
	}
	r.sessions[code] = s
	return true
}

func (r *SessionRegistry) Get(code string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[code]
	return s, ok
}

func (r *SessionRegistry) Delete(code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, code)
}

// Sweep removes sessions that have gone idle. A live code is never reused
// while its session is still registered, so removal is the only way a code
// returns to the pool.
func (r *SessionRegistry) Sweep(now time.Time, idleAfter time.Duration) []*app.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var swept []*app.Session
	for code, s := range r.sessions {
		if s.IdleFor(now) < idleAfter {
			continue
		}
		delete(r.sessions, code)
		swept = append(swept, s)
	}
	return swept
}
