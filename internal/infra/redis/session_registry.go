package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"tugofwar-quiz-service/internal/app"
)

// SessionRegistry is a Redis-aware implementation of app.SessionRegistry.
// Notes:
//   - It still keeps a local in-memory map of sessions, because the broadcast
//     and timer machinery is in-process.
//   - Redis marks session liveness so room codes stay unique across restarts
//     of collaborating tools (and could be extended to cross-instance pub/sub).
type SessionRegistry struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Insert(code string, s *app.Session) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.sessions[code]; taken {
		return false
	}
	// Refuse codes another collaborating process has marked live.
	ok, err := r.client.SetNX(context.Background(), r.key(code), "1", r.ttl).Result()
	if err == nil && !ok {
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
	r.deleteLocked(code)
}

func (r *SessionRegistry) Sweep(now time.Time, idleAfter time.Duration) []*app.Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	var swept []*app.Session
	for code, s := range r.sessions {
		if s.IdleFor(now) < idleAfter {
			continue
		}
		r.deleteLocked(code)
		swept = append(swept, s)
	}
	return swept
}

func (r *SessionRegistry) deleteLocked(code string) {
	if _, ok := r.sessions[code]; !ok {
		return
	}
	delete(r.sessions, code)
	_ = r.client.Del(context.Background(), r.key(code)).Err()
}

func (r *SessionRegistry) key(code string) string {
	return "tugofwar:session:" + code
}
