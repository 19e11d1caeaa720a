package session

import (
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store keeps live sessions keyed by call id. Implementations must allow
// concurrent access for different keys.
type Store interface {
	Get(callID string) (*Session, bool)
	Set(s *Session)
	Delete(callID string)
	// Evict removes sessions idle longer than maxIdle and reports how many.
	Evict(maxIdle time.Duration, now time.Time) int
	Len() int
}

// Defaults for LRUStore.
const (
	DefaultMaxSessions = 10000
	DefaultTTL         = 30 * time.Minute
)

// LRUStore is an in-memory Store bounded by size and by TTL.
type LRUStore struct {
	cache  *expirable.LRU[string, *Session]
	logger *slog.Logger
}

// NewLRUStore creates a store holding at most size sessions, each dropped
// ttl after its last Set.
func NewLRUStore(size int, ttl time.Duration, logger *slog.Logger) *LRUStore {
	if size <= 0 {
		size = DefaultMaxSessions
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &LRUStore{logger: logger}
	s.cache = expirable.NewLRU[string, *Session](size, s.onEvict, ttl)
	return s
}

func (s *LRUStore) onEvict(callID string, sess *Session) {
	if sess == nil || sess.Step == StepTerminal {
		return
	}
	s.logger.Debug("session_dropped", "call_id", callID, "step", sess.Step.String())
}

func (s *LRUStore) Get(callID string) (*Session, bool) {
	return s.cache.Get(callID)
}

func (s *LRUStore) Set(sess *Session) {
	if sess == nil || sess.CallID == "" {
		return
	}
	s.cache.Add(sess.CallID, sess)
}

func (s *LRUStore) Delete(callID string) {
	s.cache.Remove(callID)
}

func (s *LRUStore) Evict(maxIdle time.Duration, now time.Time) int {
	if maxIdle <= 0 {
		return 0
	}
	removed := 0
	for _, id := range s.cache.Keys() {
		sess, ok := s.cache.Peek(id)
		if !ok {
			continue
		}
		if now.Sub(sess.UpdatedAt) > maxIdle {
			s.cache.Remove(id)
			removed++
		}
	}
	return removed
}

func (s *LRUStore) Len() int {
	return s.cache.Len()
}
