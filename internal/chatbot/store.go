package chatbot

import (
	"context"
	"time"

	"FoodAdvisor_V0.1/internal/metrics"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	DefaultSessionTTL      = 30 * time.Minute
	DefaultSessionCapacity = 10000
)

// MemoryStore keeps one Memory per session id. Implementations must tolerate concurrent
// use across different ids; turns of the same id are serialized by the Service.
type MemoryStore interface {
	// Load returns the memory of the session and whether it existed.
	Load(ctx context.Context, sessionID string) (Memory, bool, error)

	// Save stores the memory and restarts the idle timeout of the session.
	Save(ctx context.Context, sessionID string, mem Memory) error

	// Delete drops the session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error
}

// LRUStore is an in-process MemoryStore bounded by capacity and idle TTL.
type LRUStore struct {
	cache *expirable.LRU[string, Memory]
}

// NewLRUStore creates a store holding at most capacity sessions, each forgotten after ttl
// without a Save. Non-positive arguments fall back to the defaults.
func NewLRUStore(capacity int, ttl time.Duration) *LRUStore {
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	onEvict := func(string, Memory) {
		metrics.SessionsDropped.Inc()
	}
	return &LRUStore{cache: expirable.NewLRU[string, Memory](capacity, onEvict, ttl)}
}

// Load implements MemoryStore.
func (s *LRUStore) Load(_ context.Context, sessionID string) (Memory, bool, error) {
	mem, ok := s.cache.Get(sessionID)
	return mem, ok, nil
}

// Save implements MemoryStore.
func (s *LRUStore) Save(_ context.Context, sessionID string, mem Memory) error {
	s.cache.Add(sessionID, mem)
	return nil
}

// Delete implements MemoryStore.
func (s *LRUStore) Delete(_ context.Context, sessionID string) error {
	s.cache.Remove(sessionID)
	return nil
}

// Len reports the number of sessions currently held, expired ones included until purged.
func (s *LRUStore) Len() int {
	return s.cache.Len()
}
