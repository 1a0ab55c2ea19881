// Package cooldown tracks when a budget warning was last sent so the same
// warning is not repeated for a user inside the cooldown window.
package cooldown

import (
	"context"
	"sync"
	"time"

	"github.com/appdev/finance/finance-backend/internal/domain"
)

// Key identifies one warning class for one user
type Key struct {
	UserID int64
	Label  domain.ThresholdLabel
}

// Store records last-sent times per Key.
// Implementations must be safe for concurrent use.
type Store interface {
	// Reserve claims key at now unless it was claimed less than or exactly
	// window ago. It returns true when the caller may send.
	Reserve(ctx context.Context, key Key, now time.Time, window time.Duration) (bool, error)
	// Release forgets key so the next Reserve succeeds. Used when a
	// reserved send could not be handed off.
	Release(ctx context.Context, key Key) error
}

// MemoryStore is a process-local Store. State is lost on restart.
type MemoryStore struct {
	mu   sync.Mutex
	last map[Key]time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{last: make(map[Key]time.Time)}
}

var _ Store = (*MemoryStore)(nil)

// Reserve implements Store
func (s *MemoryStore) Reserve(_ context.Context, key Key, now time.Time, window time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.last[key]; ok && now.Sub(last) <= window {
		return false, nil
	}
	s.last[key] = now
	return true, nil
}

// Release implements Store
func (s *MemoryStore) Release(_ context.Context, key Key) error {
	s.mu.Lock()
	delete(s.last, key)
	s.mu.Unlock()
	return nil
}

// LastSent returns the recorded time for key
func (s *MemoryStore) LastSent(key Key) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.last[key]
	return t, ok
}

// Prune drops entries older than window and returns how many were removed
func (s *MemoryStore) Prune(now time.Time, window time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for k, t := range s.last {
		if now.Sub(t) > window {
			delete(s.last, k)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.last)
}
