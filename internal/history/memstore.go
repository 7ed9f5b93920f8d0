package history

import (
	"context"
	"sync"
	"time"
)

// MemStore is an in-memory [Store]. It is the default when no database DSN
// is configured; attempts live only as long as the process.
type MemStore struct {
	mu       sync.Mutex
	nextID   int64
	attempts []Attempt
}

// Compile-time interface check.
var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{nextID: 1}
}

// Record appends the attempt and assigns its ID and CreatedAt.
func (s *MemStore) Record(_ context.Context, a *Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a.ID = s.nextID
	s.nextID++
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	s.attempts = append(s.attempts, *a)
	return nil
}

// ListRecent returns up to limit attempts, newest first.
func (s *MemStore) ListRecent(_ context.Context, limit int) ([]Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return []Attempt{}, nil
	}
	if limit > len(s.attempts) {
		limit = len(s.attempts)
	}

	out := make([]Attempt, 0, limit)
	for i := len(s.attempts) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.attempts[i])
	}
	return out, nil
}
