package store

import (
	"fmt"
	"sync"
	"time"

	"github.com/annedoesstuff/budgetBenzin/internal/fuel"
)

// MemoryStore is a concurrency-safe in-memory holder of the current session.
// Sessions are replaced as a whole; a published History is never modified.
type MemoryStore struct {
	mu sync.RWMutex

	current *fuel.Session
	lastErr error

	// retention configuration
	maxSnapshots int           // max number of snapshots kept (0 = unlimited)
	maxAge       time.Duration // max age relative to the latest snapshot (0 = unlimited)
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxSnapshots is <= 0, it is treated as unlimited.
func NewMemoryStore(maxSnapshots int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxSnapshots: maxSnapshots,
		maxAge:       maxAge,
	}
}

// SaveSession applies retention to the session's history and makes it the
// current session. The stored session is returned.
func (s *MemoryStore) SaveSession(session fuel.Session) fuel.Session {
	session.History.Snapshots = s.retain(session.History.Snapshots)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = &session
	s.lastErr = nil
	return session
}

// RecordFailure remembers the error of a failed load. The current session,
// if any, stays in place.
func (s *MemoryStore) RecordFailure(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = err
}

// Current returns the current session. Before the first successful load it
// returns fuel.ErrNotLoaded, wrapping the last load error if there was one.
func (s *MemoryStore) Current() (fuel.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		if s.lastErr != nil {
			return fuel.Session{}, fmt.Errorf("%w: %w", fuel.ErrNotLoaded, s.lastErr)
		}
		return fuel.Session{}, fuel.ErrNotLoaded
	}
	return *s.current, nil
}

// LastError returns the error of the most recent load, or nil if it succeeded.
func (s *MemoryStore) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// retain returns the snapshots that survive the retention limits without
// modifying the input slice.
func (s *MemoryStore) retain(snaps []fuel.Snapshot) []fuel.Snapshot {
	if len(snaps) == 0 {
		return snaps
	}

	start := 0

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := snaps[len(snaps)-1].Timestamp.Add(-s.maxAge)
		for start < len(snaps) && snaps[start].Timestamp.Before(cutoff) {
			start++
		}
	}

	// Enforce retention by count.
	if s.maxSnapshots > 0 && len(snaps)-start > s.maxSnapshots {
		start = len(snaps) - s.maxSnapshots
	}

	if start == 0 {
		return snaps
	}
	out := make([]fuel.Snapshot, len(snaps)-start)
	copy(out, snaps[start:])
	return out
}
