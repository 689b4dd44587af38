// Package session holds the ephemeral per-(chat, member) state used to
// correlate a photo message with a later save command. Nothing here is
// persisted; stale entries are swept by the Sweeper.
package session

import (
	"sync"
	"time"
)

// Key identifies one participant in one chat
type Key struct {
	ChatID   uint
	MemberID uint
}

type entry struct {
	photoFileID string
	touched     time.Time
}

// Store is an in-memory pending-state store. It is safe for concurrent
// use across different keys; access for the same key is serialized by the
// store lock.
type Store struct {
	mu      sync.Mutex
	pending map[Key]entry
	now     func() time.Time
}

// NewStore creates a new session store
func NewStore() *Store {
	return &Store{
		pending: make(map[Key]entry),
		now:     time.Now,
	}
}

// SetPhoto records a pending photo reference, replacing any previous one
func (s *Store) SetPhoto(key Key, fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[key] = entry{photoFileID: fileID, touched: s.now()}
}

// Photo returns the pending photo reference, if any
func (s *Store) Photo(key Key) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.pending[key]
	if !ok || e.photoFileID == "" {
		return "", false
	}
	return e.photoFileID, true
}

// ClearPhoto discards the pending photo reference, if any
func (s *Store) ClearPhoto(key Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, key)
}

// Sweep removes entries idle for longer than keep and returns how many
// were dropped.
func (s *Store) Sweep(keep time.Duration) int {
	cutoff := s.now().Add(-keep)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, e := range s.pending {
		if e.touched.Before(cutoff) {
			delete(s.pending, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}
