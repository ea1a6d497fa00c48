package journal

import (
	"context"
	"errors"
	"sync"
)

var (
	// ErrSequenceConflict is returned when Append's expected sequence does
	// not match the store's tail, signalling a concurrent writer.
	ErrSequenceConflict = errors.New("journal: sequence conflict")
)

// Store persists journal entries durably. Append is optimistic: callers pass
// the sequence they believe the store ends at (-1 for an empty store) and
// get ErrSequenceConflict if another writer got there first.
type Store interface {
	// Append adds entries after expectedSeq and returns the new tail
	// sequence. Entries are renumbered contiguously from expectedSeq+1.
	Append(ctx context.Context, expectedSeq int64, entries []Entry) (int64, error)

	// Read returns all entries with Seq >= fromSeq in order.
	Read(ctx context.Context, fromSeq uint64) ([]Entry, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore is an in-memory Store for tests and ephemeral use.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, expectedSeq int64, entries []Entry) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tail := int64(len(s.entries)) - 1
	if expectedSeq != tail {
		return tail, ErrSequenceConflict
	}
	for _, e := range entries {
		tail++
		e.Seq = uint64(tail)
		s.entries = append(s.entries, e)
	}
	return tail, nil
}

func (s *MemoryStore) Read(ctx context.Context, fromSeq uint64) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if fromSeq >= uint64(len(s.entries)) {
		return nil, nil
	}
	return append([]Entry(nil), s.entries[fromSeq:]...), nil
}

func (s *MemoryStore) Close() error { return nil }
