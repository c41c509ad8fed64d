// Package dedupe tracks identity keys already present in a batch.
package dedupe

import (
	"context"
	"sync"

	"github.com/okian/evalsync/internal/domain/model"
)

// KeySet records seen document keys so a merge admits each key at most once.
type KeySet interface {
	// SeenAndRecord reports whether k was already recorded and records it if not.
	SeenAndRecord(ctx context.Context, k model.Key) bool

	// Size is the number of distinct keys recorded so far.
	Size() int64
}

// inMemoryKeySet keeps every key for the life of a merge; there is no
// eviction since a forgotten key would let a duplicate row into the batch.
type inMemoryKeySet struct {
	mu       sync.RWMutex
	seen     map[model.Key]struct{}
	capacity int
}

// NewInMemoryKeySet creates an empty key set.
func NewInMemoryKeySet(opts ...Option) KeySet {
	s := &inMemoryKeySet{}
	for _, opt := range opts {
		opt(s)
	}
	if s.capacity < 0 {
		s.capacity = 0
	}
	s.seen = make(map[model.Key]struct{}, s.capacity)
	return s
}

func (s *inMemoryKeySet) SeenAndRecord(_ context.Context, k model.Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[k]; ok {
		return true
	}
	s.seen[k] = struct{}{}
	return false
}

func (s *inMemoryKeySet) Size() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.seen))
}
