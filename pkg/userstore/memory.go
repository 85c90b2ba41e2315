package userstore

import (
	"context"
	"sync"
)

// MemoryStore keeps records in process memory. Used by tests and for
// throwaway development servers.
type MemoryStore struct {
	mu   sync.RWMutex
	ix   *index
	opts options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{ix: newIndex(), opts: buildOptions(opts)}
}

func (s *MemoryStore) Create(ctx context.Context, username, email, passwordHash string) (Record, error) {
	rec, err := s.opts.newRecord(username, email, passwordHash)
	if err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ix.check(rec); err != nil {
		return Record{}, err
	}
	s.ix.add(rec)
	return rec, nil
}

func (s *MemoryStore) FindByUsername(ctx context.Context, username string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.byUsername(username)
}

func (s *MemoryStore) FindByID(ctx context.Context, id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.get(id)
}

func (s *MemoryStore) All(ctx context.Context) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ix.all(), nil
}
