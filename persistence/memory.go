package persistence

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/kbukum/jobgraph/dag"
	apperrors "github.com/kbukum/jobgraph/errors"
)

// MemoryStore keeps encoded graphs in process memory. Graphs are copied on
// Save and Load so callers never share node values with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memEntry
	ttl   time.Duration
	now   func() time.Time
}

type memEntry struct {
	data      []byte
	expiresAt time.Time
}

// NewMemoryStore creates an empty store. A positive ttl expires entries.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		items: make(map[string]memEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Save(_ context.Context, jobID string, g *dag.Structure) error {
	if err := checkJobID(jobID); err != nil {
		return err
	}
	data, err := json.Marshal(g)
	if err != nil {
		return apperrors.StorageError("memory encode", err)
	}

	entry := memEntry{data: data}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.items[jobID] = entry
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Load(_ context.Context, jobID string) (*dag.Structure, error) {
	s.mu.RLock()
	entry, ok := s.items[jobID]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if s.expired(entry) {
		// A Save may have replaced the entry since the read lock was released.
		s.mu.Lock()
		entry, ok = s.items[jobID]
		if ok && s.expired(entry) {
			delete(s.items, jobID)
			ok = false
		}
		s.mu.Unlock()
		if !ok {
			return nil, nil
		}
	}

	var g dag.Structure
	if err := json.Unmarshal(entry.data, &g); err != nil {
		return nil, apperrors.StorageError("memory decode", err)
	}
	return &g, nil
}

func (s *MemoryStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	delete(s.items, jobID)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.items))
	for id, entry := range s.items {
		if !s.expired(entry) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// Len returns the number of entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *MemoryStore) expired(e memEntry) bool {
	return !e.expiresAt.IsZero() && s.now().After(e.expiresAt)
}
