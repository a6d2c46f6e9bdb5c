package session

import (
	"context"
	"sync"
)

// MemoryStore keeps session entries in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]map[string]string)}
}

func (s *MemoryStore) Get(_ context.Context, sid, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.entries[sid][key]
	return val, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.entries[sid]
	if !ok {
		bucket = make(map[string]string)
		s.entries[sid] = bucket
	}
	bucket[key] = value
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.entries[sid]
	if !ok {
		return nil
	}
	for _, key := range keys {
		delete(bucket, key)
	}
	if len(bucket) == 0 {
		delete(s.entries, sid)
	}
	return nil
}

// Len reports how many sessions hold at least one entry.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
