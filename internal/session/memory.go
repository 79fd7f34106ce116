package session

import (
	"context"
	"sync"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryStore struct {
	mu    sync.Mutex
	cache *expirable.LRU[string, map[string]string]
}

func init() {
	Register("memory", createMemoryStore)
}

func createMemoryStore(opts Options) (Store, error) {
	return NewMemoryStore(opts), nil
}

func NewMemoryStore(opts Options) Store {
	size := opts.Size
	if size <= 0 {
		size = 10000
	}
	return &memoryStore{cache: expirable.NewLRU[string, map[string]string](size, nil, opts.TTL)}
}

func (s *memoryStore) Get(ctx context.Context, sid, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.cache.Get(sid)
	if !ok {
		return "", false, nil
	}
	v, ok := values[key]
	return v, ok, nil
}

func (s *memoryStore) Set(ctx context.Context, sid, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, _ := s.cache.Get(sid)
	next := make(map[string]string, len(values)+1)
	for k, v := range values {
		next[k] = v
	}
	next[key] = value
	s.cache.Add(sid, next)
	return nil
}

func (s *memoryStore) Delete(ctx context.Context, sid string, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	values, ok := s.cache.Get(sid)
	if !ok {
		return nil
	}
	next := make(map[string]string, len(values))
	for k, v := range values {
		next[k] = v
	}
	for _, k := range keys {
		delete(next, k)
	}
	s.cache.Add(sid, next)
	return nil
}

func (s *memoryStore) Destroy(ctx context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Remove(sid)
	return nil
}
