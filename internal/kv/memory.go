package kv

import (
	"context"
	"sort"
	"strings"

	"github.com/patrickmn/go-cache"
)

type memoryStore struct {
	cache *cache.Cache
}

// NewMemory returns a process-local store. Entries never expire.
func NewMemory() Store {
	return &memoryStore{cache: cache.New(cache.NoExpiration, 0)}
}

func (m *memoryStore) Get(_ context.Context, key string) ([]byte, error) {
	v, found := m.cache.Get(key)
	if !found {
		return nil, ErrNotFound
	}
	return cloneBytes(v.([]byte)), nil
}

func (m *memoryStore) Set(_ context.Context, key string, value []byte) error {
	m.cache.Set(key, cloneBytes(value), cache.NoExpiration)
	return nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.cache.Delete(key)
	return nil
}

func (m *memoryStore) Keys(_ context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for k := range m.cache.Items() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memoryStore) Ping(context.Context) error { return nil }

func (m *memoryStore) Close() error {
	m.cache.Flush()
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
