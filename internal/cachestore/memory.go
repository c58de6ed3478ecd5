package cachestore

import (
	"context"
	"fmt"
	"sync"

	"github.com/bep/lazycache"
	"github.com/gobwas/glob"
)

const defaultMaxEntries = 10000

type memoryEntry struct {
	value  []byte
	fields map[string][]byte
}

// Memory is a process-local Store. Hash buckets are copied on write so a
// reader never sees a bucket that is being modified.
type Memory struct {
	mu    sync.Mutex
	cache *lazycache.Cache[string, memoryEntry]
}

func NewMemory(maxEntries int) *Memory {
	if maxEntries < 1 {
		maxEntries = defaultMaxEntries
	}
	return &Memory{
		cache: lazycache.New[string, memoryEntry](lazycache.Options{MaxEntries: maxEntries}),
	}
}

func (m *Memory) HashGet(_ context.Context, bucket string, field string) ([]byte, bool, error) {
	entry, ok := m.cache.Get(bucket)
	if !ok || entry.fields == nil {
		return nil, false, nil
	}
	value, ok := entry.fields[field]
	return value, ok, nil
}

func (m *Memory) HashSet(_ context.Context, bucket string, field string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, _ := m.cache.Get(bucket)
	fields := make(map[string][]byte, len(entry.fields)+1)
	for k, v := range entry.fields {
		fields[k] = v
	}
	fields[field] = value
	m.cache.Set(bucket, memoryEntry{fields: fields})
	return nil
}

func (m *Memory) GetValue(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := m.cache.Get(key)
	if !ok || entry.value == nil {
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (m *Memory) SetValue(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.Set(key, memoryEntry{value: value})
	return nil
}

func (m *Memory) DeleteByPattern(_ context.Context, pattern string) error {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile cache key pattern %q: %w", pattern, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.cache.DeleteFunc(func(key string, _ memoryEntry) bool {
		return matcher.Match(key)
	})
	return nil
}
