package cachestore

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Value is a lazily computed value stored under a single key. The whole value
// is encoded and written in one SetValue, so readers never observe a partial
// result. Concurrent misses share one computation.
//
// Every Invalidate starts a new generation. A computation that began in an
// older generation is returned to its callers but never written back, and
// callers of the new generation do not join it.
type Value[T any] struct {
	store Store
	key   string
	group singleflight.Group

	mu         sync.Mutex
	generation uint64
}

func NewValue[T any](store Store, key string) *Value[T] {
	return &Value[T]{store: store, key: key}
}

// Get returns the stored value, computing and storing it on a miss. When
// readCache is false the stored value is ignored but the fresh one is still
// written back.
func (v *Value[T]) Get(ctx context.Context, readCache bool, compute func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	generation := v.currentGeneration()
	if readCache {
		cached, ok, err := v.load(ctx)
		if err != nil {
			return zero, err
		}
		if ok {
			return cached, nil
		}
	}

	callKey := v.key + "#" + strconv.FormatUint(generation, 10)
	result, err, _ := v.group.Do(callKey, func() (interface{}, error) {
		fresh, err := compute(ctx)
		if err != nil {
			return zero, err
		}

		data, err := json.Marshal(fresh)
		if err != nil {
			return zero, fmt.Errorf("encode %s: %w", v.key, err)
		}
		if err := v.save(ctx, generation, data); err != nil {
			return zero, err
		}
		return fresh, nil
	})
	if err != nil {
		return zero, err
	}

	return result.(T), nil
}

func (v *Value[T]) Invalidate(ctx context.Context) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	return v.store.DeleteByPattern(ctx, v.key)
}

func (v *Value[T]) currentGeneration() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.generation
}

// save writes data unless an Invalidate happened since generation was read.
func (v *Value[T]) save(ctx context.Context, generation uint64, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.generation != generation {
		return nil
	}
	return v.store.SetValue(ctx, v.key, data)
}

func (v *Value[T]) load(ctx context.Context) (T, bool, error) {
	var out T

	data, ok, err := v.store.GetValue(ctx, v.key)
	if err != nil || !ok {
		return out, false, err
	}
	// An entry written by an older layout is treated as a miss.
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, nil
	}
	return out, true, nil
}
