package cachestore

import "context"

// Store is the key/value cache shared by every resolver instance. Values are
// opaque bytes; a hash bucket maps fields to values under one key.
// Implementations make each single-key operation atomic.
type Store interface {
	HashGet(ctx context.Context, bucket string, field string) ([]byte, bool, error)
	HashSet(ctx context.Context, bucket string, field string, value []byte) error
	GetValue(ctx context.Context, key string) ([]byte, bool, error)
	SetValue(ctx context.Context, key string, value []byte) error
	// DeleteByPattern removes every key matching a glob such as "page_context*".
	DeleteByPattern(ctx context.Context, pattern string) error
}
