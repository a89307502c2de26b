package cache

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss = errors.New("cache: key not found")
)

// Entry is a cached value with its bookkeeping timestamps.
type Entry[V any] struct {
	Value          V
	InsertedAt     time.Time
	LastAccessedAt time.Time
}

// Age is how long ago the value was first stored.
func (e Entry[V]) Age(now time.Time) time.Duration {
	if e.InsertedAt.IsZero() {
		return 0
	}
	return now.Sub(e.InsertedAt)
}

// Store is a typed key/value cache with entry metadata.
type Store[V any] interface {
	Get(ctx context.Context, key string) (Entry[V], bool)
	Set(ctx context.Context, key string, value V) error
	Stats() Stats
}

// Remote is the byte-level second tier behind a memory store.
type Remote interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Stats are cumulative counters for one store.
type Stats struct {
	Entries   int    `json:"entries"`
	MaxSize   int    `json:"max_size"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Expired   uint64 `json:"expired"`
	Evictions uint64 `json:"evictions"`
	RemoteHit uint64 `json:"remote_hits,omitempty"`
}

// Clock returns the current time; swapped out in tests.
type Clock func() time.Time
