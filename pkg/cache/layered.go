package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// envelope keeps the original insertion time alongside the value in L2.
type envelope[V any] struct {
	Value      V         `json:"value"`
	InsertedAt time.Time `json:"inserted_at"`
}

// Layered is a memory L1 in front of a Remote L2.
// L2 failures degrade to L1-only behaviour; they are reported through OnRemoteError.
type Layered[V any] struct {
	mem    *Memory[V]
	remote Remote
	ttl    time.Duration
	now    Clock

	OnRemoteError func(op string, err error)
}

// NewLayered creates a layered store. The memory tier's TTL also bounds L2 entries.
func NewLayered[V any](remote Remote, opts ...MemoryOption) *Layered[V] {
	cfg := &MemoryConfig{Clock: time.Now}
	for _, opt := range opts {
		opt(cfg)
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Layered[V]{
		mem:    NewMemory[V](opts...),
		remote: remote,
		ttl:    cfg.TTL,
		now:    clock,
	}
}

func (l *Layered[V]) Get(ctx context.Context, key string) (Entry[V], bool) {
	if e, ok := l.mem.Get(ctx, key); ok {
		return e, true
	}
	if l.remote == nil {
		return Entry[V]{}, false
	}

	raw, ok, err := l.remote.GetBytes(ctx, key)
	if err != nil {
		l.remoteError("get", err)
		return Entry[V]{}, false
	}
	if !ok {
		return Entry[V]{}, false
	}

	var env envelope[V]
	if err := json.Unmarshal(raw, &env); err != nil {
		l.remoteError("decode", fmt.Errorf("key %s: %w", key, err))
		return Entry[V]{}, false
	}
	now := l.now()
	if l.ttl > 0 && now.Sub(env.InsertedAt) > l.ttl {
		return Entry[V]{}, false
	}

	_ = l.mem.SetWithTime(ctx, key, env.Value, env.InsertedAt)
	l.mem.noteRemoteHit()
	return Entry[V]{Value: env.Value, InsertedAt: env.InsertedAt, LastAccessedAt: now}, true
}

// Set writes L1 first, then L2. An L2 error is returned but the L1 write stands.
func (l *Layered[V]) Set(ctx context.Context, key string, value V) error {
	now := l.now()
	_ = l.mem.SetWithTime(ctx, key, value, now)
	if l.remote == nil {
		return nil
	}

	data, err := json.Marshal(envelope[V]{Value: value, InsertedAt: now})
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := l.remote.SetBytes(ctx, key, data, l.ttl); err != nil {
		l.remoteError("set", err)
		return fmt.Errorf("remote set %s: %w", key, err)
	}
	return nil
}

func (l *Layered[V]) Stats() Stats {
	return l.mem.Stats()
}

func (l *Layered[V]) remoteError(op string, err error) {
	if l.OnRemoteError != nil {
		l.OnRemoteError(op, err)
	}
}

var _ Store[int] = (*Layered[int])(nil)
