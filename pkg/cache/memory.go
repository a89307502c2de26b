package cache

import (
	"container/list"
	"context"
	"sync"
	"time"
)

const defaultMaxSize = 1000

type memoryItem[V any] struct {
	key   string
	entry Entry[V]
}

// Memory is a bounded LRU with a per-instance TTL. Expired entries are
// dropped when read; there is no background sweep.
type Memory[V any] struct {
	mu      sync.Mutex
	items   map[string]*list.Element
	order   *list.List // front = most recently used
	maxSize int
	ttl     time.Duration
	now     Clock
	stats   Stats
}

// NewMemory creates an in-memory store.
func NewMemory[V any](opts ...MemoryOption) *Memory[V] {
	cfg := &MemoryConfig{
		MaxSize: defaultMaxSize,
		Clock:   time.Now,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultMaxSize
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Memory[V]{
		items:   make(map[string]*list.Element),
		order:   list.New(),
		maxSize: cfg.MaxSize,
		ttl:     cfg.TTL,
		now:     cfg.Clock,
	}
}

// TTL returns the configured entry lifetime.
func (m *Memory[V]) TTL() time.Duration { return m.ttl }

func (m *Memory[V]) Get(_ context.Context, key string) (Entry[V], bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	el, ok := m.items[key]
	if !ok {
		m.stats.Misses++
		return Entry[V]{}, false
	}
	item := el.Value.(*memoryItem[V])
	now := m.now()
	if m.expired(item.entry, now) {
		m.removeElement(el)
		m.stats.Expired++
		m.stats.Misses++
		return Entry[V]{}, false
	}

	item.entry.LastAccessedAt = now
	m.order.MoveToFront(el)
	m.stats.Hits++
	return item.entry, true
}

func (m *Memory[V]) Set(ctx context.Context, key string, value V) error {
	return m.SetWithTime(ctx, key, value, time.Time{})
}

// SetWithTime stores value with an explicit insertion time, used when
// promoting from a slower tier so the entry keeps its original age.
// A zero insertedAt means now.
func (m *Memory[V]) SetWithTime(_ context.Context, key string, value V, insertedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if insertedAt.IsZero() {
		insertedAt = now
	}
	entry := Entry[V]{Value: value, InsertedAt: insertedAt, LastAccessedAt: now}

	if el, ok := m.items[key]; ok {
		el.Value.(*memoryItem[V]).entry = entry
		m.order.MoveToFront(el)
		return nil
	}

	for m.order.Len() >= m.maxSize {
		m.evictLRU()
	}
	m.items[key] = m.order.PushFront(&memoryItem[V]{key: key, entry: entry})
	return nil
}

func (m *Memory[V]) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		if el, ok := m.items[key]; ok {
			m.removeElement(el)
		}
	}
}

func (m *Memory[V]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.order.Len()
}

func (m *Memory[V]) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.stats
	s.Entries = m.order.Len()
	s.MaxSize = m.maxSize
	return s
}

func (m *Memory[V]) noteRemoteHit() {
	m.mu.Lock()
	m.stats.RemoteHit++
	m.mu.Unlock()
}

func (m *Memory[V]) expired(e Entry[V], now time.Time) bool {
	return m.ttl > 0 && now.Sub(e.InsertedAt) > m.ttl
}

func (m *Memory[V]) evictLRU() {
	if el := m.order.Back(); el != nil {
		m.removeElement(el)
		m.stats.Evictions++
	}
}

func (m *Memory[V]) removeElement(el *list.Element) {
	m.order.Remove(el)
	delete(m.items, el.Value.(*memoryItem[V]).key)
}

var _ Store[int] = (*Memory[int])(nil)
