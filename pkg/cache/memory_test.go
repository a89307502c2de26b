package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	m := NewMemory[string](WithClock(clk.Now))

	_, ok := m.Get(ctx, "missing")
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "a", "alpha"))
	clk.Advance(time.Minute)
	e, ok := m.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, "alpha", e.Value)
	assert.Equal(t, clk.Now().Add(-time.Minute), e.InsertedAt)
	assert.Equal(t, clk.Now(), e.LastAccessedAt)
	assert.Equal(t, time.Minute, e.Age(clk.Now()))

	st := m.Stats()
	assert.Equal(t, uint64(1), st.Hits)
	assert.Equal(t, uint64(1), st.Misses)
	assert.Equal(t, 1, st.Entries)
	assert.Equal(t, defaultMaxSize, st.MaxSize)
}

func TestMemoryLazyExpiry(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	m := NewMemory[int](WithClock(clk.Now), WithMemoryTTL(time.Hour))

	require.NoError(t, m.Set(ctx, "k", 1))
	clk.Advance(time.Hour)
	_, ok := m.Get(ctx, "k")
	assert.True(t, ok, "entry exactly at TTL is still valid")

	clk.Advance(time.Second)
	assert.Equal(t, 1, m.Len(), "nothing is swept before a read")
	_, ok = m.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
	assert.Equal(t, uint64(1), m.Stats().Expired)
}

func TestMemoryLRUEviction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[int](WithMemoryMaxSize(3))

	for i := 0; i < 3; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprint(i), i))
	}
	// touch 0 so 1 becomes least recently used
	_, ok := m.Get(ctx, "0")
	require.True(t, ok)

	require.NoError(t, m.Set(ctx, "3", 3))
	assert.Equal(t, 3, m.Len())
	_, ok = m.Get(ctx, "1")
	assert.False(t, ok)
	for _, k := range []string{"0", "2", "3"} {
		_, ok := m.Get(ctx, k)
		assert.True(t, ok, k)
	}
	assert.Equal(t, uint64(1), m.Stats().Evictions)
}

func TestMemoryOverwriteResetsAge(t *testing.T) {
	ctx := context.Background()
	clk := newFakeClock()
	m := NewMemory[int](WithClock(clk.Now), WithMemoryTTL(time.Hour))

	require.NoError(t, m.Set(ctx, "k", 1))
	clk.Advance(50 * time.Minute)
	require.NoError(t, m.Set(ctx, "k", 2))
	clk.Advance(50 * time.Minute)

	e, ok := m.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, 2, e.Value)
	assert.Equal(t, 1, m.Len())
}

func TestMemoryConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	m := NewMemory[int](WithMemoryMaxSize(50), WithMemoryTTL(time.Minute))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				key := fmt.Sprint((g*7 + i) % 80)
				_ = m.Set(ctx, key, i)
				m.Get(ctx, key)
			}
		}(g)
	}
	wg.Wait()
	assert.LessOrEqual(t, m.Len(), 50)
}

func TestTickerKey(t *testing.T) {
	assert.Equal(t, "market:AAPL:2024-02-16", TickerKey("market", " aapl ", "2024-02-16"))
	assert.Equal(t, "history:MSFT", TickerKey("history", "msft"))
}
