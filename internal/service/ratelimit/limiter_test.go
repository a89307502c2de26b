package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterPerKey(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(1, 2)
	l.now = clk.Now

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"), "keys have independent buckets")

	clk.Set(clk.Now().Add(time.Second))
	assert.True(t, l.Allow("a"))
}

func TestLimiterSweep(t *testing.T) {
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	l := New(5, 5)
	l.now = clk.Now

	l.Allow("a")
	clk.Set(clk.Now().Add(11 * time.Minute))
	l.Allow("b")
	assert.Equal(t, 1, l.Sweep())
}
