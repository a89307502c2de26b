package ratelimit

import (
	"errors"
	"sync"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

func TestLedgerDailyCallBudget(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 10, 14, 0, 0, 0, time.UTC)}
	l := NewBudgetLedger(BudgetConfig{DailyCalls: 2}, WithLedgerClock(clk.Now))

	require.NoError(t, l.Allow(0))
	l.RecordCall("history", 0)
	require.NoError(t, l.Allow(0))
	l.RecordCall("market", 0)

	err := l.Allow(0)
	assert.True(t, errors.Is(err, ErrDailyBudgetExhausted))
	assert.True(t, errors.Is(err, ErrBudgetExhausted))

	// rollover at UTC midnight
	clk.Set(time.Date(2024, 5, 11, 0, 0, 1, 0, time.UTC))
	assert.NoError(t, l.Allow(0))
	snap := l.Snapshot()
	assert.Equal(t, "2024-05-11", snap.Day)
	assert.Equal(t, 0, snap.DailyCalls)
	assert.Empty(t, snap.Providers)
}

func TestLedgerMonthlyCostBudget(t *testing.T) {
	clk := &clock{t: time.Date(2024, 5, 30, 10, 0, 0, 0, time.UTC)}
	l := NewBudgetLedger(BudgetConfig{MonthlyCost: 1.0}, WithLedgerClock(clk.Now))

	require.NoError(t, l.Allow(0.6))
	l.RecordCall("sentiment", 0.6)
	assert.True(t, errors.Is(l.Allow(0.6), ErrMonthlyBudgetExhausted))
	assert.NoError(t, l.Allow(0.4))

	// a new day keeps monthly cost
	clk.Set(time.Date(2024, 5, 31, 10, 0, 0, 0, time.UTC))
	assert.True(t, errors.Is(l.Allow(0.6), ErrMonthlyBudgetExhausted))

	clk.Set(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, l.Allow(0.6))
	assert.Equal(t, 0.0, l.Snapshot().MonthlyCost)
}

func TestLedgerZeroLimitsDisableChecks(t *testing.T) {
	l := NewBudgetLedger(BudgetConfig{})
	for i := 0; i < 1000; i++ {
		require.NoError(t, l.Allow(5))
		l.RecordCall("x", 5)
	}
	assert.Equal(t, 1000, l.Snapshot().DailyCalls)
}

func TestLedgerRolloverInConfiguredZone(t *testing.T) {
	// 23:30 and 00:30 New York time; different days there, same UTC day
	clk := &clock{t: time.Date(2024, 5, 11, 3, 30, 0, 0, time.UTC)}
	l := NewBudgetLedger(BudgetConfig{DailyCalls: 1, Timezone: "America/New_York"}, WithLedgerClock(clk.Now))
	l.RecordCall("history", 0)
	require.Error(t, l.Allow(0))

	clk.Set(time.Date(2024, 5, 11, 4, 30, 0, 0, time.UTC))
	assert.NoError(t, l.Allow(0))
}

func TestLedgerSnapshotPerProvider(t *testing.T) {
	l := NewBudgetLedger(BudgetConfig{Costs: map[string]float64{"sentiment": 0.02}})
	l.RecordCall("history", l.CostOf("history"))
	l.RecordCall("sentiment", l.CostOf("sentiment"))
	l.RecordCall("sentiment", l.CostOf("sentiment"))

	snap := l.Snapshot()
	assert.Equal(t, []string{"history", "sentiment"}, snap.ProviderNames())
	assert.Equal(t, 2, snap.Providers["sentiment"].Calls)
	assert.InDelta(t, 0.04, snap.Providers["sentiment"].Cost, 1e-12)
	assert.Equal(t, 3, snap.DailyCalls)

	// snapshot is a copy
	snap.Providers["history"] = ProviderUsage{Calls: 99}
	assert.Equal(t, 1, l.Snapshot().Providers["history"].Calls)
}

func TestLedgerConcurrentRecord(t *testing.T) {
	l := NewBudgetLedger(BudgetConfig{})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.RecordCall("p", 0.01)
			}
		}()
	}
	wg.Wait()
	snap := l.Snapshot()
	assert.Equal(t, 1600, snap.DailyCalls)
	assert.InDelta(t, 16.0, snap.MonthlyCost, 1e-9)
}

func TestReserveCountsInFlightCalls(t *testing.T) {
	l := NewBudgetLedger(BudgetConfig{DailyCalls: 2})

	settleA, err := l.Reserve("market", 0)
	require.NoError(t, err)
	settleB, err := l.Reserve("market", 0)
	require.NoError(t, err)

	_, err = l.Reserve("market", 0)
	assert.ErrorIs(t, err, ErrDailyBudgetExhausted)
	assert.ErrorIs(t, l.Allow(0), ErrDailyBudgetExhausted)
	assert.Equal(t, 2, l.Snapshot().InFlight)
	assert.Equal(t, 0, l.Snapshot().DailyCalls)

	settleA(true)
	settleB(false)
	snap := l.Snapshot()
	assert.Equal(t, 0, snap.InFlight)
	assert.Equal(t, 1, snap.DailyCalls)
	assert.Equal(t, 1, snap.Providers["market"].Calls)

	// the failed call handed its slot back
	settleC, err := l.Reserve("market", 0)
	require.NoError(t, err)
	settleC(true)
	assert.ErrorIs(t, l.Allow(0), ErrDailyBudgetExhausted)
}

func TestReserveSettlesOnce(t *testing.T) {
	l := NewBudgetLedger(BudgetConfig{MonthlyCost: 1})

	settle, err := l.Reserve("sentiment", 0.6)
	require.NoError(t, err)
	assert.ErrorIs(t, l.Allow(0.6), ErrMonthlyBudgetExhausted, "reserved cost counts")

	settle(true)
	settle(true)
	settle(false)
	snap := l.Snapshot()
	assert.Equal(t, 1, snap.DailyCalls)
	assert.InDelta(t, 0.6, snap.MonthlyCost, 1e-12)
	assert.Equal(t, 0, snap.InFlight)
	assert.NoError(t, l.Allow(0.4))
}

func TestReserveConcurrentNeverOvershoots(t *testing.T) {
	l := NewBudgetLedger(BudgetConfig{DailyCalls: 5})
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		granted int
	)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			settle, err := l.Reserve("p", 0)
			if err != nil {
				return
			}
			mu.Lock()
			granted++
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			settle(true)
		}()
	}
	wg.Wait()
	assert.Equal(t, 5, granted)
	assert.Equal(t, 5, l.Snapshot().DailyCalls)
}
