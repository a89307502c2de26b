package ratelimit

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"VolEdge/pkg/util"
)

var (
	ErrBudgetExhausted        = errors.New("budget exhausted")
	ErrDailyBudgetExhausted   = fmt.Errorf("daily call %w", ErrBudgetExhausted)
	ErrMonthlyBudgetExhausted = fmt.Errorf("monthly cost %w", ErrBudgetExhausted)
)

// BudgetConfig caps upstream usage. A zero limit disables that check.
type BudgetConfig struct {
	DailyCalls  int                `yaml:"daily_calls" default:"500" validate:"gte=0"`
	MonthlyCost float64            `yaml:"monthly_cost" default:"50" validate:"gte=0"`
	Timezone    string             `yaml:"timezone" default:"UTC"`
	Costs       map[string]float64 `yaml:"costs"`
}

type ProviderUsage struct {
	Calls int     `json:"calls"`
	Cost  float64 `json:"cost"`
}

// BudgetSnapshot is a point-in-time copy of ledger usage.
type BudgetSnapshot struct {
	Day              string                   `json:"day"`
	DailyCalls       int                      `json:"daily_calls"`
	DailyCallLimit   int                      `json:"daily_call_limit"`
	DailyCost        float64                  `json:"daily_cost"`
	InFlight         int                      `json:"in_flight"`
	MonthlyCost      float64                  `json:"monthly_cost"`
	MonthlyCostLimit float64                  `json:"monthly_cost_limit"`
	Providers        map[string]ProviderUsage `json:"providers"`
}

// BudgetLedger counts upstream calls per local day and cost per local month.
// Fetchers take a Reserve before calling out and settle it afterwards; reserved
// calls count against the limits until they are settled.
type BudgetLedger struct {
	mu  sync.Mutex
	cfg BudgetConfig
	loc *time.Location
	now func() time.Time

	dayOpen   time.Time
	monthOpen time.Time
	dayCalls  int
	dayCost   float64
	monthCost float64
	providers map[string]ProviderUsage

	pendingCalls int
	pendingCost  float64
}

type LedgerOption func(*BudgetLedger)

// WithLedgerClock overrides time.Now.
func WithLedgerClock(now func() time.Time) LedgerOption {
	return func(l *BudgetLedger) { l.now = now }
}

func NewBudgetLedger(cfg BudgetConfig, opts ...LedgerOption) *BudgetLedger {
	l := &BudgetLedger{
		cfg:       cfg,
		loc:       util.LoadLocation(cfg.Timezone),
		now:       time.Now,
		providers: make(map[string]ProviderUsage),
	}
	for _, opt := range opts {
		opt(l)
	}
	now := l.now()
	l.dayOpen = util.DayOpen(l.loc, now)
	l.monthOpen = util.MonthOpen(l.loc, now)
	return l
}

// CostOf returns the configured per-call cost of provider, 0 if unknown.
func (l *BudgetLedger) CostOf(provider string) float64 {
	return l.cfg.Costs[provider]
}

// Allow reports whether one more call costing cost fits in the remaining budget,
// counting reservations that are still in flight.
func (l *BudgetLedger) Allow(cost float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollLocked(l.now())
	return l.allowLocked(cost)
}

func (l *BudgetLedger) allowLocked(cost float64) error {
	if l.cfg.DailyCalls > 0 && l.dayCalls+l.pendingCalls >= l.cfg.DailyCalls {
		return ErrDailyBudgetExhausted
	}
	if l.cfg.MonthlyCost > 0 && l.monthCost+l.pendingCost+cost > l.cfg.MonthlyCost {
		return ErrMonthlyBudgetExhausted
	}
	return nil
}

// Reserve claims budget for one call to provider. settle(true) books the call,
// settle(false) hands the budget back; only the first settle has any effect.
func (l *BudgetLedger) Reserve(provider string, cost float64) (settle func(success bool), err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollLocked(l.now())
	if err := l.allowLocked(cost); err != nil {
		return nil, err
	}
	l.pendingCalls++
	l.pendingCost += cost

	var once sync.Once
	return func(success bool) {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()

			l.pendingCalls--
			l.pendingCost -= cost
			if success {
				l.rollLocked(l.now())
				l.recordLocked(provider, cost)
			}
		})
	}, nil
}

// RecordCall books one successful call that was not reserved.
func (l *BudgetLedger) RecordCall(provider string, cost float64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollLocked(l.now())
	l.recordLocked(provider, cost)
}

func (l *BudgetLedger) recordLocked(provider string, cost float64) {
	l.dayCalls++
	l.dayCost += cost
	l.monthCost += cost
	u := l.providers[provider]
	u.Calls++
	u.Cost += cost
	l.providers[provider] = u
}

func (l *BudgetLedger) Snapshot() BudgetSnapshot {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.rollLocked(l.now())
	providers := make(map[string]ProviderUsage, len(l.providers))
	for k, v := range l.providers {
		providers[k] = v
	}
	return BudgetSnapshot{
		Day:              l.dayOpen.Format(util.DateLayout),
		DailyCalls:       l.dayCalls,
		DailyCallLimit:   l.cfg.DailyCalls,
		DailyCost:        l.dayCost,
		InFlight:         l.pendingCalls,
		MonthlyCost:      l.monthCost,
		MonthlyCostLimit: l.cfg.MonthlyCost,
		Providers:        providers,
	}
}

// ProviderNames lists providers seen today, sorted.
func (s BudgetSnapshot) ProviderNames() []string {
	out := make([]string, 0, len(s.Providers))
	for k := range s.Providers {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (l *BudgetLedger) rollLocked(now time.Time) {
	if !util.SameDay(l.loc, l.dayOpen, now) {
		l.dayOpen = util.DayOpen(l.loc, now)
		l.dayCalls = 0
		l.dayCost = 0
		l.providers = make(map[string]ProviderUsage)
	}
	if !util.SameMonth(l.loc, l.monthOpen, now) {
		l.monthOpen = util.MonthOpen(l.loc, now)
		l.monthCost = 0
	}
}
