package guardrail

import (
	"fmt"

	"VolEdge/internal/domain/models"
)

// Check codes reported on each anomaly.
const (
	CheckConflictCritical    = "conflict_critical"
	CheckConflictWarning     = "conflict_warning"
	CheckExtremeOutlier      = "extreme_outlier"
	CheckStaleCache          = "stale_cache"
	CheckInsufficientHistory = "insufficient_history"
)

type Config struct {
	OutlierRatio    float64 `yaml:"outlier_ratio" default:"20"`
	StaleWindowDays int     `yaml:"stale_window_days" default:"7"`
	StaleCacheHours float64 `yaml:"stale_cache_hours" default:"24"`
	MinHistory      int     `yaml:"min_history" default:"4"`
}

func DefaultConfig() Config {
	return Config{OutlierRatio: 20, StaleWindowDays: 7, StaleCacheHours: 24, MinHistory: 4}
}

type check func(cfg Config, in models.GuardrailInput) *models.Anomaly

// Engine runs every check in a fixed order and aggregates severities.
// It has veto power over the score: any CRITICAL forces DO_NOT_TRADE.
type Engine struct {
	cfg    Config
	checks []check
}

func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg: cfg,
		checks: []check{
			conflictCritical,
			conflictWarning,
			extremeOutlier,
			staleCache,
			insufficientHistory,
		},
	}
}

func (e *Engine) Evaluate(in models.GuardrailInput) models.AnomalyReport {
	anomalies := make([]models.Anomaly, 0, len(e.checks))
	for _, c := range e.checks {
		if a := c(e.cfg, in); a != nil {
			anomalies = append(anomalies, *a)
		}
	}
	return models.AnomalyReport{
		Anomalies:      anomalies,
		Recommendation: Aggregate(anomalies),
	}
}

// Aggregate maps fired anomalies to a recommendation.
func Aggregate(anomalies []models.Anomaly) models.Recommendation {
	rec := models.RecommendTrade
	for _, a := range anomalies {
		switch a.Severity {
		case models.SeverityCritical:
			return models.RecommendDoNotTrade
		case models.SeverityWarning:
			rec = models.RecommendReduceSize
		}
	}
	return rec
}

func conflictCritical(_ Config, in models.GuardrailInput) *models.Anomaly {
	if in.VRP.Tier != models.VRPExcellent || in.Liquidity.FinalTier != models.LiquidityReject {
		return nil
	}
	return &models.Anomaly{
		Check:    CheckConflictCritical,
		Severity: models.SeverityCritical,
		Message: fmt.Sprintf("VRP %.2fx is %s but liquidity is %s (OI ratio %.2f, spread %.1f%%)",
			in.VRP.Ratio, in.VRP.Tier, in.Liquidity.FinalTier, in.Liquidity.OIRatio, in.Liquidity.SpreadPct),
	}
}

func conflictWarning(_ Config, in models.GuardrailInput) *models.Anomaly {
	if in.VRP.Tier != models.VRPGood || in.Liquidity.FinalTier != models.LiquidityReject {
		return nil
	}
	return &models.Anomaly{
		Check:    CheckConflictWarning,
		Severity: models.SeverityWarning,
		Message: fmt.Sprintf("VRP %.2fx is %s but liquidity is %s (OI ratio %.2f, spread %.1f%%)",
			in.VRP.Ratio, in.VRP.Tier, in.Liquidity.FinalTier, in.Liquidity.OIRatio, in.Liquidity.SpreadPct),
	}
}

func extremeOutlier(cfg Config, in models.GuardrailInput) *models.Anomaly {
	if in.VRP.Ratio <= cfg.OutlierRatio {
		return nil
	}
	return &models.Anomaly{
		Check:    CheckExtremeOutlier,
		Severity: models.SeverityWarning,
		Message:  fmt.Sprintf("VRP %.2fx exceeds %.0fx, likely a data or market anomaly", in.VRP.Ratio, cfg.OutlierRatio),
	}
}

func staleCache(cfg Config, in models.GuardrailInput) *models.Anomaly {
	if in.DaysToEarnings > cfg.StaleWindowDays || in.CacheAgeHours <= cfg.StaleCacheHours {
		return nil
	}
	return &models.Anomaly{
		Check:    CheckStaleCache,
		Severity: models.SeverityWarning,
		Message: fmt.Sprintf("cached inputs are %.1fh old with earnings in %d days (limit %.0fh)",
			in.CacheAgeHours, in.DaysToEarnings, cfg.StaleCacheHours),
	}
}

func insufficientHistory(cfg Config, in models.GuardrailInput) *models.Anomaly {
	if in.HistoricalSampleCount >= cfg.MinHistory {
		return nil
	}
	return &models.Anomaly{
		Check:    CheckInsufficientHistory,
		Severity: models.SeverityWarning,
		Message:  fmt.Sprintf("only %d historical earnings moves, need %d", in.HistoricalSampleCount, cfg.MinHistory),
	}
}
