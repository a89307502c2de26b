package models

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
)

type Recommendation string

const (
	RecommendTrade      Recommendation = "TRADE"
	RecommendReduceSize Recommendation = "REDUCE_SIZE"
	RecommendDoNotTrade Recommendation = "DO_NOT_TRADE"
)

// Anomaly is one fired guardrail check.
type Anomaly struct {
	Check    string   `json:"check"` // "conflict_critical", "extreme_outlier", ...
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// AnomalyReport lists every fired check and the aggregated recommendation.
type AnomalyReport struct {
	Anomalies      []Anomaly      `json:"anomalies"`
	Recommendation Recommendation `json:"final_recommendation"`
}

// Count returns how many anomalies of severity s fired.
func (r AnomalyReport) Count(s Severity) int {
	n := 0
	for _, a := range r.Anomalies {
		if a.Severity == s {
			n++
		}
	}
	return n
}

// GuardrailInput is everything the guardrail engine looks at.
type GuardrailInput struct {
	VRP                   VRPResult
	Liquidity             LiquidityResult
	HistoricalSampleCount int
	CacheAgeHours         float64
	DaysToEarnings        int
}
