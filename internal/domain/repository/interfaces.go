package repository

// Metrics records engine activity. Implementations must be safe for concurrent use.
type Metrics interface {
	RecordEvaluation(recommendation string)
	RecordError(kind string)
	RecordCacheLookup(kind string, hit bool)
	RecordUpstreamCall(provider string, cost float64)
	RecordLatency(op string, seconds float64)
}

// NopMetrics discards everything.
type NopMetrics struct{}

func (NopMetrics) RecordEvaluation(string)            {}
func (NopMetrics) RecordError(string)                 {}
func (NopMetrics) RecordCacheLookup(string, bool)     {}
func (NopMetrics) RecordUpstreamCall(string, float64) {}
func (NopMetrics) RecordLatency(string, float64)      {}
