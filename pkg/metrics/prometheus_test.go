package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordEvaluation("TRADE")
	r.RecordEvaluation("TRADE")
	r.RecordEvaluation("DO_NOT_TRADE")
	r.RecordCacheLookup("market", true)
	r.RecordCacheLookup("market", false)
	r.RecordUpstreamCall("sentiment", 0.25)
	r.RecordUpstreamCall("sentiment", 0)
	r.RecordError("insufficient_data")
	r.RecordLatency("evaluate", 0.002)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.evaluations.WithLabelValues("TRADE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("market", "hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.upstreamCalls.WithLabelValues("sentiment")))
	assert.Equal(t, 0.25, testutil.ToFloat64(r.upstreamCost.WithLabelValues("sentiment")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.errorsTotal.WithLabelValues("insufficient_data")))

	n, err := testutil.GatherAndCount(reg, "voledge_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestRecordersOnSeparateRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		New(prometheus.NewRegistry())
		New(prometheus.NewRegistry())
	})
}
