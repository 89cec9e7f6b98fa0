package monitor

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEvaluation(t *testing.T) {
	m := NewMetricsCollector("daqnet")

	m.RecordEvaluation(OutcomeFeasible, 2*time.Millisecond)
	m.RecordEvaluation(OutcomeFeasible, time.Millisecond)
	m.RecordEvaluation(OutcomeDecodeError, time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.evaluations.WithLabelValues(string(OutcomeFeasible))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.evaluations.WithLabelValues(string(OutcomeDecodeError))))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.evaluations.WithLabelValues(string(OutcomePanic))))
	assert.Equal(t, 1, testutil.CollectAndCount(m.evalDuration))
}

func TestCacheAndGenerationMetrics(t *testing.T) {
	m := NewMetricsCollector("daqnet")

	m.CacheHit()
	m.CacheHit()
	m.CacheMiss()
	m.RecordGeneration(7, 1234.5)
	m.RecordRun()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.cacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheMisses))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.generation))
	assert.Equal(t, 1234.5, testutil.ToFloat64(m.bestCost))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs))
	assert.Greater(t, m.GetUptime(), time.Duration(0))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var m *MetricsCollector
	assert.NotPanics(t, func() {
		m.RecordEvaluation(OutcomePanic, time.Second)
		m.CacheHit()
		m.CacheMiss()
		m.RecordGeneration(1, 1)
		m.RecordRun()
	})
	assert.Nil(t, m.Registry())
	assert.Equal(t, time.Duration(0), m.GetUptime())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := NewMetricsCollector("daqnet")
	m.RecordEvaluation(OutcomeInfeasible, time.Millisecond)

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `daqnet_evaluations_total{outcome="infeasible"} 1`)
	assert.Contains(t, string(body), "daqnet_evaluation_duration_seconds_bucket")
}
