package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Run("registers on given registry", func(t *testing.T) {
		reg := prometheus.NewRegistry()
		m := New("test", reg)

		m.RecordUpstream("chat", OutcomeSuccess, time.Second)

		count, err := testutil.GatherAndCount(reg, "test_upstream_requests_total")
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("two instances do not collide without registry", func(t *testing.T) {
		assert.NotPanics(t, func() {
			New("", nil)
			New("", nil)
		})
	})
}

func TestRecordHTTPRequest(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordHTTPRequest("POST", "/chat", 200, 100*time.Millisecond)
	m.RecordHTTPRequest("POST", "/chat", 504, time.Minute)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/chat", "2xx")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("POST", "/chat", "5xx")))
}

func TestRecordVideoPoll(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	m.RecordVideoPoll("running")
	m.RecordVideoPoll("running")
	m.RecordVideoPoll("succeeded")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.VideoPollsTotal.WithLabelValues("running")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VideoPollsTotal.WithLabelValues("succeeded")))
}

func TestVideoTaskStarted(t *testing.T) {
	m := New("test", prometheus.NewRegistry())

	done := m.VideoTaskStarted()
	assert.Equal(t, float64(1), testutil.ToFloat64(m.VideoTasksInFlight))
	done()
	assert.Equal(t, float64(0), testutil.ToFloat64(m.VideoTasksInFlight))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordUpstream("chat", OutcomeError, time.Second)
		m.RecordVideoPoll("queued")
		m.VideoTaskStarted()()
	})
}

func TestStatusCodeToString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{200, "2xx"},
		{301, "3xx"},
		{400, "4xx"},
		{504, "5xx"},
		{99, "unknown_99"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusCodeToString(tt.code))
	}
}
