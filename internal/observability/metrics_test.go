package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsNilReceiverIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", 200, time.Millisecond)
	m.ObserveMerge("auto", "ok", 40)
	m.ObserveCalendar(2, 3, 0)
	m.IncProgressCompletion("created")
	m.IncResumeGenerated("fast", "template")
	m.APIInflightInc()
	m.APIInflightDec()
	assert.Nil(t, m.Registry())
}

func TestMetricsCountAndExpose(t *testing.T) {
	m := NewMetrics("test")
	m.ObserveMerge("auto", "ok", 40)
	m.ObserveMerge("none", "insufficient_sources", 0)
	m.ObserveCalendar(2, 3, 1)
	m.ObserveAPI("POST", "/api/v1/roadmap/merge", 200, 5*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.merges.WithLabelValues("auto", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.scheduledUnits.WithLabelValues("scheduled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scheduledUnits.WithLabelValues("unscheduled")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	assert.True(t, strings.Contains(string(body), "test_roadmap_merges_total"))
	assert.True(t, strings.Contains(string(body), `route="/api/v1/roadmap/merge"`))
}

func TestParseHeadersAndClamp(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, parseHeaders("a=1, b=2,bad,=x"))
	assert.Nil(t, parseHeaders(""))
	assert.Equal(t, 1.0, clampRatio(3))
	assert.Equal(t, 0.0, clampRatio(-1))
}
