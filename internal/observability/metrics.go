package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so several instances can coexist in tests.
// Every method is safe on a nil receiver.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	merges          *prometheus.CounterVec
	mergeEfficiency prometheus.Histogram
	scheduledUnits  *prometheus.CounterVec
	calendarDays    prometheus.Histogram

	progressCompletions *prometheus.CounterVec
	resumesGenerated    *prometheus.CounterVec
}

func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "mantrix"
	}
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_inflight",
			Help:      "HTTP requests currently being served.",
		}),
		merges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roadmap_merges_total",
			Help:      "Merge attempts by schedule mode and outcome.",
		}, []string{"schedule_mode", "outcome"}),
		mergeEfficiency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "roadmap_merge_efficiency_percent",
			Help:      "Efficiency gain of persisted merges.",
			Buckets:   []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		}),
		scheduledUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calendar_units_total",
			Help:      "Units placed on (or left off) generated calendars.",
		}, []string{"placement"}),
		calendarDays: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calendar_study_days",
			Help:      "Study days per generated calendar.",
			Buckets:   []float64{1, 2, 5, 10, 15, 20, 25, 30},
		}),
		progressCompletions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "progress_completions_total",
			Help:      "Unit completions by result.",
		}, []string{"result"}),
		resumesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resumes_generated_total",
			Help:      "Generated resumes by mode and text source.",
		}, []string{"mode", "source"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.merges, m.mergeEfficiency, m.scheduledUnits, m.calendarDays,
		m.progressCompletions, m.resumesGenerated,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveMerge(scheduleMode, outcome string, efficiencyGain int) {
	if m == nil {
		return
	}
	m.merges.WithLabelValues(scheduleMode, outcome).Inc()
	if outcome == "ok" {
		m.mergeEfficiency.Observe(float64(efficiencyGain))
	}
}

func (m *Metrics) ObserveCalendar(studyDays, scheduled, unscheduled int) {
	if m == nil {
		return
	}
	m.calendarDays.Observe(float64(studyDays))
	m.scheduledUnits.WithLabelValues("scheduled").Add(float64(scheduled))
	m.scheduledUnits.WithLabelValues("unscheduled").Add(float64(unscheduled))
}

func (m *Metrics) IncProgressCompletion(result string) {
	if m == nil {
		return
	}
	m.progressCompletions.WithLabelValues(result).Inc()
}

func (m *Metrics) IncResumeGenerated(mode, source string) {
	if m == nil {
		return
	}
	m.resumesGenerated.WithLabelValues(mode, source).Inc()
}
