package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK      = "ok"
	ResultRefused = "refused"
	ResultError   = "error"
)

// Metrics holds the Prometheus collectors for the service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	operations      *prometheus.CounterVec
	pointsAwarded   prometheus.Counter
	pointsPenalized prometheus.Counter
	refreshDuration prometheus.Histogram
	wsClients       prometheus.Gauge
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "famdo_operations_total",
				Help: "Coordinator operations by outcome",
			},
			[]string{"operation", "result"},
		),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "famdo_points_awarded_total",
			Help: "Points awarded for approved chores",
		}),
		pointsPenalized: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "famdo_points_penalized_total",
			Help: "Points deducted by overdue penalties",
		}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "famdo_refresh_duration_seconds",
			Help:    "Duration of the overdue and recurrence sweep",
			Buckets: prometheus.DefBuckets,
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "famdo_websocket_clients",
			Help: "Connected websocket clients",
		}),
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}
	m.registry.MustRegister(
		m.operations, m.pointsAwarded, m.pointsPenalized,
		m.refreshDuration, m.wsClients, m.requestsTotal, m.requestDuration,
	)
	return m
}

func (m *Metrics) Operation(name, result string) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(name, result).Inc()
}

func (m *Metrics) PointsAwarded(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsAwarded.Add(float64(n))
}

func (m *Metrics) PointsPenalized(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.pointsPenalized.Add(float64(n))
}

func (m *Metrics) ObserveRefresh(d time.Duration) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(d.Seconds())
}

func (m *Metrics) ClientConnected() {
	if m == nil {
		return
	}
	m.wsClients.Inc()
}

func (m *Metrics) ClientDisconnected() {
	if m == nil {
		return
	}
	m.wsClients.Dec()
}

func (m *Metrics) ObserveRequest(method, path string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
