// Package metrics exposes Prometheus collectors for the HTTP server, the
// stock ledger and outbound email.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/erazemk/almacen/internal/model"
)

// Metrics holds the application's collectors.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	ledgerEntries   *prometheus.CounterVec
	ledgerUnits     *prometheus.CounterVec
	emails          *prometheus.CounterVec
}

// New creates collectors registered on a fresh registry, together with the
// Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almacen",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status code.",
		}, []string{"method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "almacen",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		ledgerEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almacen",
			Name:      "ledger_entries_total",
			Help:      "Committed ledger entries by type.",
		}, []string{"type"}),
		ledgerUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almacen",
			Name:      "ledger_units_total",
			Help:      "Absolute stock units moved by committed ledger entries.",
		}, []string{"type"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "almacen",
			Name:      "emails_total",
			Help:      "Outbound emails by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.ledgerEntries, m.ledgerUnits, m.emails,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(d.Seconds())
}

// StockMutated records a committed ledger entry.
func (m *Metrics) StockMutated(t model.TxnType, qty int) {
	if qty < 0 {
		qty = -qty
	}
	m.ledgerEntries.WithLabelValues(string(t)).Inc()
	m.ledgerUnits.WithLabelValues(string(t)).Add(float64(qty))
}

// EmailSent records an outbound email attempt.
func (m *Metrics) EmailSent(err error) {
	if err != nil {
		m.emails.WithLabelValues("failed").Inc()
		return
	}
	m.emails.WithLabelValues("sent").Inc()
}
