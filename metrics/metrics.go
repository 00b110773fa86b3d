// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "livepoll"

type Metrics struct {
	registry *prometheus.Registry

	responsesSubmitted prometheus.Counter
	submitFailures     *prometheus.CounterVec
	broadcasts         prometheus.Counter
	framesDelivered    prometheus.Counter
	framesFailed       prometheus.Counter
	connections        prometheus.Gauge
	memberships        prometheus.Gauge

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers every collector on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		responsesSubmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "responses_submitted_total",
			Help:      "Responses accepted by ingestion.",
		}),
		submitFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submit_failures_total",
			Help:      "Rejected submissions by error kind.",
		}, []string{"kind"}),
		broadcasts: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "broadcasts_total",
			Help:      "Result snapshots broadcast to a room.",
		}),
		framesDelivered: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "frames_delivered_total",
			Help:      "Frames queued to live connections.",
		}),
		framesFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "frames_failed_total",
			Help:      "Frames that could not be queued to a live connection.",
		}),
		connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "connections",
			Help:      "Open live connections.",
		}),
		memberships: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "live",
			Name:      "room_memberships",
			Help:      "Connection-to-room memberships across all rooms.",
		}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the private registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ResponseSubmitted() {
	if m == nil {
		return
	}
	m.responsesSubmitted.Inc()
}

// SubmitFailed counts a rejected submission. kind is one of
// "validation", "not_found" or "persistence".
func (m *Metrics) SubmitFailed(kind string) {
	if m == nil {
		return
	}
	m.submitFailures.WithLabelValues(kind).Inc()
}

// ObserveSubmission records the outcome of one submission from any
// transport. An empty kind means the response was accepted.
func (m *Metrics) ObserveSubmission(kind string) {
	if kind == "" {
		m.ResponseSubmitted()
		return
	}
	m.SubmitFailed(kind)
}

func (m *Metrics) Broadcast() {
	if m == nil {
		return
	}
	m.broadcasts.Inc()
}

func (m *Metrics) FrameDelivered() {
	if m == nil {
		return
	}
	m.framesDelivered.Inc()
}

func (m *Metrics) FrameFailed() {
	if m == nil {
		return
	}
	m.framesFailed.Inc()
}

func (m *Metrics) ConnOpened() {
	if m == nil {
		return
	}
	m.connections.Inc()
}

func (m *Metrics) ConnClosed() {
	if m == nil {
		return
	}
	m.connections.Dec()
}

func (m *Metrics) SetMemberships(n int) {
	if m == nil {
		return
	}
	m.memberships.Set(float64(n))
}

// ObserveHTTP records one finished request. route should be the mux
// pattern, not the raw path, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
