// Package metrics exposes Prometheus collectors for renders, RPCs and live sessions.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/YashMarke130105/pen-perfect-playground/internal/preview"
)

const namespace = "codecanvas"

// Render outcomes.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "script_error"
	OutcomeTimeout = "timeout"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	RendersTotal   *prometheus.CounterVec
	RenderDuration prometheus.Histogram
	RenderConsole  prometheus.Histogram
	RPCCalls       *prometheus.CounterVec
	RPCDuration    *prometheus.HistogramVec
	LiveSessions   prometheus.Gauge
	LiveMessages   *prometheus.CounterVec
	SessionEvents  *prometheus.CounterVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		RendersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_total",
				Help:      "Total number of headless renders by outcome",
			},
			[]string{"outcome"},
		),
		RenderDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_duration_seconds",
				Help:      "Headless render duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
		),
		RenderConsole: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "render_console_entries",
				Help:      "Console entries captured per render",
				Buckets:   []float64{0, 1, 5, 10, 50, 100, 500},
			},
		),
		RPCCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rpc_calls_total",
				Help:      "Total number of RPC calls by procedure and code",
			},
			[]string{"procedure", "code"},
		),
		RPCDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "rpc_duration_seconds",
				Help:      "RPC duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
		LiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "live_sessions",
				Help:      "Number of open live editing connections",
			},
		),
		LiveMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "live_messages_total",
				Help:      "Live editing messages received by type",
			},
			[]string{"type"},
		),
		SessionEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "session_events_total",
				Help:      "Account state changes by type",
			},
			[]string{"type"},
		),
	}
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRender implements preview.Observer.
func (m *Metrics) ObserveRender(view *preview.View) {
	outcome := OutcomeOK
	switch {
	case view.TimedOut:
		outcome = OutcomeTimeout
	case view.Failed():
		outcome = OutcomeError
	}
	m.RendersTotal.WithLabelValues(outcome).Inc()
	m.RenderDuration.Observe(view.Duration.Seconds())
	m.RenderConsole.Observe(float64(len(view.Console)))
}

// ObserveRPC implements middleware.RPCObserver.
func (m *Metrics) ObserveRPC(procedure, code string, duration time.Duration) {
	m.RPCCalls.WithLabelValues(procedure, code).Inc()
	m.RPCDuration.WithLabelValues(procedure).Observe(duration.Seconds())
}

// LiveOpened and LiveClosed track open live connections.
func (m *Metrics) LiveOpened() { m.LiveSessions.Inc() }

func (m *Metrics) LiveClosed() { m.LiveSessions.Dec() }

// LiveMessage counts a received live message.
func (m *Metrics) LiveMessage(kind string) {
	m.LiveMessages.WithLabelValues(kind).Inc()
}

// SessionEvent counts an account state change.
func (m *Metrics) SessionEvent(kind string) {
	m.SessionEvents.WithLabelValues(kind).Inc()
}
