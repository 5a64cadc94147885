// Package metrics counts toss activity with Prometheus collectors and
// exports them as a node_exporter textfile.
//
// Methods handle a nil receiver, so a nil *Metrics is a no-op when no
// metrics file is configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the toss collectors and the registry they live in.
type Metrics struct {
	reg *prometheus.Registry

	// Tossed counts moved messages. Labels: direction=[inbound, outbound]
	Tossed *prometheus.CounterVec

	// Skipped counts inbound messages left alone.
	// Labels: reason=[tossed, excluded, corrupt]
	Skipped *prometheus.CounterVec

	// Abandoned counts outbound candidates given up on.
	Abandoned prometheus.Counter

	// Runs counts finished runs. Labels: result=[ok, error]
	Runs *prometheus.CounterVec

	RunDuration prometheus.Histogram

	LastRun prometheus.Gauge
}

// New creates the collectors in a private registry.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		Tossed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fdbridge",
			Name:      "messages_tossed_total",
			Help:      "Messages moved between the *.MSG directories and the message base.",
		}, []string{"direction"}),
		Skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fdbridge",
			Name:      "messages_skipped_total",
			Help:      "Inbound messages not tossed, by reason.",
		}, []string{"reason"}),
		Abandoned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fdbridge",
			Name:      "outbound_abandoned_total",
			Help:      "Outbound candidates abandoned after a write or read failure.",
		}),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fdbridge",
			Name:      "runs_total",
			Help:      "Toss runs by result.",
		}, []string{"result"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fdbridge",
			Name:      "run_duration_seconds",
			Help:      "Toss run duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "fdbridge",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last toss run finished.",
		}),
	}
	m.reg.MustRegister(m.Tossed, m.Skipped, m.Abandoned, m.Runs, m.RunDuration, m.LastRun)
	return m
}

func (m *Metrics) TossedInbound() {
	if m != nil {
		m.Tossed.WithLabelValues("inbound").Inc()
	}
}

func (m *Metrics) TossedOutbound() {
	if m != nil {
		m.Tossed.WithLabelValues("outbound").Inc()
	}
}

func (m *Metrics) Skip(reason string) {
	if m != nil {
		m.Skipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) Abandon() {
	if m != nil {
		m.Abandoned.Inc()
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Runs.WithLabelValues(result).Inc()
	m.RunDuration.Observe(d.Seconds())
	m.LastRun.SetToCurrentTime()
}

// WriteTextfile writes every collector to path in the text exposition
// format, replacing the file atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
