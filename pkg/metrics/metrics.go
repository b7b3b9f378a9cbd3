/*
Package metrics provides Prometheus metrics collection and exposition for
logjamd.

Metrics are registered against the default Prometheus registry at package
init and exposed over HTTP for scraping. The catalog covers the server's
observable surfaces: connections accepted by the listener, commands
dispatched through the pipeline, authentication outcomes, and the vaults
a registry has open.

# Usage

	import "github.com/logjamd/logjamd/pkg/metrics"

	metrics.ConnectionsTotal.Inc()
	metrics.ConnectionsActive.Inc()
	defer metrics.ConnectionsActive.Dec()

	timer := metrics.NewTimer()
	result, err := executor.Execute(user, command)
	timer.ObserveDuration(metrics.CommandDuration)
	if err != nil {
		metrics.CommandsFailed.Inc()
	}

	http.Handle("/metrics", metrics.Handler())
*/
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Connection metrics
	ConnectionsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "logjamd_connections_total",
			Help: "Total number of connections accepted by the listener",
		},
	)

	ConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "logjamd_connections_active",
			Help: "Number of connections currently open",
		},
	)

	// Authentication metrics
	AuthFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logjamd_auth_failures_total",
			Help: "Total number of rejected authentication attempts by reason",
		},
		[]string{"reason"},
	)

	AuthSuccessTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "logjamd_auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	// Command metrics
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logjamd_commands_total",
			Help: "Total number of commands executed by outcome",
		},
		[]string{"outcome"},
	)

	CommandsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "logjamd_commands_failed_total",
			Help: "Total number of commands that returned an execution error",
		},
	)

	CommandDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "logjamd_command_duration_seconds",
			Help:    "Time taken to execute a command in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Vault metrics
	VaultsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "logjamd_vaults_open",
			Help: "Number of vaults currently open in the registry",
		},
	)

	VaultDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "logjamd_vault_documents",
			Help: "Number of documents currently stored in a vault",
		},
		[]string{"vault"},
	)

	RebuildDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "logjamd_index_rebuild_duration_seconds",
			Help:    "Duration of index rebuild/optimize passes by vault",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"vault"},
	)

	CheckpointsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logjamd_checkpoints_total",
			Help: "Total number of vault checkpoints written by vault",
		},
		[]string{"vault"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(ConnectionsTotal)
	prometheus.MustRegister(ConnectionsActive)
	prometheus.MustRegister(AuthFailuresTotal)
	prometheus.MustRegister(AuthSuccessTotal)
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(CommandsFailed)
	prometheus.MustRegister(CommandDuration)
	prometheus.MustRegister(VaultsOpen)
	prometheus.MustRegister(VaultDocuments)
	prometheus.MustRegister(RebuildDuration)
	prometheus.MustRegister(CheckpointsTotal)
}

// Handler returns the HTTP handler that serves the Prometheus text
// exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a convenience wrapper for timing an operation and recording
// its elapsed duration to a histogram.
type Timer struct {
	start time.Time
}

// NewTimer starts a new Timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ObserveDuration records the elapsed time since NewTimer to histogram.
func (t *Timer) ObserveDuration(histogram prometheus.Histogram) {
	duration := time.Since(t.start).Seconds()
	histogram.Observe(duration)
}

// ObserveDurationVec records the elapsed time since NewTimer to a
// labeled histogram vector.
func (t *Timer) ObserveDurationVec(histogram prometheus.ObserverVec, labels ...string) {
	duration := time.Since(t.start).Seconds()
	histogram.WithLabelValues(labels...).Observe(duration)
}

// Duration returns the elapsed time since NewTimer without recording it.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
