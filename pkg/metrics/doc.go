/*
Package metrics provides Prometheus metrics collection and health/readiness
reporting for logjamd.

# Architecture

	┌──────────────────── METRICS SYSTEM ──────────────────────┐
	│                                                            │
	│  ┌────────────────────────────────────────────┐          │
	│  │          Prometheus Registry                │          │
	│  │  - Global DefaultRegistry                   │          │
	│  │  - MustRegister at package init             │          │
	│  │  - Automatic Go runtime metrics             │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │           Metric Categories                 │          │
	│  │                                              │          │
	│  │  Connections: accepted, active              │          │
	│  │  Auth: success/failure by reason            │          │
	│  │  Commands: executed, failed, duration       │          │
	│  │  Vaults: open count, documents, rebuilds    │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │          HTTP Metrics Endpoint              │          │
	│  │  - Path: /metrics                           │          │
	│  │  - Format: Prometheus text exposition       │          │
	│  │  - Handler: promhttp.Handler()              │          │
	│  └──────────────────┬─────────────────────────┘          │
	│                     │                                      │
	│  ┌──────────────────▼─────────────────────────┐          │
	│  │     Health / Readiness / Liveness           │          │
	│  │  - /health, /ready, /live                   │          │
	│  │  - critical components: storage, auth,      │          │
	│  │    listener                                 │          │
	│  └────────────────────────────────────────────┘           │
	└────────────────────────────────────────────────────────┘

# Metrics Catalog

Connection metrics:

logjamd_connections_total: Counter. Connections accepted by the listener.
logjamd_connections_active: Gauge. Connections currently open.

Authentication metrics:

logjamd_auth_failures_total{reason}: Counter. Rejected logins by reason.
logjamd_auth_success_total: Counter. Successful authentications.

Command metrics:

logjamd_commands_total{outcome}: Counter. Commands executed by outcome.
logjamd_commands_failed_total: Counter. Commands that errored.
logjamd_command_duration_seconds: Histogram. Command execution latency.

Vault metrics:

logjamd_vaults_open: Gauge. Vaults currently open in the registry.
logjamd_vault_documents{vault}: Gauge. Document count per vault.
logjamd_index_rebuild_duration_seconds{vault}: Histogram. Rebuild/optimize latency.
logjamd_checkpoints_total{vault}: Counter. Checkpoints written per vault.

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
		metrics.CommandsTotal.WithLabelValues("error").Inc()
	} else {
		metrics.CommandsTotal.WithLabelValues("ok").Inc()
	}

	http.Handle("/metrics", metrics.Handler())
	http.Handle("/health", metrics.HealthHandler())
	http.Handle("/ready", metrics.ReadyHandler())
	http.Handle("/live", metrics.LivenessHandler())

A Collector samples a registry's open vaults on a 15s ticker and keeps
logjamd_vaults_open and logjamd_vault_documents current without the
server's hot path paying for the lookup on every command.
*/
package metrics
