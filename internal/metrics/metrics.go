// Package metrics exposes Prometheus instruments for camera sessions and light commands.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "camlight"

var (
	// RPCRequests counts device RPC calls by method and HTTP status ("error" for transport failures)
	RPCRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Device RPC calls by method and HTTP status.",
		},
		[]string{"method", "status"},
	)

	// RPCDuration observes device RPC latency
	RPCDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rpc_duration_seconds",
			Help:      "Device RPC latency by method.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method"},
	)

	// Logins counts authentication attempts by outcome
	Logins = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logins_total",
			Help:      "Authentication runs by outcome (cached, direct, challenge, failed).",
		},
		[]string{"outcome"},
	)

	// Commands counts handled light commands
	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Light commands handled by device, mode and result.",
		},
		[]string{"device", "mode", "result"},
	)

	// Reauthentications counts commands that had to log in again after a rejected session
	Reauthentications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reauthentications_total",
			Help:      "Commands retried after the device rejected the session.",
		},
		[]string{"device"},
	)

	// WriteFallbacks counts setConfig calls that needed the system.multicall form
	WriteFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_fallbacks_total",
			Help:      "Configuration writes retried through system.multicall.",
		},
	)

	// BridgeCommands counts commands arriving over MQTT or HTTP before they reach a device
	BridgeCommands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bridge_commands_total",
			Help:      "Commands received by transport and outcome (accepted, unknown_device, queue_full, bad_request).",
		},
		[]string{"transport", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(RPCRequests, RPCDuration, Logins, Commands, Reauthentications, WriteFallbacks, BridgeCommands)
}

// ObserveRPC records one RPC round trip. statusCode 0 means the call failed before a response.
func ObserveRPC(method string, statusCode int, elapsed time.Duration) {
	status := "error"
	if statusCode != 0 {
		status = strconv.Itoa(statusCode)
	}
	RPCRequests.WithLabelValues(method, status).Inc()
	RPCDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Handler returns the HTTP handler serving the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
