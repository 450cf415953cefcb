package rpcclient

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics used in monitoring service.
var (
	rpcRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of RPC requests performed, per method and outcome",
			Name:      "rpc_requests_total",
			Namespace: "nearkit",
		},
		[]string{"method", "outcome"},
	)
	rpcRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Help:      "Number of RPC request retries, per method",
			Name:      "rpc_retries_total",
			Namespace: "nearkit",
		},
		[]string{"method"},
	)
)

func incRequests(method, outcome string) {
	rpcRequests.WithLabelValues(method, outcome).Inc()
}

func incRetries(method string) {
	rpcRetries.WithLabelValues(method).Inc()
}

func init() {
	prometheus.MustRegister(
		rpcRequests,
		rpcRetries,
	)
}
