package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmqlink_connect_total",
		Help: "Connect attempts per endpoint, by result",
	}, []string{"connection_id", "result"})

	endpointState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "rmqlink_endpoint_state",
		Help: "Current endpoint state (0=disconnected, 1=socket open, 2=authenticated, 3=ready)",
	}, []string{"connection_id"})

	rpcFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmqlink_rpc_failures_total",
		Help: "Classified protocol failures, by reason",
	}, []string{"reason"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rmqlink_http_requests_total",
		Help: "HTTP requests handled by rmqlink-agent, by method and status code",
	}, []string{"method", "code"})
)

// ObserveConnect учитывает попытку подключения endpoint.
func ObserveConnect(cid string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	connectTotal.WithLabelValues(cid, result).Inc()
}

// SetEndpointState публикует текущее состояние endpoint.
func SetEndpointState(cid string, state int) {
	endpointState.WithLabelValues(cid).Set(float64(state))
}

// ObserveRPCFailure учитывает классифицированную ошибку протокола.
func ObserveRPCFailure(reason string) {
	rpcFailures.WithLabelValues(reason).Inc()
}

// ObserveHTTPRequest учитывает HTTP запрос к агенту.
func ObserveHTTPRequest(method, code string) {
	httpRequests.WithLabelValues(method, code).Inc()
}
