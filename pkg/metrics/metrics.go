// Package metrics exposes Prometheus counters/gauges for the node's
// reliable-send path, bus traffic and bearer link state, grounded on
// the teacher's promauto-based metrics package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FrameCount counts access-layer frames moved across the meshnet bridge.
	FrameCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshx_frames_total",
		Help: "The total number of access-layer frames sent or received",
	}, []string{"direction", "status"})

	// ErrorCount counts errors by subsystem and type.
	ErrorCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshx_errors_total",
		Help: "The total number of errors by subsystem",
	}, []string{"subsystem", "type"})

	// TxcmRetryCount counts TXCM retry attempts by item kind.
	TxcmRetryCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshx_txcm_retries_total",
		Help: "The total number of TXCM retry attempts",
	}, []string{"kind"})

	// TxcmTimeoutCount counts items that exhausted their retry budget.
	TxcmTimeoutCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "meshx_txcm_timeouts_total",
		Help: "The total number of TXCM items that exhausted their retry budget",
	})

	// BusPublishCount counts bus publishes by topic.
	BusPublishCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "meshx_bus_publishes_total",
		Help: "The total number of bus publishes",
	}, []string{"topic"})

	// NodeConnected reports whether the configured bearer is connected.
	NodeConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "meshx_node_connected",
		Help: "1 if the node's bearer transport is connected, 0 otherwise",
	})
)

// Direction constants for FrameCount.
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// Status constants for FrameCount.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// IncFrame increments the frame counter.
func IncFrame(direction, status string) {
	FrameCount.WithLabelValues(direction, status).Inc()
}

// IncError increments the error counter for subsystem.
func IncError(subsystem, errType string) {
	ErrorCount.WithLabelValues(subsystem, errType).Inc()
}

// IncTxcmRetry increments the TXCM retry counter for kind (e.g. "enq_send",
// "direct_send", "resend").
func IncTxcmRetry(kind string) {
	TxcmRetryCount.WithLabelValues(kind).Inc()
}

// IncTxcmTimeout increments the TXCM timeout counter.
func IncTxcmTimeout() {
	TxcmTimeoutCount.Inc()
}

// IncBusPublish increments the bus publish counter for topic.
func IncBusPublish(topic string) {
	BusPublishCount.WithLabelValues(topic).Inc()
}

// SetNodeConnected reports the bearer's connection state.
func SetNodeConnected(connected bool) {
	if connected {
		NodeConnected.Set(1)
		return
	}
	NodeConnected.Set(0)
}
