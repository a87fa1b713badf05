// Package metrics exposes Prometheus collectors for the delivery core.
package metrics

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SSEConnections tracks currently open push channels.
	SSEConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "moment_notification_sse_connections",
		Help: "Number of currently open SSE push channels.",
	})

	// EventsSent counts successful SSE event writes by event name.
	EventsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moment_notification_events_sent_total",
		Help: "Total SSE events written, labelled by event name.",
	}, []string{"event"})

	// DeliveryFailures counts failed sends by reason (not_found, write_failed).
	DeliveryFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "moment_notification_delivery_failures_total",
		Help: "Total failed push attempts, labelled by failure reason.",
	}, []string{"reason"})

	// FanoutBatches counts processed feed fan-out batches.
	FanoutBatches = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "moment_notification_fanout_batches_total",
		Help: "Total feed fan-out batches persisted.",
	})
)

func init() {
	prometheus.MustRegister(SSEConnections, EventsSent, DeliveryFailures, FanoutBatches)
}

// Handler returns the /metrics scrape endpoint as an echo handler.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
