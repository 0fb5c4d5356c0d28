package observability

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	apiRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntx_api_requests_total",
			Help: "Total number of REST calls made to the job-board backend.",
		},
		[]string{"method", "route", "status"},
	)
	apiRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huntx_api_request_duration_seconds",
			Help:    "REST call latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	bridgeRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntx_bridge_http_requests_total",
			Help: "Total number of HTTP requests served by the local view bridge.",
		},
		[]string{"method", "route", "status"},
	)
	bridgeRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "huntx_bridge_http_request_duration_seconds",
			Help:    "Local view bridge latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	bridgeWSActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huntx_bridge_ws_active_connections",
			Help: "Number of view subscribers attached to the update stream.",
		},
	)
	realtimeConnected = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huntx_realtime_connected",
			Help: "1 while the realtime channel is connected, 0 otherwise.",
		},
	)
	realtimeEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "huntx_realtime_events_total",
			Help: "Total number of realtime frames by direction and event name.",
		},
		[]string{"direction", "event"},
	)
	realtimeReconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "huntx_realtime_reconnects_total",
			Help: "Total number of realtime reconnect attempts.",
		},
	)
	realtimeQueueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huntx_realtime_outbound_queue_depth",
			Help: "Outbound frames waiting for the channel to reconnect.",
		},
	)
	notificationsUnread = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "huntx_notifications_unread",
			Help: "Unread notifications held by the aggregator.",
		},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "huntx_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		apiRequestsTotal,
		apiRequestDuration,
		bridgeRequestsTotal,
		bridgeRequestDuration,
		bridgeWSActive,
		realtimeConnected,
		realtimeEventsTotal,
		realtimeReconnectsTotal,
		realtimeQueueDepth,
		notificationsUnread,
		amqpPublishErrorsTotal,
	)
}

// HTTPMetricsMiddleware records bridge request counts and latencies.
func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		bridgeRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		bridgeRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// ObserveAPIRequest records one backend call. status is 0 for transport failures.
func ObserveAPIRequest(method, route string, status int, elapsed time.Duration) {
	apiRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	apiRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func IncBridgeWSActive() {
	bridgeWSActive.Inc()
}

func DecBridgeWSActive() {
	bridgeWSActive.Dec()
}

func SetRealtimeConnected(connected bool) {
	if connected {
		realtimeConnected.Set(1)
		return
	}
	realtimeConnected.Set(0)
}

func IncRealtimeEvent(direction, event string) {
	realtimeEventsTotal.WithLabelValues(direction, event).Inc()
}

func IncRealtimeReconnect() {
	realtimeReconnectsTotal.Inc()
}

func SetRealtimeQueueDepth(n int) {
	realtimeQueueDepth.Set(float64(n))
}

func SetUnreadNotifications(n int) {
	notificationsUnread.Set(float64(n))
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}
