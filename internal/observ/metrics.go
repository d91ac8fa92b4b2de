package observ

import "github.com/prometheus/client_golang/prometheus"

var HTTPRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tasklane_http_requests_total",
		Help: "Total number of HTTP requests received",
	},
	[]string{"endpoint", "status", "method"},
)

var HTTPRequestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "tasklane_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	},
	[]string{"endpoint", "method"},
)

var HTTPErrorsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tasklane_http_errors_total",
		Help: "Total number of failed HTTP requests (4xx/5xx)",
	},
	[]string{"endpoint", "status", "method"},
)

var RateLimitRejectionsTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tasklane_rate_limit_rejections_total",
		Help: "Total number of requests rejected by the auth rate limiter",
	},
)

// LoginsTotal counts login attempts by result: success, invalid, unknown_tenant.
var LoginsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tasklane_logins_total",
		Help: "Total number of login attempts by result",
	},
	[]string{"result"},
)

var PlanLimitRejectionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tasklane_plan_limit_rejections_total",
		Help: "Total number of creations rejected because the plan limit was reached",
	},
	[]string{"resource"},
)

var RealtimeConnections = prometheus.NewGauge(
	prometheus.GaugeOpts{
		Name: "tasklane_realtime_connections",
		Help: "Number of open event stream connections",
	},
)

var RealtimeEventsDroppedTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "tasklane_realtime_events_dropped_total",
		Help: "Total number of events not delivered because a subscriber was too slow",
	},
)

// RegisterMetrics registers every collector with reg. Call it once per
// process; the collectors are package globals.
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		HTTPErrorsTotal,
		RateLimitRejectionsTotal,
		LoginsTotal,
		PlanLimitRejectionsTotal,
		RealtimeConnections,
		RealtimeEventsDroppedTotal,
	)
}
