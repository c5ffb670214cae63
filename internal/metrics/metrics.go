package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llao_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llao_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llao_logins_total",
		Help: "Login attempts by result",
	}, []string{"result"})

	dashboardOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llao_dashboard_operations_total",
		Help: "Dashboard mutations by operation",
	}, []string{"operation"})

	exportsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "llao_exports_total",
		Help: "Generated exports by format",
	}, []string{"format"})
)

// Результаты входа
const (
	LoginSuccess   = "success"
	LoginFailure   = "invalid"
	LoginDisabled  = "disabled"
	LoginThrottled = "throttled"
)

func ObserveHTTPRequest(method, route, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	httpRequestDuration.WithLabelValues(method, route, status).Observe(duration.Seconds())
}

func ObserveLogin(result string) {
	loginsTotal.WithLabelValues(result).Inc()
}

func ObserveDashboardOperation(operation string) {
	dashboardOperations.WithLabelValues(operation).Inc()
}

func ObserveExport(format string) {
	exportsTotal.WithLabelValues(format).Inc()
}
