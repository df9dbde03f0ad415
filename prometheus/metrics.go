package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zishop_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zishop_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// Authentication metrics
var (
	LoginCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zishop_logins_total",
			Help: "Total number of successful logins",
		},
		[]string{"kind"}, // client, staff
	)

	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zishop_client_registrations_total",
			Help: "Total number of client registrations",
		},
	)

	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zishop_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"reason"},
	)
)

// Order metrics
var (
	OrdersCreatedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zishop_orders_created_total",
			Help: "Total number of orders placed",
		},
	)

	OrderRejectedCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zishop_orders_rejected_total",
			Help: "Total number of rejected order operations",
		},
		[]string{"reason"}, // validation, not_found, insufficient_stock, invalid_transition, backend
	)

	OrderTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zishop_order_status_transitions_total",
			Help: "Total number of accepted order status transitions",
		},
		[]string{"from", "to"},
	)

	NotificationErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zishop_notification_errors_total",
			Help: "Total number of failed notification emissions",
		},
		[]string{"event"},
	)
)

// Database metrics
var (
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zishop_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(OrdersCreatedCounter)
	prometheus.MustRegister(OrderRejectedCounter)
	prometheus.MustRegister(OrderTransitionCounter)
	prometheus.MustRegister(NotificationErrorCounter)
	prometheus.MustRegister(DBOperationDuration)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsMiddleware records request count and duration per route
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			HTTPRequestCounter.WithLabelValues(method, path, status).Inc()
			HTTPRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

			return nil
		}
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operation string) func(startTime time.Time) {
	return func(startTime time.Time) {
		DBOperationDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}
}

// RecordOrderCreated increments the placed orders counter
func RecordOrderCreated() {
	OrdersCreatedCounter.Inc()
}

// RecordOrderRejected increments the rejection counter for reason
func RecordOrderRejected(reason string) {
	OrderRejectedCounter.WithLabelValues(reason).Inc()
}

// RecordTransition increments the transition counter
func RecordTransition(from, to string) {
	OrderTransitionCounter.WithLabelValues(from, to).Inc()
}

// RecordNotificationError increments the failed emission counter
func RecordNotificationError(event string) {
	NotificationErrorCounter.WithLabelValues(event).Inc()
}

// RecordLogin increments the login counter for an account kind
func RecordLogin(kind string) {
	LoginCounter.WithLabelValues(kind).Inc()
}

// RecordAuthError increments the authentication error counter
func RecordAuthError(reason string) {
	AuthErrorCounter.WithLabelValues(reason).Inc()
}
