// Package metrics defines the Prometheus instrumentation for the bill
// tracker. Counters are registered in the default registry via promauto and
// exposed on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DrewDeMo/finance/internal/notify"
)

var (
	// BillsCreated counts bills created by explicit user submission.
	BillsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finance_bills_created_total",
		Help: "Total number of bills created by users",
	})

	// RolloversGenerated counts bills materialized by the recurrence expander.
	RolloversGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finance_rollover_bills_generated_total",
		Help: "Total number of recurring bill occurrences generated",
	})

	// AutopayMarked counts automatic bills marked paid by reconciliation.
	AutopayMarked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "finance_autopay_bills_marked_total",
		Help: "Total number of automatic bills marked paid on their due date",
	})

	// NotificationsEmitted counts notifications by severity.
	NotificationsEmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_notifications_emitted_total",
		Help: "Total number of notifications emitted by severity",
	}, []string{"severity"})

	// StorageErrors counts storage failures by operation.
	StorageErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "finance_storage_errors_total",
		Help: "Total number of storage errors by operation",
	}, []string{"op"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finance_http_request_duration_seconds",
		Help:    "HTTP request duration by method, route and status",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// CountingNotifier wraps a notifier so every emitted notification is counted
// by severity before being forwarded.
func CountingNotifier(next notify.Notifier) notify.Notifier {
	return notify.Func(func(message string, severity notify.Severity) {
		NotificationsEmitted.WithLabelValues(string(severity)).Inc()
		next.Notify(message, severity)
	})
}

// HTTPMiddleware records a duration observation for every request.
func HTTPMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if err != nil {
				if he, ok := err.(*echo.HTTPError); ok {
					status = he.Code
				}
			}
			route := c.Path()
			if route == "" {
				route = c.Request().URL.Path
			}
			httpRequestDuration.
				WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).
				Observe(time.Since(start).Seconds())

			return err
		}
	}
}

// Register exposes the default Prometheus registry on /metrics.
func Register(e *echo.Echo) {
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
}
