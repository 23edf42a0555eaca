package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "librarylend_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "librarylend_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	registrationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "librarylend_registrations_total",
		Help: "Count of catalog registrations by entity and result",
	}, []string{"entity", "result"})

	lendingOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "librarylend_lending_operations_total",
		Help: "Count of borrow and return operations by result",
	}, []string{"operation", "result"})

	openLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "librarylend_open_loans",
		Help: "Number of borrowings without a return date",
	})

	overdueLoans = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "librarylend_overdue_loans",
		Help: "Number of open borrowings older than the configured loan period",
	})

	activityFeedSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "librarylend_activity_feed_subscribers",
		Help: "Number of connected activity feed websocket clients",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveRegistration counts a catalog registration attempt
func ObserveRegistration(entity, result string) {
	registrationsTotal.WithLabelValues(entity, result).Inc()
}

// ObserveLending counts a borrow or return attempt with its result
func ObserveLending(operation, result string) {
	lendingOperations.WithLabelValues(operation, result).Inc()
}

// SetOpenLoans sets the open-loan gauge
func SetOpenLoans(count int) {
	if count < 0 {
		count = 0
	}
	openLoans.Set(float64(count))
}

// SetOverdueLoans sets the overdue-loan gauge
func SetOverdueLoans(count int) {
	if count < 0 {
		count = 0
	}
	overdueLoans.Set(float64(count))
}

// SetActivitySubscribers sets the websocket subscriber gauge
func SetActivitySubscribers(count int) {
	activityFeedSubscribers.Set(float64(count))
}
