package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// SignupsTotal counts successful signups.
	SignupsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signups_total",
			Help: "Total number of successful signups",
		},
	)

	// LoginsTotal counts login attempts by result (success, failure).
	LoginsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "logins_total",
			Help: "Total number of login attempts by result",
		},
		[]string{"result"},
	)

	// UsersByRole is the current number of user accounts per role,
	// refreshed periodically from the store.
	UsersByRole = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "users_by_role",
			Help: "Number of user accounts by role",
		},
		[]string{"role"},
	)
)

var initOnce sync.Once

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, SignupsTotal, LoginsTotal, UsersByRole)
	})
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncSignups increments the successful-signup counter.
func IncSignups() {
	SignupsTotal.Inc()
}

// IncLogins increments the login counter for the given result (success, failure).
func IncLogins(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

// SetUsersByRole replaces the users-by-role gauge with fresh counts.
func SetUsersByRole(counts map[string]int) {
	UsersByRole.Reset()
	for role, n := range counts {
		UsersByRole.WithLabelValues(role).Set(float64(n))
	}
}
