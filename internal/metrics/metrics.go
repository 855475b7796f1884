package metrics

import (
	"regexp"
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

	// RunsInFlight is the number of reporter runs currently executing.
	RunsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "reporter_runs_in_flight",
			Help: "Number of reporter runs currently executing",
		},
	)

	// RunsTotal counts finished reporter runs by trigger (schedule, manual) and status (succeeded, failed).
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reporter_runs_total",
			Help: "Total number of reporter runs finished by trigger and status",
		},
		[]string{"trigger", "status"},
	)

	// DeliveriesTotal counts notification deliveries by channel type and outcome (success, failure).
	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_deliveries_total",
			Help: "Total number of notification deliveries by channel type and outcome",
		},
		[]string{"type", "outcome"},
	)

	// DeliveryDuration tracks how long each notification delivery took.
	DeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "notification_delivery_duration_seconds",
			Help:    "Notification delivery duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"type"},
	)

	// ScheduledEntries is the number of reporters registered with the cron runner.
	ScheduledEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "scheduler_entries",
			Help: "Number of reporters registered with the scheduler",
		},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, RunsInFlight, RunsTotal, DeliveriesTotal, DeliveryDuration, ScheduledEntries)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /schedules/12 -> /schedules/{id}, /reporters/3/runs -> /reporters/{id}/runs.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// RunStarted increments the in-flight gauge; pair with RunFinished.
func RunStarted() {
	RunsInFlight.Inc()
}

// RunFinished decrements the in-flight gauge and counts the run.
func RunFinished(trigger, status string) {
	RunsInFlight.Dec()
	RunsTotal.WithLabelValues(trigger, status).Inc()
}

// RecordDelivery counts one notification attempt and its duration.
func RecordDelivery(channelType string, ok bool, durationSeconds float64) {
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	DeliveriesTotal.WithLabelValues(channelType, outcome).Inc()
	DeliveryDuration.WithLabelValues(channelType).Observe(durationSeconds)
}

// SetScheduledEntries reports how many reporters the scheduler has registered.
func SetScheduledEntries(n int) {
	ScheduledEntries.Set(float64(n))
}
