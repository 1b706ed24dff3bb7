package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "activity_signup_service"

var (
	signupCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "directory",
		Name:      "signups_total",
		Help:      "Number of participants successfully signed up.",
	})

	removalCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "directory",
		Name:      "removals_total",
		Help:      "Number of participants successfully removed.",
	})

	rejectionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "directory",
		Name:      "rejections_total",
		Help:      "Signup and removal requests rejected by the directory, labeled by operation and reason.",
	}, []string{"operation", "reason"})

	participantsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "directory",
		Name:      "participants",
		Help:      "Current number of participants enrolled per activity.",
	}, []string{"activity"})

	httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests served, labeled by method, route pattern and status.",
	}, []string{"method", "route", "status"})

	httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by method and route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	prometheus.MustRegister(signupCounter, removalCounter, rejectionCounter, participantsGauge, httpRequests, httpDuration)
}

// RecordSignup counts a signup and refreshes the activity's participant gauge.
func RecordSignup(activity string, participants int) {
	signupCounter.Inc()
	RecordParticipants(activity, participants)
}

// RecordRemoval counts a removal and refreshes the activity's participant gauge.
func RecordRemoval(activity string, participants int) {
	removalCounter.Inc()
	RecordParticipants(activity, participants)
}

// RecordRejection counts a failed directory operation.
func RecordRejection(operation, reason string) {
	rejectionCounter.WithLabelValues(operation, reason).Inc()
}

// RecordParticipants sets the participant gauge for activity.
func RecordParticipants(activity string, participants int) {
	participantsGauge.WithLabelValues(activity).Set(float64(participants))
}

// RecordHTTPRequest observes a served request. route should be the router pattern, not the raw path.
func RecordHTTPRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
