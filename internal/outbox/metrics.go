package outbox

import "github.com/prometheus/client_golang/prometheus"

var (
	enqueuedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_signup_service",
		Subsystem: "outbox",
		Name:      "events_enqueued_total",
		Help:      "Number of enrollment events accepted into the outbox buffer.",
	})

	droppedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_signup_service",
		Subsystem: "outbox",
		Name:      "events_dropped_total",
		Help:      "Number of enrollment events rejected because the outbox buffer was full.",
	})

	deliveredCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_signup_service",
		Subsystem: "outbox",
		Name:      "events_delivered_total",
		Help:      "Number of enrollment events successfully published to Kafka.",
	})

	failedCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "activity_signup_service",
		Subsystem: "outbox",
		Name:      "events_failed_total",
		Help:      "Number of enrollment events that failed to publish.",
	})

	batchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "activity_signup_service",
		Subsystem: "outbox",
		Name:      "batch_duration_seconds",
		Help:      "Time spent delivering a batch of enrollment events.",
		Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
	})
)

func init() {
	prometheus.MustRegister(enqueuedCounter, droppedCounter, deliveredCounter, failedCounter, batchDuration)
}
