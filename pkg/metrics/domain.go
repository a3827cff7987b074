package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ─── Storage ─────────────────────────────────────────────────────────────────

var (
	dbQuery = Factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "db",
		Name:      "query_duration_seconds",
		Help:      "ORM statement latency by operation.",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .5, 1},
	}, []string{"operation"})

	// CacheHits and CacheMisses are labelled by driver: redis or memory.
	CacheHits = Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cache lookups that found a value.",
	}, []string{"driver"})

	CacheMisses = Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cache lookups that found nothing usable.",
	}, []string{"driver"})
)

// ObserveDBQuery is called from the gorm callbacks:
//
//	metrics.ObserveDBQuery("query", startedAt)
func ObserveDBQuery(operation string, start time.Time) {
	dbQuery.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// ─── Queue ───────────────────────────────────────────────────────────────────

var (
	queueJobs = Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "jobs_total",
		Help:      "Queue job attempts by type and outcome.",
	}, []string{"job_type", "status"})

	queueDuration = Factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "queue",
		Name:      "job_duration_seconds",
		Help:      "Time spent in Handle per job type.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job_type"})
)

// RecordQueueJob counts one attempt. status is success, retry or failed.
func RecordQueueJob(jobType, status string, start time.Time) {
	queueJobs.WithLabelValues(jobType, status).Inc()
	queueDuration.WithLabelValues(jobType).Observe(time.Since(start).Seconds())
}

// ─── Orders ──────────────────────────────────────────────────────────────────

var (
	ordersPlaced = Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Orders placed by payment method.",
	}, []string{"payment_method"})

	orderRevenue = Factory.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "revenue_total",
		Help:      "Sum of placed order totals.",
	})

	orderTransitions = Factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "status_transitions_total",
		Help:      "Accepted order status changes.",
	}, []string{"from", "to"})
)

func RecordOrderPlaced(paymentMethod string, total float64) {
	if paymentMethod == "" {
		paymentMethod = "unknown"
	}
	ordersPlaced.WithLabelValues(paymentMethod).Inc()
	if total > 0 {
		orderRevenue.Add(total)
	}
}

func RecordStatusTransition(from, to string) {
	orderTransitions.WithLabelValues(from, to).Inc()
}
