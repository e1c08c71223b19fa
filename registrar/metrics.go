package registrar

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	submittedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parachain_ops",
		Subsystem: "registrar",
		Name:      "extrinsics_submitted_total",
		Help:      "Number of extrinsics submitted",
	}, []string{"call"})

	failedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parachain_ops",
		Subsystem: "registrar",
		Name:      "extrinsics_failed_total",
		Help:      "Number of extrinsics that failed to submit or were not included",
	}, []string{"call"})

	submitLatencyMetric = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parachain_ops",
		Subsystem: "registrar",
		Name:      "extrinsic_latency_seconds",
		Help:      "Time from submission until the extrinsic reached the awaited status",
		Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
	}, []string{"call"})

	leasesForcedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "parachain_ops",
		Subsystem: "registrar",
		Name:      "leases_forced_total",
		Help:      "Number of force_lease dispatches submitted",
	})

	reservationRoundsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parachain_ops",
		Subsystem: "registrar",
		Name:      "reservation_rounds_total",
		Help:      "Number of reservation rounds",
	}, []string{"strategy"})

	headMetric = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "parachain_ops",
		Subsystem: "registrar",
		Name:      "last_head",
		Help:      "Number of the last seen relay chain head",
	})
)

// observe records the outcome of a submission started at start.
func observe(call string, start time.Time, err error) {
	submittedMetric.WithLabelValues(call).Inc()
	if err != nil {
		failedMetric.WithLabelValues(call).Inc()
		return
	}
	submitLatencyMetric.WithLabelValues(call).Observe(time.Since(start).Seconds())
}
