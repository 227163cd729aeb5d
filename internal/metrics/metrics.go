package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeCompleted labels runs that reached the completed state.
	OutcomeCompleted = "completed"
	// OutcomeError labels runs aborted by a stage failure.
	OutcomeError = "error"
)

var (
	runsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "gitworth",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs finished, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "gitworth",
			Name:      "stage_seconds",
			Help:      "Stage function latency in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"stage"},
	)
)

// Register attaches gitworth collectors to the supplied Prometheus registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		runsTotal,
		stageDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveRun records a finished run with its outcome label.
func ObserveRun(outcome string) {
	if outcome != OutcomeError {
		outcome = OutcomeCompleted
	}
	runsTotal.WithLabelValues(outcome).Inc()
}

// ObserveStage records one stage function invocation.
func ObserveStage(stage string, duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	stageDurationSeconds.WithLabelValues(stage).Observe(duration.Seconds())
}
