package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	StageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsafe_stage_total",
			Help: "Total number of pipeline stage executions by outcome",
		},
		[]string{"stage", "outcome"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "foodsafe_stage_duration_seconds",
			Help:    "Duration of pipeline stages in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 80},
		},
		[]string{"stage"},
	)

	InferenceRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "foodsafe_inference_requests_total",
			Help: "Total number of chat-completion requests by provider and HTTP status (0 = transport error)",
		},
		[]string{"provider", "status"},
	)

	RecordWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "foodsafe_record_write_failures_total",
			Help: "Total number of refined-text log writes that failed",
		},
	)
)

// ObserveStage records one stage execution.
func ObserveStage(stage string, started time.Time, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	StageTotal.WithLabelValues(stage, outcome).Inc()
	StageDuration.WithLabelValues(stage).Observe(time.Since(started).Seconds())
}

// ObserveInference records one chat-completion request.
func ObserveInference(provider string, status int) {
	InferenceRequests.WithLabelValues(provider, strconv.Itoa(status)).Inc()
}
