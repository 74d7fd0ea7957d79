package session

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const outcomeOK = "ok"

var (
	predictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "predictd",
			Subsystem: "session",
			Name:      "predictions_total",
			Help:      "Total prediction calls by outcome",
		},
		[]string{"outcome"},
	)

	predictionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "predictd",
			Subsystem: "session",
			Name:      "prediction_duration_seconds",
			Help:      "Duration of upstream prediction calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	historyEntries = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "predictd",
			Subsystem: "session",
			Name:      "history_entries",
			Help:      "Prediction history entries currently retained",
		},
	)
)

func init() {
	prometheus.MustRegister(predictionsTotal, predictionDuration, historyEntries)
}

// observePrediction records one resolved prediction call. The outcome is
// "ok" or the failure code.
func observePrediction(outcome string, took time.Duration) {
	predictionsTotal.WithLabelValues(outcome).Inc()
	predictionDuration.WithLabelValues(outcome).Observe(took.Seconds())
}
