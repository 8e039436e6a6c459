// Package metrics exports analysis and scoring telemetry to Prometheus.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"manomitra/internal/domain"
)

// PrometheusObserver records analysis attempts and questionnaire tiers.
type PrometheusObserver struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	scores   *prometheus.CounterVec
}

// NewPrometheusObserver registers the collectors on reg, reusing ones that already exist.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "manomitra"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	requests, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "analysis_requests_total",
		Help:      "Analysis attempts by variant and outcome.",
	}, []string{"variant", "outcome"}))
	if err != nil {
		return nil, err
	}
	duration, err := register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "analysis_duration_seconds",
		Help:      "Latency of analysis attempts including the model call.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"variant"}))
	if err != nil {
		return nil, err
	}
	scores, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "questionnaire_scores_total",
		Help:      "Scored questionnaires by tier.",
	}, []string{"tier"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusObserver{requests: requests, duration: duration, scores: scores}, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, fmt.Errorf("register metric: %w", err)
	}
	return c, nil
}

// RecordAnalysis tracks one analysis attempt.
func (o *PrometheusObserver) RecordAnalysis(variant string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	o.requests.WithLabelValues(variant, outcome).Inc()
	o.duration.WithLabelValues(variant).Observe(duration.Seconds())
}

// RecordScore counts a scored questionnaire.
func (o *PrometheusObserver) RecordScore(tier domain.Tier) {
	if o == nil {
		return
	}
	o.scores.WithLabelValues(string(tier)).Inc()
}
