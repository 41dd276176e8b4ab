// Package metrics expone los contadores Prometheus del motor de matching.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProfileAnalysesTotal cuenta perfiles generados por origen (external / fallback).
	ProfileAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artmatch_profile_analyses_total",
			Help: "Total number of personality profiles produced, by source",
		},
		[]string{"source"},
	)

	// ProfileFallbackReasons cuenta por que se cayo al perfil determinista.
	ProfileFallbackReasons = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artmatch_profile_fallback_reasons_total",
			Help: "Reasons the external predictor was skipped or rejected",
		},
		[]string{"reason"},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artmatch_llm_request_duration_seconds",
			Help:    "Duration of external personality prediction calls",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 4, 8, 15, 30},
		},
		[]string{"outcome"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artmatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	MatchRankingsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "artmatch_match_rankings_total",
			Help: "Total number of match rankings computed",
		},
	)

	MatchCohortSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "artmatch_match_cohort_size",
			Help:    "Number of vectors in each normalization cohort",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		},
	)

	// SchedulesTotal cuenta decisiones del scheduler: created, existing, no_overlap.
	SchedulesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artmatch_schedule_decisions_total",
			Help: "Scheduling decisions by outcome",
		},
		[]string{"outcome"},
	)
)

// RecordProfile registra un perfil producido.
func RecordProfile(source string) {
	ProfileAnalysesTotal.WithLabelValues(source).Inc()
}

// RecordFallback registra el motivo de un fallback.
func RecordFallback(reason string) {
	ProfileFallbackReasons.WithLabelValues(reason).Inc()
}

// ObserveLLM registra la latencia de una llamada al predictor externo.
func ObserveLLM(outcome string, d time.Duration) {
	LLMRequestDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// RecordRanking registra un ranking y el tamano de su cohorte.
func RecordRanking(cohort int) {
	MatchRankingsTotal.Inc()
	MatchCohortSize.Observe(float64(cohort))
}

// RecordSchedule registra el resultado de una solicitud de agenda.
func RecordSchedule(outcome string) {
	SchedulesTotal.WithLabelValues(outcome).Inc()
}
