// Package metrics provides the centralized Prometheus metrics registry for the decision engine.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	CyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "cycles_total",
		Help:      "Total number of refresh cycles started",
	})
	CycleFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "cycle_failures_total",
		Help:      "Total number of refresh cycles that failed on infrastructure errors",
	})
	QuotesIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "quotes_ingested_total",
		Help:      "Total number of odds quotes ingested, by source",
	}, []string{"source"})
	SourceFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "source_failures_total",
		Help:      "Total number of source fetch failures or timeouts, by source",
	}, []string{"source"})
	MatchExclusionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "match_exclusions_total",
		Help:      "Total number of quote groups excluded from aggregation, by reason",
	}, []string{"reason"})
	RecommendationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "recommendations_total",
		Help:      "Total number of positive-edge recommendations produced",
	})
	GateDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "gate_decisions_total",
		Help:      "Total number of gate decisions, by outcome and reason",
	}, []string{"outcome", "reason"})
	IntentsSubmittedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "intents_submitted_total",
		Help:      "Total number of approved intents forwarded to the executor",
	})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "betmaster",
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of circuit breaker trips",
	})
)

// Gauge metrics
var (
	DailyPnL = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betmaster",
		Name:      "daily_pnl",
		Help:      "Realized profit and loss since midnight",
	})
	DailyBets = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betmaster",
		Name:      "daily_bets",
		Help:      "Number of approved bets placed since midnight",
	})
	OpenPositions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betmaster",
		Name:      "open_positions",
		Help:      "Number of currently open positions",
	})
	LastStake = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betmaster",
		Name:      "last_stake",
		Help:      "Stake amount of the most recently approved bet",
	})
	MatchesTracked = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "betmaster",
		Name:      "matches_tracked",
		Help:      "Number of canonical matches in the latest cycle",
	})
)

// Histogram metrics
var (
	CycleDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "betmaster",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of a full refresh cycle in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	MatchEvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "betmaster",
		Name:      "match_evaluation_duration_seconds",
		Help:      "Duration of a single match evaluation in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CyclesTotal)
		registry.MustRegister(CycleFailuresTotal)
		registry.MustRegister(QuotesIngestedTotal)
		registry.MustRegister(SourceFailuresTotal)
		registry.MustRegister(MatchExclusionsTotal)
		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(GateDecisionsTotal)
		registry.MustRegister(IntentsSubmittedTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)

		registry.MustRegister(DailyPnL)
		registry.MustRegister(DailyBets)
		registry.MustRegister(OpenPositions)
		registry.MustRegister(LastStake)
		registry.MustRegister(MatchesTracked)

		registry.MustRegister(CycleDuration)
		registry.MustRegister(MatchEvaluationDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCycle records a refresh cycle with its duration.
func RecordCycle(durationSeconds float64) {
	CyclesTotal.Inc()
	CycleDuration.Observe(durationSeconds)
}

// RecordCycleFailure records an infrastructure-level cycle failure.
func RecordCycleFailure() {
	CycleFailuresTotal.Inc()
}

// RecordQuotes records quotes ingested from a source.
func RecordQuotes(source string, count int) {
	QuotesIngestedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordSourceFailure records a source fetch failure or timeout.
func RecordSourceFailure(source string) {
	SourceFailuresTotal.WithLabelValues(source).Inc()
}

// RecordExclusion records a quote group excluded from aggregation.
func RecordExclusion(reason string) {
	MatchExclusionsTotal.WithLabelValues(reason).Inc()
}

// RecordGateDecision records a gate decision by outcome and reason.
func RecordGateDecision(outcome, reason string) {
	GateDecisionsTotal.WithLabelValues(outcome, reason).Inc()
}

// RecordIntentSubmitted records an intent forwarded to the executor.
func RecordIntentSubmitted() {
	IntentsSubmittedTotal.Inc()
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// UpdateDailyPnL updates the daily P&L gauge.
func UpdateDailyPnL(pnl float64) {
	DailyPnL.Set(pnl)
}

// UpdateDailyBets updates the daily bet count gauge.
func UpdateDailyBets(count float64) {
	DailyBets.Set(count)
}

// UpdateOpenPositions updates the open positions gauge.
func UpdateOpenPositions(count float64) {
	OpenPositions.Set(count)
}

// UpdateMatchesTracked updates the tracked matches gauge.
func UpdateMatchesTracked(count float64) {
	MatchesTracked.Set(count)
}
