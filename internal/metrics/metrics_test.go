package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestRecordHelpers(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordCycle(0.5)
		RecordCycleFailure()
		RecordQuotes("oddsfeed", 12)
		RecordSourceFailure("oddsfeed")
		RecordExclusion("ambiguous")
		RecordGateDecision("rejected", "daily_loss_limit")
		RecordIntentSubmitted()
		RecordCircuitBreakerTrip()
	})
}

func TestGaugeHelpers(t *testing.T) {
	InitRegistry()

	tests := []struct {
		name  string
		value float64
	}{
		{"positive", 100},
		{"zero", 0},
		{"negative", -42.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				UpdateDailyPnL(tt.value)
				UpdateDailyBets(tt.value)
				UpdateOpenPositions(tt.value)
				UpdateMatchesTracked(tt.value)
			})
		})
	}
}

func TestHandler(t *testing.T) {
	InitRegistry()
	assert.NotNil(t, Handler())
}
