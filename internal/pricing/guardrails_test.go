package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"FuelPilot/internal/domain/models"
)

func TestEvaluateGuardrailsNilConfig(t *testing.T) {
	violated, reason := EvaluateGuardrails(999, models.BaselineFeatures{}, nil)
	assert.False(t, violated)
	assert.Empty(t, reason)
}

func TestEvaluateGuardrailsEmptyConfig(t *testing.T) {
	violated, _ := EvaluateGuardrails(999, models.BaselineFeatures{LastPrice: 100, Cost: 90}, &models.GuardrailConfig{})
	assert.False(t, violated)
}

func TestEvaluateGuardrailsMaxChange(t *testing.T) {
	baseline := models.BaselineFeatures{LastPrice: 104, Cost: 90}
	cfg := &models.GuardrailConfig{MaxChangePct: fp(0.03)}

	violated, reason := EvaluateGuardrails(110, baseline, cfg)
	assert.True(t, violated)
	assert.Equal(t, ReasonMaxChange, reason)

	violated, _ = EvaluateGuardrails(107, baseline, cfg)
	assert.False(t, violated)

	// Rule is skipped when last price is non-positive.
	violated, _ = EvaluateGuardrails(110, models.BaselineFeatures{LastPrice: 0}, cfg)
	assert.False(t, violated)
}

func TestEvaluateGuardrailsMinMargin(t *testing.T) {
	baseline := models.BaselineFeatures{LastPrice: 104, Cost: 90}
	cfg := &models.GuardrailConfig{MinMargin: fp(1.0)}

	violated, reason := EvaluateGuardrails(90.5, baseline, cfg)
	assert.True(t, violated)
	assert.Equal(t, ReasonMinMargin, reason)

	violated, _ = EvaluateGuardrails(91, baseline, cfg)
	assert.False(t, violated)
}

func TestEvaluateGuardrailsPriceBounds(t *testing.T) {
	baseline := models.BaselineFeatures{LastPrice: 104, Cost: 90}
	cfg := &models.GuardrailConfig{MinPrice: fp(95), MaxPrice: fp(110)}

	violated, reason := EvaluateGuardrails(94, baseline, cfg)
	assert.True(t, violated)
	assert.Equal(t, ReasonPriceBounds, reason)

	violated, reason = EvaluateGuardrails(111, baseline, cfg)
	assert.True(t, violated)
	assert.Equal(t, ReasonPriceBounds, reason)

	violated, _ = EvaluateGuardrails(100, baseline, cfg)
	assert.False(t, violated)
}

func TestEvaluateGuardrailsCompCeiling(t *testing.T) {
	baseline := models.BaselineFeatures{
		LastPrice:   104,
		Cost:        90,
		Competitors: &models.CompetitorStats{Mean: 100, Min: 99, Max: 101},
	}
	cfg := &models.GuardrailConfig{MaxVsCompPct: fp(0.0)}

	violated, reason := EvaluateGuardrails(101.5, baseline, cfg)
	assert.True(t, violated)
	assert.Equal(t, ReasonCompTooHigh, reason)

	violated, _ = EvaluateGuardrails(101, baseline, cfg)
	assert.False(t, violated)

	// No competitor data means the rule cannot fire.
	violated, _ = EvaluateGuardrails(150, models.BaselineFeatures{LastPrice: 104}, cfg)
	assert.False(t, violated)
}

func TestEvaluateGuardrailsCompCeilingOverridesOtherReasons(t *testing.T) {
	baseline := models.BaselineFeatures{
		LastPrice:   104,
		Cost:        90,
		Competitors: &models.CompetitorStats{Mean: 100, Min: 99, Max: 101},
	}
	cfg := &models.GuardrailConfig{
		MinMargin:    fp(1000), // violated by every price
		MaxVsCompPct: fp(0.0),
	}

	violated, reason := EvaluateGuardrails(102, baseline, cfg)
	assert.True(t, violated)
	assert.Equal(t, ReasonCompTooHigh, reason)

	// Below the ceiling only the margin rule fires.
	violated, reason = EvaluateGuardrails(100, baseline, cfg)
	assert.True(t, violated)
	assert.Equal(t, ReasonMinMargin, reason)
}
