package pricing

import (
	"math"

	"FuelPilot/internal/domain/models"
)

// Violation reason labels, stable across API responses and storage.
const (
	ReasonMaxChange   = "max_change_pct"
	ReasonMinMargin   = "min_margin"
	ReasonPriceBounds = "price_floor_or_ceiling"
	ReasonCompTooHigh = "comp_too_high"
)

// boundsEps absorbs float noise so grid endpoints generated from the very
// bounds being checked are never rejected.
const boundsEps = 1e-9

// EvaluateGuardrails checks a candidate price against the configured rules
// and returns the reason of the highest-priority violation, or "" when the
// price passes. Nil rules never fire. The competitor premium rule, when it
// fires, overrides any other reason so operators see the market-facing
// violation first.
func EvaluateGuardrails(price float64, baseline models.BaselineFeatures, cfg *models.GuardrailConfig) (violated bool, reason string) {
	if cfg == nil {
		return false, ""
	}

	if cfg.MaxChangePct != nil && baseline.LastPrice > 0 {
		change := math.Abs(price-baseline.LastPrice) / baseline.LastPrice
		if change > *cfg.MaxChangePct+boundsEps {
			violated, reason = true, ReasonMaxChange
		}
	}
	if !violated && cfg.MinMargin != nil && price-baseline.Cost < *cfg.MinMargin {
		violated, reason = true, ReasonMinMargin
	}
	if !violated {
		if (cfg.MinPrice != nil && price < *cfg.MinPrice-boundsEps) || (cfg.MaxPrice != nil && price > *cfg.MaxPrice+boundsEps) {
			violated, reason = true, ReasonPriceBounds
		}
	}
	if cfg.MaxVsCompPct != nil && baseline.Competitors != nil && baseline.Competitors.Max > 0 {
		if price > baseline.Competitors.Max*(1+*cfg.MaxVsCompPct) {
			violated, reason = true, ReasonCompTooHigh
		}
	}
	return violated, reason
}
