package models

// GuardrailConfig holds the business rules a candidate price is checked
// against. Every field is optional; a nil rule is unbounded and never
// violated.
type GuardrailConfig struct {
	MaxChangePct *float64 `yaml:"max_change_pct" json:"max_change_pct,omitempty"`
	MinMargin    *float64 `yaml:"min_margin" json:"min_margin,omitempty"`
	MinPrice     *float64 `yaml:"min_price" json:"min_price,omitempty"`
	MaxPrice     *float64 `yaml:"max_price" json:"max_price,omitempty"`
	MaxVsCompPct *float64 `yaml:"max_vs_comp_pct" json:"max_vs_comp_pct,omitempty"`
}

// CandidateResult is one scored grid point. Immutable once scored.
type CandidateResult struct {
	Price           float64 `json:"price"`
	PredictedVolume float64 `json:"pred_volume"`
	PredictedProfit float64 `json:"pred_profit"`
	Violated        bool    `json:"violated"`
	ViolationReason string  `json:"violation_reason,omitempty"`
}

// Recommendation is the sole externally visible output of one pricing run.
type Recommendation struct {
	Product          string  `json:"product,omitempty"`
	Date             string  `json:"date"`
	RecommendedPrice float64 `json:"recommended_price"`
	ExpectedVolume   float64 `json:"expected_volume"`
	ExpectedProfit   float64 `json:"expected_profit"`
	GuardrailApplied bool    `json:"guardrail_applied"`
	ViolationReason  *string `json:"violation_reason"`
	CandidatesTried  int     `json:"candidates_tried"`
}
