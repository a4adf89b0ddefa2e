package models

import "time"

// CompetitorStats aggregates named competitor prices for one day.
type CompetitorStats struct {
	Mean float64
	Min  float64
	Max  float64
}

// BaselineFeatures is the feature set derived for "today" from history and
// today's raw inputs, before any candidate price is applied. Rolling and lag
// values are computed over history only, never over the day being priced.
type BaselineFeatures struct {
	Date      time.Time
	Cost      float64
	LastPrice float64

	// Competitors is nil when neither today's input nor the most recent
	// historical record carries competitor prices.
	Competitors *CompetitorStats

	VolMA7   float64
	VolMA30  float64
	PriceMA7 float64

	VolLag1   float64
	VolLag7   float64
	PriceLag1 float64

	DayOfWeek int // Monday=0 .. Sunday=6, the trained-model convention
	IsWeekend bool
	Month     int
}

// CandidateFeatureVector is BaselineFeatures with a trial price applied and
// the price-derived fields recomputed.
type CandidateFeatureVector struct {
	BaselineFeatures

	Price       float64
	PriceDiff   float64
	PriceGapPct float64
	Margin      float64
	MarginPct   float64
}

// FeatureMap flattens the vector into the named features the demand model was
// trained on. Competitor aggregates are omitted when absent so the model reads
// them as zero, matching the training-side column fill.
func (v CandidateFeatureVector) FeatureMap() map[string]float64 {
	weekend := 0.0
	if v.IsWeekend {
		weekend = 1.0
	}
	m := map[string]float64{
		"price":         v.Price,
		"price_diff":    v.PriceDiff,
		"price_gap_pct": v.PriceGapPct,
		"vol_ma7":       v.VolMA7,
		"vol_ma30":      v.VolMA30,
		"price_ma7":     v.PriceMA7,
		"vol_lag1":      v.VolLag1,
		"vol_lag7":      v.VolLag7,
		"price_lag1":    v.PriceLag1,
		"dayofweek":     float64(v.DayOfWeek),
		"is_weekend":    weekend,
		"month":         float64(v.Month),
		"margin":        v.Margin,
		"margin_pct":    v.MarginPct,
	}
	if v.Competitors != nil {
		m["comp_mean"] = v.Competitors.Mean
		m["comp_min"] = v.Competitors.Min
		m["comp_max"] = v.Competitors.Max
	}
	return m
}
