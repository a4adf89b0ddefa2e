package models

import "time"

// TrainingFeatureRow is one fully derived day of the training dataset. Fields
// that cannot be computed near the start of the history (short windows,
// missing lags) or with absent competitor data are nil rather than zero so
// the training side can decide its own fill policy.
type TrainingFeatureRow struct {
	Date   time.Time
	Price  float64
	Cost   float64
	Volume float64

	CompMean *float64
	CompMin  *float64
	CompMax  *float64

	PriceDiff   *float64
	PriceGapPct *float64

	VolMA7   *float64
	VolMA30  *float64
	PriceMA7 *float64

	VolLag1   *float64
	VolLag7   *float64
	PriceLag1 *float64

	DayOfWeek int
	IsWeekend bool
	Month     int

	Margin    float64
	MarginPct float64
}
