package models

import "time"

// HistoricalRecord is one observed day of retail activity: the price we
// charged, our unit cost, the competitor prices we saw, and the volume sold.
// History is append-only; records are never mutated after ingestion.
type HistoricalRecord struct {
	Date        time.Time
	Price       float64
	Cost        float64
	Competitors map[string]float64
	Volume      float64
}

// TodayInput carries the raw inputs known on the day being priced.
// Optional fields default from the most recent historical record.
type TodayInput struct {
	Date        time.Time
	Cost        *float64
	Competitors map[string]float64
	LastPrice   *float64
}

// Quote is a single competitor price observation from the intraday feed.
type Quote struct {
	Source    string
	Product   string
	Price     float64
	Timestamp int64 // unix seconds
}
