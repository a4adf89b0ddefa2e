package features

import (
	"sort"
	"time"

	"FuelPilot/internal/domain/models"
)

// ComputeHistoryFeatures derives the training dataset from raw daily history.
// Every rolling and lag value for day i is computed strictly from days before
// i, mirroring the features built for a live pricing run. The first record
// has no lag-1 value and is dropped; other unavailable values stay nil.
func ComputeHistoryFeatures(history []models.HistoricalRecord) []models.TrainingFeatureRow {
	if len(history) < 2 {
		return nil
	}

	hist := make([]models.HistoricalRecord, len(history))
	copy(hist, history)
	sort.SliceStable(hist, func(i, j int) bool { return hist[i].Date.Before(hist[j].Date) })

	rows := make([]models.TrainingFeatureRow, 0, len(hist)-1)
	for i := 1; i < len(hist); i++ {
		r := hist[i]
		row := models.TrainingFeatureRow{
			Date:      r.Date,
			Price:     r.Price,
			Cost:      r.Cost,
			Volume:    r.Volume,
			DayOfWeek: mondayIndexed(r.Date.Weekday()),
			Month:     int(r.Date.Month()),
			Margin:    r.Price - r.Cost,
		}
		row.IsWeekend = row.DayOfWeek >= 5
		if r.Price != 0 {
			row.MarginPct = row.Margin / r.Price
		}

		if len(r.Competitors) > 0 {
			mean, min, max := aggregate(r.Competitors)
			row.CompMean, row.CompMin, row.CompMax = &mean, &min, &max
			if mean != 0 {
				diff := r.Price - mean
				gap := diff / mean
				row.PriceDiff, row.PriceGapPct = &diff, &gap
			}
		}

		row.VolMA7 = trailingMean(hist, i, 7, func(h models.HistoricalRecord) float64 { return h.Volume })
		row.VolMA30 = trailingMean(hist, i, 30, func(h models.HistoricalRecord) float64 { return h.Volume })
		row.PriceMA7 = trailingMean(hist, i, 7, func(h models.HistoricalRecord) float64 { return h.Price })

		vol1 := hist[i-1].Volume
		price1 := hist[i-1].Price
		row.VolLag1, row.PriceLag1 = &vol1, &price1
		if i >= 7 {
			vol7 := hist[i-7].Volume
			row.VolLag7 = &vol7
		}

		rows = append(rows, row)
	}
	return rows
}

// trailingMean averages field over up to window records ending just before
// index i. Nil only when no prior records exist.
func trailingMean(hist []models.HistoricalRecord, i, window int, field func(models.HistoricalRecord) float64) *float64 {
	start := i - window
	if start < 0 {
		start = 0
	}
	if start >= i {
		return nil
	}
	sum := 0.0
	for _, r := range hist[start:i] {
		sum += field(r)
	}
	mean := sum / float64(i-start)
	return &mean
}

func aggregate(prices map[string]float64) (mean, min, max float64) {
	first := true
	sum := 0.0
	for _, p := range prices {
		sum += p
		if first || p < min {
			min = p
		}
		if first || p > max {
			max = p
		}
		first = false
	}
	return sum / float64(len(prices)), min, max
}

func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}
