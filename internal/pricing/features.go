package pricing

import (
	"sort"
	"time"

	"FuelPilot/internal/domain/models"
)

// BuildBaseline derives today's baseline features from history and today's
// raw inputs. History must be non-empty; it is sorted ascending by date
// before use and never mutated. Rolling windows trail over history only and
// shrink near the start, so the day being priced never leaks into its own
// features.
func BuildBaseline(today models.TodayInput, history []models.HistoricalRecord) (models.BaselineFeatures, error) {
	if len(history) == 0 {
		return models.BaselineFeatures{}, ErrInsufficientHistory
	}

	hist := make([]models.HistoricalRecord, len(history))
	copy(hist, history)
	sort.SliceStable(hist, func(i, j int) bool { return hist[i].Date.Before(hist[j].Date) })
	last := hist[len(hist)-1]

	b := models.BaselineFeatures{Date: today.Date}

	b.Cost = last.Cost
	if today.Cost != nil {
		b.Cost = *today.Cost
	}

	if len(today.Competitors) > 0 {
		b.Competitors = aggregateCompetitors(today.Competitors)
	} else if len(last.Competitors) > 0 {
		b.Competitors = aggregateCompetitors(last.Competitors)
	}

	b.LastPrice = last.Price
	if today.LastPrice != nil {
		b.LastPrice = *today.LastPrice
	}

	b.VolMA7 = trailingMean(hist, 7, volumeOf)
	b.VolMA30 = trailingMean(hist, 30, volumeOf)
	b.PriceMA7 = trailingMean(hist, 7, priceOf)

	b.VolLag1 = last.Volume
	b.VolLag7 = last.Volume
	if len(hist) >= 7 {
		b.VolLag7 = hist[len(hist)-7].Volume
	}
	b.PriceLag1 = last.Price

	b.DayOfWeek = mondayIndexed(today.Date.Weekday())
	b.IsWeekend = b.DayOfWeek >= 5
	b.Month = int(today.Date.Month())

	return b, nil
}

// BuildCandidateFeatures applies a trial price to the baseline and recomputes
// only the price-derived fields. Pure and O(1); repeated application with the
// same price is idempotent.
//
// comp_mean substitutes to 0 in the difference and to 1 in the gap
// denominator when competitors are absent (or their mean is zero), matching
// the inputs the demand model was trained on.
func BuildCandidateFeatures(baseline models.BaselineFeatures, price float64) models.CandidateFeatureVector {
	v := models.CandidateFeatureVector{BaselineFeatures: baseline, Price: price}

	compMean := 0.0
	gapDenom := 1.0
	if baseline.Competitors != nil {
		compMean = baseline.Competitors.Mean
		if compMean != 0 {
			gapDenom = compMean
		}
	}
	v.PriceDiff = price - compMean
	v.PriceGapPct = (price - compMean) / gapDenom

	v.Margin = price - baseline.Cost
	if price != 0 {
		v.MarginPct = v.Margin / price
	}
	return v
}

func aggregateCompetitors(prices map[string]float64) *models.CompetitorStats {
	s := &models.CompetitorStats{}
	first := true
	sum := 0.0
	for _, p := range prices {
		sum += p
		if first || p < s.Min {
			s.Min = p
		}
		if first || p > s.Max {
			s.Max = p
		}
		first = false
	}
	s.Mean = sum / float64(len(prices))
	return s
}

// trailingMean averages field over the last min(window, len) records.
func trailingMean(hist []models.HistoricalRecord, window int, field func(models.HistoricalRecord) float64) float64 {
	n := len(hist)
	if window > n {
		window = n
	}
	sum := 0.0
	for _, r := range hist[n-window:] {
		sum += field(r)
	}
	return sum / float64(window)
}

func volumeOf(r models.HistoricalRecord) float64 { return r.Volume }
func priceOf(r models.HistoricalRecord) float64  { return r.Price }

// mondayIndexed converts Go's Sunday=0 weekday to the Monday=0 convention the
// demand model was trained with.
func mondayIndexed(d time.Weekday) int {
	return (int(d) + 6) % 7
}
