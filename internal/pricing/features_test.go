package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuelPilot/internal/domain/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func fp(v float64) *float64 { return &v }

func sampleHistory(n int) []models.HistoricalRecord {
	hist := make([]models.HistoricalRecord, n)
	start := day("2025-01-01")
	for i := range hist {
		hist[i] = models.HistoricalRecord{
			Date:   start.AddDate(0, 0, i),
			Price:  100 + float64(i)*0.5,
			Cost:   90,
			Volume: 1000 + float64(i)*40,
		}
	}
	return hist
}

func TestBuildBaselineEmptyHistory(t *testing.T) {
	_, err := BuildBaseline(models.TodayInput{Date: day("2025-01-09")}, nil)
	require.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestBuildBaselineDefaultsFromLastRecord(t *testing.T) {
	hist := sampleHistory(8)
	hist[7].Competitors = map[string]float64{"a": 101, "b": 99}

	b, err := BuildBaseline(models.TodayInput{Date: day("2025-01-09")}, hist)
	require.NoError(t, err)

	assert.Equal(t, 90.0, b.Cost)
	assert.Equal(t, hist[7].Price, b.LastPrice)
	require.NotNil(t, b.Competitors)
	assert.Equal(t, 100.0, b.Competitors.Mean)
	assert.Equal(t, 99.0, b.Competitors.Min)
	assert.Equal(t, 101.0, b.Competitors.Max)
}

func TestBuildBaselineTodayOverrides(t *testing.T) {
	hist := sampleHistory(8)
	hist[7].Competitors = map[string]float64{"stale": 50}

	today := models.TodayInput{
		Date:        day("2025-01-09"),
		Cost:        fp(92),
		LastPrice:   fp(104),
		Competitors: map[string]float64{"c1": 100, "c2": 99, "c3": 101},
	}
	b, err := BuildBaseline(today, hist)
	require.NoError(t, err)

	assert.Equal(t, 92.0, b.Cost)
	assert.Equal(t, 104.0, b.LastPrice)
	require.NotNil(t, b.Competitors)
	assert.InDelta(t, 100.0, b.Competitors.Mean, 1e-9)
}

func TestBuildBaselineRollingWindows(t *testing.T) {
	hist := sampleHistory(8)
	b, err := BuildBaseline(models.TodayInput{Date: day("2025-01-09")}, hist)
	require.NoError(t, err)

	// Last 7 of 8 records.
	wantVolMA7 := 0.0
	wantPriceMA7 := 0.0
	for _, r := range hist[1:] {
		wantVolMA7 += r.Volume
		wantPriceMA7 += r.Price
	}
	assert.InDelta(t, wantVolMA7/7, b.VolMA7, 1e-9)
	assert.InDelta(t, wantPriceMA7/7, b.PriceMA7, 1e-9)

	// Only 8 records exist, so the 30-day window shrinks to all of them.
	wantVolMA30 := wantVolMA7 + hist[0].Volume
	assert.InDelta(t, wantVolMA30/8, b.VolMA30, 1e-9)
}

func TestBuildBaselineWindowShorterThanHistory(t *testing.T) {
	hist := sampleHistory(3)
	b, err := BuildBaseline(models.TodayInput{Date: day("2025-01-04")}, hist)
	require.NoError(t, err)

	want := (hist[0].Volume + hist[1].Volume + hist[2].Volume) / 3
	assert.InDelta(t, want, b.VolMA7, 1e-9)
	assert.InDelta(t, want, b.VolMA30, 1e-9)
}

func TestBuildBaselineLags(t *testing.T) {
	hist := sampleHistory(8)
	b, err := BuildBaseline(models.TodayInput{Date: day("2025-01-09")}, hist)
	require.NoError(t, err)

	assert.Equal(t, hist[7].Volume, b.VolLag1)
	assert.Equal(t, hist[1].Volume, b.VolLag7)
	assert.Equal(t, hist[7].Price, b.PriceLag1)

	short := sampleHistory(4)
	b, err = BuildBaseline(models.TodayInput{Date: day("2025-01-05")}, short)
	require.NoError(t, err)
	assert.Equal(t, short[3].Volume, b.VolLag7)
}

func TestBuildBaselineSortsUnorderedHistory(t *testing.T) {
	hist := sampleHistory(8)
	shuffled := []models.HistoricalRecord{hist[3], hist[7], hist[0], hist[5], hist[1], hist[6], hist[2], hist[4]}

	want, err := BuildBaseline(models.TodayInput{Date: day("2025-01-09")}, hist)
	require.NoError(t, err)
	got, err := BuildBaseline(models.TodayInput{Date: day("2025-01-09")}, shuffled)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Caller's slice order is untouched.
	assert.Equal(t, hist[3].Date, shuffled[0].Date)
}

func TestBuildBaselineCalendar(t *testing.T) {
	hist := sampleHistory(8)

	b, err := BuildBaseline(models.TodayInput{Date: day("2025-01-09")}, hist) // Thursday
	require.NoError(t, err)
	assert.Equal(t, 3, b.DayOfWeek)
	assert.False(t, b.IsWeekend)
	assert.Equal(t, 1, b.Month)

	b, err = BuildBaseline(models.TodayInput{Date: day("2025-01-11")}, hist) // Saturday
	require.NoError(t, err)
	assert.Equal(t, 5, b.DayOfWeek)
	assert.True(t, b.IsWeekend)

	b, err = BuildBaseline(models.TodayInput{Date: day("2025-01-12")}, hist) // Sunday
	require.NoError(t, err)
	assert.Equal(t, 6, b.DayOfWeek)
	assert.True(t, b.IsWeekend)
}

func TestBuildCandidateFeatures(t *testing.T) {
	baseline := models.BaselineFeatures{
		Cost:        90,
		LastPrice:   104,
		Competitors: &models.CompetitorStats{Mean: 100, Min: 99, Max: 101},
	}
	v := BuildCandidateFeatures(baseline, 105)

	assert.Equal(t, 105.0, v.Price)
	assert.InDelta(t, 5.0, v.PriceDiff, 1e-9)
	assert.InDelta(t, 0.05, v.PriceGapPct, 1e-9)
	assert.InDelta(t, 15.0, v.Margin, 1e-9)
	assert.InDelta(t, 15.0/105.0, v.MarginPct, 1e-9)
}

func TestBuildCandidateFeaturesNoCompetitors(t *testing.T) {
	baseline := models.BaselineFeatures{Cost: 90, LastPrice: 104}
	v := BuildCandidateFeatures(baseline, 105)

	// comp_mean substitutes to 0, gap denominator to 1.
	assert.Equal(t, 105.0, v.PriceDiff)
	assert.Equal(t, 105.0, v.PriceGapPct)

	_, ok := v.FeatureMap()["comp_mean"]
	assert.False(t, ok)
}

func TestBuildCandidateFeaturesZeroCompMean(t *testing.T) {
	baseline := models.BaselineFeatures{
		Cost:        90,
		Competitors: &models.CompetitorStats{Mean: 0, Min: -1, Max: 1},
	}
	v := BuildCandidateFeatures(baseline, 105)
	assert.Equal(t, 105.0, v.PriceGapPct)
}

func TestBuildCandidateFeaturesZeroPrice(t *testing.T) {
	v := BuildCandidateFeatures(models.BaselineFeatures{Cost: 90}, 0)
	assert.Equal(t, 0.0, v.MarginPct)
	assert.Equal(t, -90.0, v.Margin)
}

func TestBuildCandidateFeaturesIdempotent(t *testing.T) {
	baseline := models.BaselineFeatures{
		Cost:        90,
		LastPrice:   104,
		Competitors: &models.CompetitorStats{Mean: 100, Min: 99, Max: 101},
		VolMA7:      1100,
	}
	first := BuildCandidateFeatures(baseline, 103.5)
	second := BuildCandidateFeatures(first.BaselineFeatures, first.Price)
	assert.Equal(t, first, second)
}
