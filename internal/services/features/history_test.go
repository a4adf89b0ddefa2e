package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuelPilot/internal/domain/models"
)

func mkHistory(n int) []models.HistoricalRecord {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	hist := make([]models.HistoricalRecord, n)
	for i := range hist {
		hist[i] = models.HistoricalRecord{
			Date:   start.AddDate(0, 0, i),
			Price:  100 + float64(i),
			Cost:   90,
			Volume: 1000 + float64(i)*10,
		}
	}
	return hist
}

func TestComputeHistoryFeaturesTooShort(t *testing.T) {
	assert.Nil(t, ComputeHistoryFeatures(nil))
	assert.Nil(t, ComputeHistoryFeatures(mkHistory(1)))
}

func TestComputeHistoryFeaturesDropsFirstDay(t *testing.T) {
	hist := mkHistory(10)
	rows := ComputeHistoryFeatures(hist)
	require.Len(t, rows, 9)
	assert.Equal(t, hist[1].Date, rows[0].Date)
}

func TestComputeHistoryFeaturesLookbackOnly(t *testing.T) {
	hist := mkHistory(10)
	rows := ComputeHistoryFeatures(hist)

	// Row for day 1 sees only day 0.
	r0 := rows[0]
	require.NotNil(t, r0.VolLag1)
	assert.Equal(t, hist[0].Volume, *r0.VolLag1)
	require.NotNil(t, r0.VolMA7)
	assert.Equal(t, hist[0].Volume, *r0.VolMA7)
	assert.Nil(t, r0.VolLag7)

	// Row for day 8 averages days 1..7.
	r7 := rows[6] // hist index 7
	want := 0.0
	for _, h := range hist[:7] {
		want += h.Volume
	}
	require.NotNil(t, r7.VolMA7)
	assert.InDelta(t, want/7, *r7.VolMA7, 1e-9)
	require.NotNil(t, rows[6].VolLag7)
	assert.Equal(t, hist[0].Volume, *rows[6].VolLag7)
}

func TestComputeHistoryFeaturesCompetitorPolicy(t *testing.T) {
	hist := mkHistory(3)
	hist[1].Competitors = map[string]float64{"a": 102, "b": 98}
	hist[2].Competitors = map[string]float64{"a": 1, "b": -1} // mean zero

	rows := ComputeHistoryFeatures(hist)
	require.Len(t, rows, 2)

	r := rows[0]
	require.NotNil(t, r.CompMean)
	assert.Equal(t, 100.0, *r.CompMean)
	assert.Equal(t, 98.0, *r.CompMin)
	assert.Equal(t, 102.0, *r.CompMax)
	require.NotNil(t, r.PriceDiff)
	assert.InDelta(t, hist[1].Price-100, *r.PriceDiff, 1e-9)
	require.NotNil(t, r.PriceGapPct)
	assert.InDelta(t, (hist[1].Price-100)/100, *r.PriceGapPct, 1e-9)

	// Zero competitor mean leaves the gap features unset rather than dividing.
	z := rows[1]
	require.NotNil(t, z.CompMean)
	assert.Equal(t, 0.0, *z.CompMean)
	assert.Nil(t, z.PriceDiff)
	assert.Nil(t, z.PriceGapPct)

	// No competitor data at all.
	rowsNoComp := ComputeHistoryFeatures(mkHistory(3))
	assert.Nil(t, rowsNoComp[0].CompMean)
	assert.Nil(t, rowsNoComp[0].PriceGapPct)
}

func TestComputeHistoryFeaturesCalendarAndMargin(t *testing.T) {
	hist := mkHistory(4) // 2025-01-01 Wednesday onward
	rows := ComputeHistoryFeatures(hist)

	assert.Equal(t, 3, rows[0].DayOfWeek) // Thursday
	assert.False(t, rows[0].IsWeekend)
	assert.Equal(t, 5, rows[2].DayOfWeek) // Saturday
	assert.True(t, rows[2].IsWeekend)
	assert.Equal(t, 1, rows[0].Month)

	assert.InDelta(t, hist[1].Price-90, rows[0].Margin, 1e-9)
	assert.InDelta(t, (hist[1].Price-90)/hist[1].Price, rows[0].MarginPct, 1e-9)
}
