package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuelPilot/internal/domain/models"
)

func TestCSVHistoryStoreRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	content := "date,price,cost,volume,comp1,comp2\n" +
		"2025-01-02,101,90,1050,100,99\n" +
		"2025-01-01,100,90,1000,,\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	store := NewCSVHistoryStore(path)
	recs, err := store.Read(context.Background(), "diesel")
	require.NoError(t, err)
	require.Len(t, recs, 2)

	// Sorted ascending regardless of file order.
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), recs[0].Date)
	assert.Nil(t, recs[0].Competitors)

	assert.Equal(t, 101.0, recs[1].Price)
	assert.Equal(t, map[string]float64{"comp1": 100, "comp2": 99}, recs[1].Competitors)
}

func TestCSVHistoryStoreReadMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	require.NoError(t, os.WriteFile(path, []byte("date,price\n2025-01-01,100\n"), 0o644))

	_, err := NewCSVHistoryStore(path).Read(context.Background(), "diesel")
	assert.ErrorContains(t, err, "missing column")
}

func TestCSVHistoryStoreAppendRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	store := NewCSVHistoryStore(path)
	ctx := context.Background()

	rec := models.HistoricalRecord{
		Date:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Price:       100.5,
		Cost:        90,
		Volume:      1000,
		Competitors: map[string]float64{"comp1": 99.5},
	}
	require.NoError(t, store.Append(ctx, "diesel", rec))

	rec2 := rec
	rec2.Date = rec.Date.AddDate(0, 0, 1)
	rec2.Price = 101
	require.NoError(t, store.Append(ctx, "diesel", rec2))

	got, err := store.Read(ctx, "diesel")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, rec.Price, got[0].Price)
	assert.Equal(t, rec.Competitors, got[0].Competitors)
	assert.Equal(t, rec2.Date, got[1].Date)
}

func TestMemoryHistoryStore(t *testing.T) {
	store := NewMemoryHistoryStore()
	ctx := context.Background()

	d1 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	d0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.Append(ctx, "diesel", models.HistoricalRecord{Date: d1, Price: 101}))
	require.NoError(t, store.Append(ctx, "diesel", models.HistoricalRecord{Date: d0, Price: 100}))

	recs, err := store.Read(ctx, "diesel")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, d0, recs[0].Date)

	other, err := store.Read(ctx, "e95")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestMemoryRecommendationStore(t *testing.T) {
	store := NewMemoryRecommendationStore()
	ctx := context.Background()

	rec := &models.Recommendation{Product: "diesel", Date: "2025-01-09", RecommendedPrice: 104.5}
	require.NoError(t, store.Save(ctx, rec, nil))

	got, err := store.Get(ctx, "diesel", "2025-01-09")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 104.5, got.RecommendedPrice)

	// Stored copy is detached from the caller's struct.
	rec.RecommendedPrice = 1
	got, _ = store.Get(ctx, "diesel", "2025-01-09")
	assert.Equal(t, 104.5, got.RecommendedPrice)

	missing, err := store.Get(ctx, "diesel", "2025-01-10")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
