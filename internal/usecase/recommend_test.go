package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuelPilot/internal/domain/models"
	"FuelPilot/internal/pricing"
	internalrepo "FuelPilot/internal/repository"
	"FuelPilot/pkg/cache"
	applogger "FuelPilot/pkg/logger"
)

type modelFunc func(ctx context.Context, vectors []models.CandidateFeatureVector) ([]float64, error)

func (f modelFunc) Predict(ctx context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
	return f(ctx, vectors)
}

// linearDemand slopes volume down with price so profit has an interior shape.
var linearDemand = modelFunc(func(_ context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		out[i] = 5000 - 30*v.Price
	}
	return out, nil
})

type nopMetrics struct{}

func (nopMetrics) RecordRecommendation(string, bool)      {}
func (nopMetrics) RecordRecommendedPrice(string, float64) {}
func (nopMetrics) RecordQuote(string)                     {}
func (nopMetrics) RecordMessageSent(string, string)       {}
func (nopMetrics) RecordError(string)                     {}
func (nopMetrics) RecordLatency(string, float64)          {}

type fakeQuoteStore struct {
	latest map[string]float64
	calls  int
}

func (s *fakeQuoteStore) Store(context.Context, *models.Quote) error        { return nil }
func (s *fakeQuoteStore) StoreBatch(context.Context, []*models.Quote) error { return nil }
func (s *fakeQuoteStore) LatestBySource(context.Context, string, time.Time) (map[string]float64, error) {
	s.calls++
	return s.latest, nil
}
func (s *fakeQuoteStore) Health(context.Context) error { return nil }
func (s *fakeQuoteStore) Close() error                 { return nil }

type fakeRecPublisher struct {
	published []*models.Recommendation
}

func (p *fakeRecPublisher) Publish(_ context.Context, rec *models.Recommendation) error {
	p.published = append(p.published, rec)
	return nil
}
func (p *fakeRecPublisher) Close() error { return nil }

type fakeFeatureStore struct {
	product string
	rows    []models.TrainingFeatureRow
}

func (s *fakeFeatureStore) ReplaceAll(_ context.Context, product string, rows []models.TrainingFeatureRow) error {
	s.product = product
	s.rows = rows
	return nil
}

func fp(v float64) *float64 { return &v }

func seedHistory(t *testing.T, store *internalrepo.MemoryHistoryStore, product string, n int) {
	t.Helper()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		err := store.Append(context.Background(), product, models.HistoricalRecord{
			Date:   start.AddDate(0, 0, i),
			Price:  100 + float64(i)*0.5,
			Cost:   90,
			Volume: 1000 + float64(i)*40,
		})
		require.NoError(t, err)
	}
}

func newTestUsecase(t *testing.T, deps PricingDeps) *PricingUsecase {
	t.Helper()
	if deps.Engine == nil {
		deps.Engine = pricing.NewRecommender(linearDemand, 2)
	}
	if deps.Metrics == nil {
		deps.Metrics = nopMetrics{}
	}
	if deps.Logger == nil {
		l, err := applogger.New(&applogger.Config{Level: "error", Format: "console", Output: "stdout"})
		require.NoError(t, err)
		deps.Logger = l
	}
	return NewPricingUsecase(deps)
}

func TestRecommendPersistsCachesAndPublishes(t *testing.T) {
	hist := internalrepo.NewMemoryHistoryStore()
	seedHistory(t, hist, "diesel", 30)
	recStore := internalrepo.NewMemoryRecommendationStore()
	pub := &fakeRecPublisher{}
	memCache := cache.NewMemoryCache()

	u := newTestUsecase(t, PricingDeps{
		History:  hist,
		RecStore: recStore,
		RecPub:   pub,
		Cache:    memCache,
		Products: []string{"diesel"},
	})

	rec, candidates, err := u.Recommend(context.Background(), &models.RecommendRequest{
		Product: "diesel",
		Date:    "2025-01-31",
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, "diesel", rec.Product)
	assert.Equal(t, "2025-01-31", rec.Date)
	assert.Len(t, candidates, pricing.DefaultCandidateCount)

	stored, err := recStore.Get(context.Background(), "diesel", "2025-01-31")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, rec.RecommendedPrice, stored.RecommendedPrice)

	require.Len(t, pub.published, 1)
	assert.Equal(t, rec.RecommendedPrice, pub.published[0].RecommendedPrice)

	// Cached copy serves reads without touching the store.
	var cached models.Recommendation
	require.NoError(t, memCache.Get(context.Background(), "rec:diesel:2025-01-31", &cached))
	assert.Equal(t, rec.RecommendedPrice, cached.RecommendedPrice)
}

func TestRecommendSeedsCompetitorsFromQuoteStore(t *testing.T) {
	hist := internalrepo.NewMemoryHistoryStore()
	seedHistory(t, hist, "diesel", 30)
	// Last price is ~114.5; quotes far below it make the competitor ceiling
	// bind, which proves the live quotes reached the engine.
	quotes := &fakeQuoteStore{latest: map[string]float64{"north_ave": 100, "station_b": 102}}

	u := newTestUsecase(t, PricingDeps{
		History:    hist,
		RecStore:   internalrepo.NewMemoryRecommendationStore(),
		QuoteStore: quotes,
		Guardrails: &models.GuardrailConfig{MaxVsCompPct: fp(0.0)},
	})

	rec, candidates, err := u.Recommend(context.Background(), &models.RecommendRequest{
		Product: "diesel",
		Date:    "2025-01-31",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, quotes.calls)

	// Every candidate sits far above comp max, so the ceiling rejects the
	// whole grid and the fallback tier kicks in.
	for _, c := range candidates {
		assert.True(t, c.Violated)
		assert.Equal(t, pricing.ReasonCompTooHigh, c.ViolationReason)
	}
	assert.True(t, rec.GuardrailApplied)
	require.NotNil(t, rec.ViolationReason)
	assert.Equal(t, pricing.ReasonCompTooHigh, *rec.ViolationReason)
}

func TestRecommendExplicitCompetitorsSkipQuoteStore(t *testing.T) {
	hist := internalrepo.NewMemoryHistoryStore()
	seedHistory(t, hist, "diesel", 10)
	quotes := &fakeQuoteStore{latest: map[string]float64{"x": 1}}

	u := newTestUsecase(t, PricingDeps{
		History:    hist,
		RecStore:   internalrepo.NewMemoryRecommendationStore(),
		QuoteStore: quotes,
	})

	_, _, err := u.Recommend(context.Background(), &models.RecommendRequest{
		Product:     "diesel",
		Date:        "2025-01-11",
		Competitors: map[string]float64{"given": 104},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, quotes.calls)
}

func TestRecommendInvalidDate(t *testing.T) {
	u := newTestUsecase(t, PricingDeps{
		History:  internalrepo.NewMemoryHistoryStore(),
		RecStore: internalrepo.NewMemoryRecommendationStore(),
	})

	_, _, err := u.Recommend(context.Background(), &models.RecommendRequest{
		Product: "diesel",
		Date:    "31-01-2025",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pricing.ErrInvalidRange)
}

func TestRecommendEmptyHistory(t *testing.T) {
	u := newTestUsecase(t, PricingDeps{
		History:  internalrepo.NewMemoryHistoryStore(),
		RecStore: internalrepo.NewMemoryRecommendationStore(),
	})

	_, _, err := u.Recommend(context.Background(), &models.RecommendRequest{
		Product: "empty",
		Date:    "2025-01-31",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, pricing.ErrInsufficientHistory)
}

func TestGetRecommendationFallsBackToStore(t *testing.T) {
	recStore := internalrepo.NewMemoryRecommendationStore()
	memCache := cache.NewMemoryCache()
	saved := &models.Recommendation{Product: "diesel", Date: "2025-01-31", RecommendedPrice: 1.79}
	require.NoError(t, recStore.Save(context.Background(), saved, nil))

	u := newTestUsecase(t, PricingDeps{
		History:  internalrepo.NewMemoryHistoryStore(),
		RecStore: recStore,
		Cache:    memCache,
	})

	got, err := u.GetRecommendation(context.Background(), "diesel", "2025-01-31")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1.79, got.RecommendedPrice)

	// Read-through populated the cache.
	var cached models.Recommendation
	require.NoError(t, memCache.Get(context.Background(), "rec:diesel:2025-01-31", &cached))
	assert.Equal(t, 1.79, cached.RecommendedPrice)

	missing, err := u.GetRecommendation(context.Background(), "diesel", "2025-02-01")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestRebuildFeatures(t *testing.T) {
	hist := internalrepo.NewMemoryHistoryStore()
	seedHistory(t, hist, "diesel", 10)
	fs := &fakeFeatureStore{}

	u := newTestUsecase(t, PricingDeps{
		History:      hist,
		RecStore:     internalrepo.NewMemoryRecommendationStore(),
		FeatureStore: fs,
	})

	n, err := u.RebuildFeatures(context.Background(), "diesel")
	require.NoError(t, err)
	assert.Equal(t, 9, n) // first day has no lag and is dropped
	assert.Equal(t, "diesel", fs.product)
	assert.Len(t, fs.rows, 9)

	_, err = u.RebuildFeatures(context.Background(), "unknown")
	assert.ErrorIs(t, err, pricing.ErrInsufficientHistory)
}

func TestRunDailyContinuesAfterFailure(t *testing.T) {
	hist := internalrepo.NewMemoryHistoryStore()
	seedHistory(t, hist, "e10", 20)
	recStore := internalrepo.NewMemoryRecommendationStore()

	u := newTestUsecase(t, PricingDeps{
		History:  hist,
		RecStore: recStore,
		Products: []string{"diesel", "e10"}, // diesel has no history
	})

	day := time.Date(2025, 1, 21, 0, 0, 0, 0, time.UTC)
	err := u.RunDaily(context.Background(), day)
	require.Error(t, err)
	assert.ErrorIs(t, err, pricing.ErrInsufficientHistory)

	rec, err := recStore.Get(context.Background(), "e10", "2025-01-21")
	require.NoError(t, err)
	assert.NotNil(t, rec, "healthy product should still be priced")
}

func TestMergeGuardrails(t *testing.T) {
	base := &models.GuardrailConfig{
		MaxChangePct: fp(0.03),
		MinMargin:    fp(0.05),
		MinPrice:     fp(1.0),
	}
	override := &models.GuardrailConfig{
		MinMargin: fp(0.10),
		MaxPrice:  fp(2.5),
	}

	merged := mergeGuardrails(base, override)
	require.NotNil(t, merged)
	assert.Equal(t, 0.03, *merged.MaxChangePct)
	assert.Equal(t, 0.10, *merged.MinMargin)
	assert.Equal(t, 1.0, *merged.MinPrice)
	assert.Equal(t, 2.5, *merged.MaxPrice)
	assert.Nil(t, merged.MaxVsCompPct)

	assert.Same(t, base, mergeGuardrails(base, nil))
	assert.Same(t, override, mergeGuardrails(nil, override))

	// Merging never mutates the configured defaults.
	assert.Equal(t, 0.05, *base.MinMargin)
}
