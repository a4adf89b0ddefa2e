package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FuelPilot/internal/domain/models"
)

type modelFunc func(ctx context.Context, vectors []models.CandidateFeatureVector) ([]float64, error)

func (f modelFunc) Predict(ctx context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
	return f(ctx, vectors)
}

// linearDemand is a downward-sloping curve, positive across the test grids.
// Profit (price-90)*(5000-30*price) rises through the whole +/-3% band
// around 104, so the best compliant candidate is the highest one.
var linearDemand = modelFunc(func(_ context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
	out := make([]float64, len(vectors))
	for i, v := range vectors {
		out[i] = 5000 - 30*v.Price
	}
	return out, nil
})

func scenarioInput() (models.TodayInput, []models.HistoricalRecord) {
	today := models.TodayInput{
		Date:        day("2025-01-09"),
		Cost:        fp(90),
		Competitors: map[string]float64{"comp1": 100, "comp2": 99, "comp3": 101},
		LastPrice:   fp(104),
	}
	return today, sampleHistory(8)
}

func TestRecommendHappyPath(t *testing.T) {
	today, hist := scenarioInput()
	cfg := &models.GuardrailConfig{MaxChangePct: fp(0.03), MinMargin: fp(1.0)}

	rec, candidates, err := NewRecommender(linearDemand, 4).Recommend(context.Background(), today, hist, cfg, 41)
	require.NoError(t, err)

	require.Len(t, candidates, 41)
	assert.InDelta(t, 100.88, candidates[0].Price, 1e-9)
	assert.InDelta(t, 107.12, candidates[40].Price, 1e-9)

	assert.Equal(t, "2025-01-09", rec.Date)
	assert.Equal(t, 41, rec.CandidatesTried)
	assert.False(t, rec.GuardrailApplied)
	assert.Nil(t, rec.ViolationReason)

	// Profit increases with price on this curve, so the grid top wins.
	assert.InDelta(t, 107.12, rec.RecommendedPrice, 1e-9)
	assert.InDelta(t, 5000-30*107.12, rec.ExpectedVolume, 1e-6)
	assert.InDelta(t, (107.12-90)*(5000-30*107.12), rec.ExpectedProfit, 1e-6)

	for _, c := range candidates {
		assert.False(t, c.Violated)
		assert.GreaterOrEqual(t, rec.ExpectedProfit, c.PredictedProfit)
	}
}

func TestRecommendFallbackWhenAllViolate(t *testing.T) {
	today, hist := scenarioInput()
	cfg := &models.GuardrailConfig{MaxChangePct: fp(0.03), MinMargin: fp(1000)}

	rec, candidates, err := NewRecommender(linearDemand, 4).Recommend(context.Background(), today, hist, cfg, 41)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.True(t, c.Violated)
	}
	assert.True(t, rec.GuardrailApplied)
	require.NotNil(t, rec.ViolationReason)
	assert.Equal(t, ReasonMinMargin, *rec.ViolationReason)

	// Fallback still picks from the grid.
	assert.GreaterOrEqual(t, rec.RecommendedPrice, candidates[0].Price)
	assert.LessOrEqual(t, rec.RecommendedPrice, candidates[40].Price)
}

func TestRecommendCompCeilingTakesPriority(t *testing.T) {
	today, hist := scenarioInput()
	cfg := &models.GuardrailConfig{
		MaxChangePct: fp(0.03),
		MinMargin:    fp(1000),
		MaxVsCompPct: fp(0.0), // comp_max is 101, below last_price 104
	}

	rec, candidates, err := NewRecommender(linearDemand, 4).Recommend(context.Background(), today, hist, cfg, 41)
	require.NoError(t, err)

	for _, c := range candidates {
		require.True(t, c.Violated)
		if c.Price > 101 {
			assert.Equal(t, ReasonCompTooHigh, c.ViolationReason)
		} else {
			assert.Equal(t, ReasonMinMargin, c.ViolationReason)
		}
	}
	assert.True(t, rec.GuardrailApplied)
	require.NotNil(t, rec.ViolationReason)
	assert.Equal(t, ReasonCompTooHigh, *rec.ViolationReason)
}

func TestRecommendIdempotent(t *testing.T) {
	today, hist := scenarioInput()
	cfg := &models.GuardrailConfig{MaxChangePct: fp(0.03), MinMargin: fp(1.0)}
	r := NewRecommender(linearDemand, 4)

	rec1, cand1, err := r.Recommend(context.Background(), today, hist, cfg, 41)
	require.NoError(t, err)
	rec2, cand2, err := r.Recommend(context.Background(), today, hist, cfg, 41)
	require.NoError(t, err)

	assert.Equal(t, rec1, rec2)
	assert.Equal(t, cand1, cand2)
}

func TestRecommendParallelMatchesSequential(t *testing.T) {
	today, hist := scenarioInput()
	cfg := &models.GuardrailConfig{MaxChangePct: fp(0.03)}

	recSeq, candSeq, err := NewRecommender(linearDemand, 1).Recommend(context.Background(), today, hist, cfg, 101)
	require.NoError(t, err)
	recPar, candPar, err := NewRecommender(linearDemand, 8).Recommend(context.Background(), today, hist, cfg, 101)
	require.NoError(t, err)

	assert.Equal(t, recSeq, recPar)
	assert.Equal(t, candSeq, candPar)
}

func TestRecommendClampsNegativePredictions(t *testing.T) {
	negative := modelFunc(func(_ context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
		out := make([]float64, len(vectors))
		for i := range out {
			out[i] = -5
		}
		return out, nil
	})
	today, hist := scenarioInput()

	rec, candidates, err := NewRecommender(negative, 2).Recommend(context.Background(), today, hist, nil, 11)
	require.NoError(t, err)

	for _, c := range candidates {
		assert.Equal(t, 0.0, c.PredictedVolume)
		assert.Equal(t, 0.0, c.PredictedProfit)
	}
	// All profits tie at zero; the stable max keeps the lowest price.
	assert.Equal(t, candidates[0].Price, rec.RecommendedPrice)
}

func TestRecommendModelError(t *testing.T) {
	broken := modelFunc(func(_ context.Context, _ []models.CandidateFeatureVector) ([]float64, error) {
		return nil, errors.New("connection refused")
	})
	today, hist := scenarioInput()

	_, _, err := NewRecommender(broken, 4).Recommend(context.Background(), today, hist, nil, 41)
	require.ErrorIs(t, err, ErrModelUnavailable)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestRecommendEmptyHistory(t *testing.T) {
	_, _, err := NewRecommender(linearDemand, 4).Recommend(context.Background(), models.TodayInput{Date: day("2025-01-09")}, nil, nil, 41)
	require.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestRecommendFallbackRespectsPriceBounds(t *testing.T) {
	today, hist := scenarioInput()
	cfg := &models.GuardrailConfig{
		MaxChangePct: fp(0.03),
		MinMargin:    fp(1000),
		MinPrice:     fp(102),
		MaxPrice:     fp(106),
	}

	rec, _, err := NewRecommender(linearDemand, 4).Recommend(context.Background(), today, hist, cfg, 41)
	require.NoError(t, err)
	assert.True(t, rec.GuardrailApplied)
	assert.GreaterOrEqual(t, rec.RecommendedPrice, 102.0)
	assert.LessOrEqual(t, rec.RecommendedPrice, 106.0)
}
