package pricing

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"FuelPilot/internal/domain/models"
	"FuelPilot/internal/domain/service"
)

// Recommender runs one full pricing pass: baseline features, candidate grid,
// parallel demand scoring, guardrail filtering and final selection. It holds
// no per-run state and is safe for concurrent use.
type Recommender struct {
	model   service.DemandModel
	workers int
}

// NewRecommender wires a demand model into the engine. workers caps the
// number of concurrent prediction batches; values below 1 mean sequential.
func NewRecommender(model service.DemandModel, workers int) *Recommender {
	if workers < 1 {
		workers = 1
	}
	return &Recommender{model: model, workers: workers}
}

// Recommend prices one product-day. It returns the recommendation, the full
// scored candidate list in ascending price order, and an error when the
// inputs or the model make pricing impossible. Given identical inputs and a
// deterministic model the output is identical, including tie-breaks.
func (r *Recommender) Recommend(ctx context.Context, today models.TodayInput, history []models.HistoricalRecord, cfg *models.GuardrailConfig, count int) (*models.Recommendation, []models.CandidateResult, error) {
	baseline, err := BuildBaseline(today, history)
	if err != nil {
		return nil, nil, err
	}

	var maxChangePct, minPrice, maxPrice *float64
	if cfg != nil {
		maxChangePct = cfg.MaxChangePct
		minPrice = cfg.MinPrice
		maxPrice = cfg.MaxPrice
	}
	grid, err := GenerateCandidates(baseline.LastPrice, maxChangePct, minPrice, maxPrice, count)
	if err != nil {
		return nil, nil, err
	}

	vectors := make([]models.CandidateFeatureVector, len(grid))
	for i, price := range grid {
		vectors[i] = BuildCandidateFeatures(baseline, price)
	}

	volumes, err := r.predict(ctx, vectors)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrModelUnavailable, err)
	}

	candidates := make([]models.CandidateResult, len(grid))
	for i, price := range grid {
		vol := volumes[i]
		if vol < 0 {
			vol = 0
		}
		violated, reason := EvaluateGuardrails(price, baseline, cfg)
		candidates[i] = models.CandidateResult{
			Price:           price,
			PredictedVolume: vol,
			PredictedProfit: (price - baseline.Cost) * vol,
			Violated:        violated,
			ViolationReason: reason,
		}
	}

	best, ok := selectBest(candidates, false)
	guardrailApplied := false
	if !ok {
		// Every candidate violated; fall back to the most profitable one
		// and surface its reason.
		best, _ = selectBest(candidates, true)
		guardrailApplied = true
	}

	rec := &models.Recommendation{
		Date:             baseline.Date.Format("2006-01-02"),
		RecommendedPrice: best.Price,
		ExpectedVolume:   best.PredictedVolume,
		ExpectedProfit:   best.PredictedProfit,
		GuardrailApplied: guardrailApplied,
		CandidatesTried:  len(candidates),
	}
	if guardrailApplied {
		reason := best.ViolationReason
		rec.ViolationReason = &reason
	}
	return rec, candidates, nil
}

// predict splits vectors into up to workers contiguous batches, scores them
// concurrently and lands results by index so ordering survives.
func (r *Recommender) predict(ctx context.Context, vectors []models.CandidateFeatureVector) ([]float64, error) {
	n := len(vectors)
	out := make([]float64, n)
	workers := r.workers
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		vols, err := r.model.Predict(ctx, vectors)
		if err != nil {
			return nil, err
		}
		if len(vols) != n {
			return nil, fmt.Errorf("model returned %d predictions for %d vectors", len(vols), n)
		}
		return vols, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	chunk := (n + workers - 1) / workers
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		start, end := start, end
		g.Go(func() error {
			vols, err := r.model.Predict(ctx, vectors[start:end])
			if err != nil {
				return err
			}
			if len(vols) != end-start {
				return fmt.Errorf("model returned %d predictions for %d vectors", len(vols), end-start)
			}
			copy(out[start:end], vols)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// selectBest picks the maximum-profit candidate, keeping the first (lowest
// price) on exact ties. includeViolated widens the pool for the fallback
// path.
func selectBest(candidates []models.CandidateResult, includeViolated bool) (models.CandidateResult, bool) {
	var best models.CandidateResult
	found := false
	for _, c := range candidates {
		if c.Violated && !includeViolated {
			continue
		}
		if !found || c.PredictedProfit > best.PredictedProfit {
			best = c
			found = true
		}
	}
	return best, found
}
