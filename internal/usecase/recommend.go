package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"FuelPilot/internal/domain/models"
	drepo "FuelPilot/internal/domain/repository"
	"FuelPilot/internal/pricing"
	"FuelPilot/internal/services/features"
	"FuelPilot/pkg/cache"
	applogger "FuelPilot/pkg/logger"
	"FuelPilot/pkg/util"
)

// PricingUsecase runs the pricing engine against the stores and fans the
// result out to cache, storage and the recommendation topic.
type PricingUsecase struct {
	engine       *pricing.Recommender
	history      drepo.HistoryStore
	recStore     drepo.RecommendationStore
	featureStore drepo.FeatureStore
	quoteStore   drepo.QuoteStore
	recPub       drepo.RecommendationPublisher
	cache        cache.Service
	metrics      drepo.Metrics
	logger       *applogger.Logger

	defaults *models.GuardrailConfig
	products []string
	count    int
	quoteWin time.Duration
	cacheTTL time.Duration
}

// PricingDeps bundles the collaborators; quoteStore, recPub and cache are
// optional and skipped when nil.
type PricingDeps struct {
	Engine       *pricing.Recommender
	History      drepo.HistoryStore
	RecStore     drepo.RecommendationStore
	FeatureStore drepo.FeatureStore
	QuoteStore   drepo.QuoteStore
	RecPub       drepo.RecommendationPublisher
	Cache        cache.Service
	Metrics      drepo.Metrics
	Logger       *applogger.Logger

	Guardrails     *models.GuardrailConfig
	Products       []string
	CandidateCount int
	QuoteWindow    time.Duration
	CacheTTL       time.Duration
}

func NewPricingUsecase(d PricingDeps) *PricingUsecase {
	if d.QuoteWindow <= 0 {
		d.QuoteWindow = 24 * time.Hour
	}
	if d.CacheTTL <= 0 {
		d.CacheTTL = time.Hour
	}
	return &PricingUsecase{
		engine:       d.Engine,
		history:      d.History,
		recStore:     d.RecStore,
		featureStore: d.FeatureStore,
		quoteStore:   d.QuoteStore,
		recPub:       d.RecPub,
		cache:        d.Cache,
		metrics:      d.Metrics,
		logger:       d.Logger,
		defaults:     d.Guardrails,
		products:     d.Products,
		count:        d.CandidateCount,
		quoteWin:     d.QuoteWindow,
		cacheTTL:     d.CacheTTL,
	}
}

// Recommend prices one product-day from the request and persists the result.
// Persistence, caching and publishing are best-effort; the recommendation is
// returned even when a downstream sink fails.
func (u *PricingUsecase) Recommend(ctx context.Context, req *models.RecommendRequest) (*models.Recommendation, []models.CandidateResult, error) {
	start := time.Now()

	if req.Product == "" && len(u.products) > 0 {
		req.Product = u.products[0]
	}

	date, err := util.ParseDay(req.Date)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", pricing.ErrInvalidRange, err)
	}

	today := models.TodayInput{
		Date:        date,
		Cost:        req.Cost,
		Competitors: req.Competitors,
		LastPrice:   req.LastPrice,
	}
	if len(today.Competitors) == 0 && u.quoteStore != nil {
		latest, qerr := u.quoteStore.LatestBySource(ctx, req.Product, time.Now().Add(-u.quoteWin))
		if qerr != nil {
			u.logger.Warn("quote lookup failed, pricing without live competitors",
				applogger.String("product", req.Product),
				applogger.Error(qerr),
			)
		} else if len(latest) > 0 {
			today.Competitors = latest
		}
	}

	hist, err := u.history.Read(ctx, req.Product)
	if err != nil {
		return nil, nil, fmt.Errorf("read history: %w", err)
	}

	cfg := mergeGuardrails(u.defaults, req.Guardrails)
	count := req.Count
	if count <= 0 {
		count = u.count
	}

	rec, candidates, err := u.engine.Recommend(ctx, today, hist, cfg, count)
	if err != nil {
		u.metrics.RecordError("recommend")
		return nil, nil, err
	}
	rec.Product = req.Product

	u.persist(ctx, rec, candidates)

	u.metrics.RecordRecommendation(req.Product, rec.GuardrailApplied)
	u.metrics.RecordRecommendedPrice(req.Product, rec.RecommendedPrice)
	u.metrics.RecordLatency("recommend", time.Since(start).Seconds())
	u.logger.Info("recommendation produced",
		applogger.String("product", req.Product),
		applogger.String("day", rec.Date),
		applogger.Any("price", rec.RecommendedPrice),
		applogger.Bool("guardrail_applied", rec.GuardrailApplied),
		applogger.Int("candidates", rec.CandidatesTried),
	)
	return rec, candidates, nil
}

func (u *PricingUsecase) persist(ctx context.Context, rec *models.Recommendation, candidates []models.CandidateResult) {
	if u.recStore != nil {
		if err := u.recStore.Save(ctx, rec, candidates); err != nil {
			u.metrics.RecordError("rec_store")
			u.logger.Error("recommendation store failed", applogger.Error(err))
		}
	}
	if u.cache != nil {
		if err := u.cache.Set(ctx, recCacheKey(rec.Product, rec.Date), rec, u.cacheTTL); err != nil {
			u.metrics.RecordError("rec_cache")
			u.logger.Warn("recommendation cache failed", applogger.Error(err))
		}
	}
	if u.recPub != nil {
		if err := u.recPub.Publish(ctx, rec); err != nil {
			u.metrics.RecordError("rec_publish")
			u.logger.Error("recommendation publish failed", applogger.Error(err))
		}
	}
}

// GetRecommendation serves a stored recommendation, cache first. Product
// defaults to the first configured one and date to today.
func (u *PricingUsecase) GetRecommendation(ctx context.Context, product, date string) (*models.Recommendation, error) {
	if product == "" && len(u.products) > 0 {
		product = u.products[0]
	}
	if date == "" {
		date = util.FormatDay(time.Now().UTC())
	}
	if _, err := util.ParseDay(date); err != nil {
		return nil, fmt.Errorf("%w: %s", pricing.ErrInvalidRange, err)
	}

	if u.cache != nil {
		var rec models.Recommendation
		err := u.cache.Get(ctx, recCacheKey(product, date), &rec)
		if err == nil {
			return &rec, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			u.logger.Warn("recommendation cache read failed", applogger.Error(err))
		}
	}

	rec, err := u.recStore.Get(ctx, product, date)
	if err != nil {
		return nil, err
	}
	if rec != nil && u.cache != nil {
		_ = u.cache.Set(ctx, recCacheKey(product, date), rec, u.cacheTTL)
	}
	return rec, nil
}

// AppendHistory adds one settled day to the product's history.
func (u *PricingUsecase) AppendHistory(ctx context.Context, req *models.HistoryAppendRequest) error {
	date, err := util.ParseDay(req.Date)
	if err != nil {
		return fmt.Errorf("%w: %s", pricing.ErrInvalidRange, err)
	}
	rec := models.HistoricalRecord{
		Date:        date,
		Price:       req.Price,
		Cost:        req.Cost,
		Volume:      req.Volume,
		Competitors: req.Competitors,
	}
	if err := u.history.Append(ctx, req.Product, rec); err != nil {
		u.metrics.RecordError("history_append")
		return err
	}
	return nil
}

// RebuildFeatures rederives the training dataset from the product's history.
func (u *PricingUsecase) RebuildFeatures(ctx context.Context, product string) (int, error) {
	if u.featureStore == nil {
		return 0, fmt.Errorf("feature store not configured")
	}
	hist, err := u.history.Read(ctx, product)
	if err != nil {
		return 0, fmt.Errorf("read history: %w", err)
	}
	rows := features.ComputeHistoryFeatures(hist)
	if len(rows) == 0 {
		return 0, pricing.ErrInsufficientHistory
	}
	if err := u.featureStore.ReplaceAll(ctx, product, rows); err != nil {
		u.metrics.RecordError("feature_rebuild")
		return 0, err
	}
	return len(rows), nil
}

// RunDaily prices every configured product for the given day. Per-product
// failures are logged and do not stop the batch; the last error is returned.
func (u *PricingUsecase) RunDaily(ctx context.Context, day time.Time) error {
	var lastErr error
	for _, product := range u.products {
		req := &models.RecommendRequest{
			Product: product,
			Date:    util.FormatDay(day),
		}
		if _, _, err := u.Recommend(ctx, req); err != nil {
			u.logger.Error("daily pricing failed",
				applogger.String("product", product),
				applogger.Error(err),
			)
			lastErr = err
		}
	}
	return lastErr
}

func recCacheKey(product, date string) string {
	return cache.GenerateKeyWithParams("rec", product, date)
}

// mergeGuardrails overlays per-request rules on the configured defaults,
// field by field.
func mergeGuardrails(base, override *models.GuardrailConfig) *models.GuardrailConfig {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}
	merged := *base
	if override.MaxChangePct != nil {
		merged.MaxChangePct = override.MaxChangePct
	}
	if override.MinMargin != nil {
		merged.MinMargin = override.MinMargin
	}
	if override.MinPrice != nil {
		merged.MinPrice = override.MinPrice
	}
	if override.MaxPrice != nil {
		merged.MaxPrice = override.MaxPrice
	}
	if override.MaxVsCompPct != nil {
		merged.MaxVsCompPct = override.MaxVsCompPct
	}
	return &merged
}
