package repository

import (
	"context"
	"time"

	"FuelPilot/internal/domain/models"
)

// HistoryProvider yields the time-ordered daily history for a product.
// The engine never writes back through this interface.
type HistoryProvider interface {
	Read(ctx context.Context, product string) ([]models.HistoricalRecord, error)
}

// HistoryStore is a HistoryProvider that also accepts new daily records.
type HistoryStore interface {
	HistoryProvider
	Append(ctx context.Context, product string, rec models.HistoricalRecord) error
}

// RecommendationStore persists pricing runs for audit and replay.
type RecommendationStore interface {
	Save(ctx context.Context, rec *models.Recommendation, candidates []models.CandidateResult) error
	Get(ctx context.Context, product, date string) (*models.Recommendation, error)
}

// FeatureStore persists derived training feature rows for the model
// training pipeline. ReplaceAll swaps the product's dataset atomically from
// the reader's point of view.
type FeatureStore interface {
	ReplaceAll(ctx context.Context, product string, rows []models.TrainingFeatureRow) error
}

// QuoteStore persists intraday competitor quotes and serves the freshest
// price per competitor source.
type QuoteStore interface {
	Store(ctx context.Context, q *models.Quote) error
	StoreBatch(ctx context.Context, qs []*models.Quote) error
	LatestBySource(ctx context.Context, product string, since time.Time) (map[string]float64, error)
	Health(ctx context.Context) error
	Close() error
}

// QuotePublisher forwards quotes to the streaming backend.
type QuotePublisher interface {
	Publish(ctx context.Context, q *models.Quote) error
	PublishBatch(ctx context.Context, qs []*models.Quote) error
	Close() error
}

// RecommendationPublisher announces finished recommendations downstream.
type RecommendationPublisher interface {
	Publish(ctx context.Context, rec *models.Recommendation) error
	Close() error
}

// MarketStream is a live competitor quote feed.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan *models.Quote, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// Metrics records operational counters and gauges.
type Metrics interface {
	RecordRecommendation(product string, guardrailApplied bool)
	RecordRecommendedPrice(product string, price float64)
	RecordQuote(source string)
	RecordMessageSent(backend, product string)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}
