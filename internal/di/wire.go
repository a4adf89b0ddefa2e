//go:build wireinject
// +build wireinject

package di

import (
	"FuelPilot/pkg/config"
	"FuelPilot/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideMetrics,
		ProvideLogger,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,

		// Repositories (with business logic)
		ProvideHistoryStore,
		ProvideRecommendationStore,
		ProvideFeatureStore,
		ProvideQuoteStore,
		ProvideQuotePublisher,
		ProvideRecommendationPublisher,
		ProvideMarketStream,
		ProvideCache,

		// Pricing engine
		ProvideDemandModel,
		ProvideRecommender,

		// Use cases
		ProvidePricingUsecase,
		ProvideQuoteProcessor,
		ProvideQuoteCollector,
		ProvideKafkaQuotesHandler,
		ProvideScheduler,

		// HTTP
		ProvideRateLimiter,
		ProvidePricingHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
