package di

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"FuelPilot/internal/domain/repository"
	dservice "FuelPilot/internal/domain/service"
	"FuelPilot/internal/handler/api"
	mid "FuelPilot/internal/middleware"
	"FuelPilot/internal/pricing"
	internalrepo "FuelPilot/internal/repository"
	"FuelPilot/internal/service/quotes"
	"FuelPilot/internal/service/ratelimit"
	"FuelPilot/internal/services/demand"
	"FuelPilot/internal/usecase"
	"FuelPilot/pkg/cache"
	pkgch "FuelPilot/pkg/clickhouse"
	"FuelPilot/pkg/config"
	xhttp "FuelPilot/pkg/http"
	pkgkafka "FuelPilot/pkg/kafka"
	applogger "FuelPilot/pkg/logger"
	"FuelPilot/pkg/metrics"
	"FuelPilot/pkg/server"

	"github.com/segmentio/kafka-go"
)

// ProvideLogger creates the application logger. Production gets JSON plus an
// aggregating error-log collector flushing to Kafka, the rest console.
func ProvideLogger(cfg *config.Config, producer *pkgkafka.Producer) (*applogger.Logger, error) {
	format := "console"
	if cfg.Environment == "production" {
		format = "json"
	}
	l, err := applogger.New(&applogger.Config{Level: "info", Format: format, Output: "stdout"})
	if err != nil {
		return nil, err
	}
	if cfg.Environment == "production" && producer != nil {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   30 * time.Second,
			CountThreshold: 100,
			Topic:          "fuelpilot.logs",
			Publisher:      logPublisher{producer: producer},
		})
	}
	return l, nil
}

// logPublisher adapts the Kafka producer to the log collector's sink.
type logPublisher struct {
	producer *pkgkafka.Producer
}

func (lp logPublisher) PublishMessage(ctx context.Context, topic string, payload interface{}) error {
	return lp.producer.Publish(ctx, topic, nil, payload)
}

// ProvideClickHouseClient creates a ClickHouse client.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	// Initialize schema
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.InitSchema(ctx, internalrepo.Schema()); err != nil {
		_ = client.Close() // cannot log here (DI layer no logger); propagate error
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}

	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}

	return producer, nil
}

// ProvideKafkaConsumer creates a Kafka consumer configured from YAML.
func ProvideKafkaConsumer(cfg *config.Config) (*pkgkafka.Consumer, error) {
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideHistoryStore selects the daily history backend. A configured CSV
// path wins over ClickHouse, which keeps single-station deployments free of
// any database.
func ProvideHistoryStore(chClient *pkgch.Client, cfg *config.Config, logger *applogger.Logger) repository.HistoryStore {
	if cfg.Pricing.HistoryCSV != "" {
		return internalrepo.NewCSVHistoryStore(cfg.Pricing.HistoryCSV)
	}
	store := internalrepo.NewCHHistoryStore(chClient)
	store.SetLogger(logger)
	return store
}

// ProvideRecommendationStore creates the ClickHouse recommendation audit log.
func ProvideRecommendationStore(chClient *pkgch.Client, logger *applogger.Logger) repository.RecommendationStore {
	store := internalrepo.NewCHRecommendationStore(chClient)
	store.SetLogger(logger)
	return store
}

// ProvideFeatureStore creates the training feature dataset store.
func ProvideFeatureStore(chClient *pkgch.Client, logger *applogger.Logger) repository.FeatureStore {
	store := internalrepo.NewCHFeatureStore(chClient)
	store.SetLogger(logger)
	return store
}

// ProvideQuoteStore creates the competitor quote store.
func ProvideQuoteStore(chClient *pkgch.Client) repository.QuoteStore {
	return internalrepo.NewCHQuoteStore(chClient)
}

// ProvideQuotePublisher creates the Kafka quote publisher.
func ProvideQuotePublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.QuotePublisher {
	return internalrepo.NewKafkaQuotePublisher(producer, cfg.Kafka.QuoteTopic)
}

// ProvideRecommendationPublisher creates the Kafka recommendation publisher.
func ProvideRecommendationPublisher(producer *pkgkafka.Producer, cfg *config.Config) repository.RecommendationPublisher {
	return internalrepo.NewKafkaRecommendationPublisher(producer, cfg.Kafka.RecommendationTopic)
}

// ProvideDemandModel builds the volume predictor from config: exported
// coefficients loaded at startup, or a remote scoring service.
func ProvideDemandModel(cfg *config.Config) (dservice.DemandModel, error) {
	switch cfg.Model.Type {
	case "coeffs":
		model, err := demand.LoadCoeffsModel(cfg.Model.CoeffsPath)
		if err != nil {
			return nil, fmt.Errorf("demand model: %w", err)
		}
		return model, nil
	case "http":
		return demand.NewHTTPModel(cfg.Model.ServiceURL, cfg.Model.Timeout, cfg.Model.Retries), nil
	default:
		return nil, fmt.Errorf("demand model: unknown type %q", cfg.Model.Type)
	}
}

// ProvideRecommender creates the pricing engine.
func ProvideRecommender(model dservice.DemandModel, cfg *config.Config) *pricing.Recommender {
	return pricing.NewRecommender(model, cfg.Pricing.Workers)
}

// ProvideCache creates the recommendation cache: layered memory+Redis when
// Redis is enabled, in-process otherwise.
func ProvideCache(cfg *config.Config) (cache.Service, error) {
	if !cfg.Redis.Enabled {
		return cache.NewMemoryCache(), nil
	}
	host, portStr, err := net.SplitHostPort(cfg.Redis.Addr)
	if err != nil {
		return nil, fmt.Errorf("redis addr: %w", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("redis port: %w", err)
	}
	rc, err := cache.NewRedisCache(
		cache.WithRedisHost(host),
		cache.WithRedisPort(port),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPrefix("fuelpilot"),
	)
	if err != nil {
		return nil, err
	}
	return cache.NewLayeredCache(rc), nil
}

// ProvidePricingUsecase assembles the pricing orchestrator.
func ProvidePricingUsecase(
	engine *pricing.Recommender,
	history repository.HistoryStore,
	recStore repository.RecommendationStore,
	featureStore repository.FeatureStore,
	quoteStore repository.QuoteStore,
	recPub repository.RecommendationPublisher,
	cacheSvc cache.Service,
	m repository.Metrics,
	logger *applogger.Logger,
	cfg *config.Config,
) *usecase.PricingUsecase {
	return usecase.NewPricingUsecase(usecase.PricingDeps{
		Engine:       engine,
		History:      history,
		RecStore:     recStore,
		FeatureStore: featureStore,
		QuoteStore:   quoteStore,
		RecPub:       recPub,
		Cache:        cacheSvc,
		Metrics:      m,
		Logger:       logger,

		Guardrails:     cfg.Pricing.Guardrails,
		Products:       cfg.Pricing.Products,
		CandidateCount: cfg.Pricing.CandidateCount,
		QuoteWindow:    cfg.Pricing.QuoteWindow,
		CacheTTL:       cfg.Pricing.CacheTTL,
	})
}

// ProvideMarketStream creates the competitor quote WebSocket feed.
func ProvideMarketStream(cfg *config.Config) repository.MarketStream {
	return quotes.New(
		cfg.QuoteFeed.APIKey,
		cfg.QuoteFeed.WebSocketURL,
		cfg.QuoteFeed.Products,
		cfg.QuoteFeed.ReconnectDelay,
		cfg.QuoteFeed.PingInterval,
	)
}

// ProvideQuoteProcessor creates the quote routing use case.
func ProvideQuoteProcessor(
	pub repository.QuotePublisher,
	store repository.QuoteStore,
	m repository.Metrics,
	cfg *config.Config,
) *usecase.QuoteProcessor {
	return usecase.NewQuoteProcessor(
		pub,
		store,
		m,
		cfg.Backend.Type,
		cfg.Backend.BatchSize,
		cfg.Backend.BatchTimeout,
	)
}

// ProvideQuoteCollector creates the quote collector use case.
func ProvideQuoteCollector(
	stream repository.MarketStream,
	processor *usecase.QuoteProcessor,
	m repository.Metrics,
) *usecase.QuoteCollector {
	// Build middleware pipeline between WebSocket and the backend
	pipe := mid.NewQuotePipeline(processor, m,
		mid.WithMaxRPS(50),
		mid.WithBufferSize(2000),
	)
	return usecase.NewQuoteCollector(stream, processor, m, pipe)
}

// ProvideKafkaQuotesHandler registers the handler for the quote topic.
func ProvideKafkaQuotesHandler(store repository.QuoteStore, m repository.Metrics, cfg *config.Config) *usecase.KafkaQuotesHandler {
	return usecase.NewKafkaQuotesHandler(cfg.Kafka.QuoteTopic, store, m)
}

// ProvideScheduler creates the daily pricing scheduler.
func ProvideScheduler(pricingUC *usecase.PricingUsecase, cfg *config.Config, logger *applogger.Logger) (*usecase.DailyScheduler, error) {
	loc := time.UTC
	if cfg.Scheduler.Location != "" {
		var err error
		loc, err = time.LoadLocation(cfg.Scheduler.Location)
		if err != nil {
			return nil, fmt.Errorf("scheduler location: %w", err)
		}
	}
	return usecase.NewDailyScheduler(pricingUC, cfg.Scheduler.RunAt, loc, logger), nil
}

// ProvideRateLimiter creates the per-client request limiter.
func ProvideRateLimiter() *ratelimit.Limiter {
	return ratelimit.New()
}

// ProvidePricingHandler creates the HTTP handler for the pricing API.
func ProvidePricingHandler(logger *applogger.Logger, pricingUC *usecase.PricingUsecase, limiter *ratelimit.Limiter) xhttp.Handler {
	return api.NewPricingEchoHandler(logger, pricingUC, limiter)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	collector *usecase.QuoteCollector,
	consumer *pkgkafka.Consumer,
	kh *usecase.KafkaQuotesHandler,
	chClient *pkgch.Client,
	scheduler *usecase.DailyScheduler,
	handler xhttp.Handler,
	cacheSvc cache.Service,
	m repository.Metrics,
) *server.App {
	// Count handler failures through the same error counter the rest of the
	// pipeline uses.
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.HookFuncs{
			Err: func(ctx context.Context, topic string, _ kafka.Message, _ []byte, _ error) {
				m.RecordError("consumer_" + topic)
			},
		})
	}
	app := server.New(cfg, collector, consumer, kh, chClient, scheduler)
	app.SetHTTPHandler(handler)
	app.SetCache(cacheSvc)
	// attach quote processor to app for closing resources via collector
	if collector != nil {
		app.QuoteProc = collector.Processor()
	}
	return app
}
