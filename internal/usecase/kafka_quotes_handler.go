package usecase

import (
	"context"
	"encoding/json"
	"time"

	"FuelPilot/internal/domain/models"
	domrepo "FuelPilot/internal/domain/repository"
	pkgkafka "FuelPilot/pkg/kafka"
)

// KafkaQuotesHandler consumes quote messages and writes them to storage.
type KafkaQuotesHandler struct {
	topic   string
	storage domrepo.QuoteStore
	metrics domrepo.Metrics
}

func NewKafkaQuotesHandler(topic string, storage domrepo.QuoteStore, metrics domrepo.Metrics) *KafkaQuotesHandler {
	return &KafkaQuotesHandler{topic: topic, storage: storage, metrics: metrics}
}

func (h *KafkaQuotesHandler) Topic() string { return h.topic }

// incoming message schema: {product, source, price, ts}
func (h *KafkaQuotesHandler) Handle(ctx context.Context, b []byte) error {
	var m struct {
		Product string  `json:"product"`
		Source  string  `json:"source"`
		Price   float64 `json:"price"`
		TS      int64   `json:"ts"`
	}
	if err := json.Unmarshal(b, &m); err != nil {
		h.metrics.RecordError("consumer_unmarshal")
		return err
	}
	if m.TS > 1e11 { // ms
		m.TS = m.TS / 1000
	}
	// E2E latency from event time to now (approx)
	h.metrics.RecordLatency("ingest_e2e_seconds", time.Since(time.Unix(m.TS, 0)).Seconds())

	start := time.Now()
	err := h.storage.Store(ctx, &models.Quote{
		Product:   m.Product,
		Source:    m.Source,
		Price:     m.Price,
		Timestamp: m.TS,
	})
	h.metrics.RecordLatency("ch_insert_seconds", time.Since(start).Seconds())
	if err != nil {
		h.metrics.RecordError("consumer_store")
		return err
	}
	h.metrics.RecordMessageSent("clickhouse", m.Product)
	return nil
}

var _ pkgkafka.MessageHandler = (*KafkaQuotesHandler)(nil)
