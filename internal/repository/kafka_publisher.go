package repository

import (
	"context"

	"FuelPilot/internal/domain/models"
	"FuelPilot/internal/domain/repository"
	pkgkafka "FuelPilot/pkg/kafka"
)

// KafkaQuotePublisher forwards competitor quotes to the quote topic, keyed
// by product so per-product ordering survives partitioning.
type KafkaQuotePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaQuotePublisher(producer *pkgkafka.Producer, topic string) repository.QuotePublisher {
	return &KafkaQuotePublisher{producer: producer, topic: topic}
}

func (p *KafkaQuotePublisher) Publish(ctx context.Context, q *models.Quote) error {
	return p.producer.Publish(ctx, p.topic, []byte(q.Product), quotePayload(q))
}

func (p *KafkaQuotePublisher) PublishBatch(ctx context.Context, qs []*models.Quote) error {
	if len(qs) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(qs))
	for i, q := range qs {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(q.Product),
			Value: quotePayload(q),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaQuotePublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func quotePayload(q *models.Quote) map[string]interface{} {
	return map[string]interface{}{
		"product": q.Product,
		"source":  q.Source,
		"price":   q.Price,
		"ts":      q.Timestamp,
	}
}

// KafkaRecommendationPublisher announces finished recommendations on the
// recommendation topic for downstream pricing consumers.
type KafkaRecommendationPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaRecommendationPublisher(producer *pkgkafka.Producer, topic string) repository.RecommendationPublisher {
	return &KafkaRecommendationPublisher{producer: producer, topic: topic}
}

func (p *KafkaRecommendationPublisher) Publish(ctx context.Context, rec *models.Recommendation) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.Product), rec)
}

func (p *KafkaRecommendationPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}
