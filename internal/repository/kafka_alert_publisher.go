package repository

import (
	"context"

	"CoinPulse/internal/domain/models"
	drepo "CoinPulse/internal/domain/repository"
	pkgkafka "CoinPulse/pkg/kafka"
)

// KafkaAlertPublisher fans alerts out on a Kafka topic, keyed by coin so a
// consumer sees one coin's alerts in order.
type KafkaAlertPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates the publisher.
func NewKafkaAlertPublisher(producer *pkgkafka.Producer, topic string) drepo.AlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

func (p *KafkaAlertPublisher) PublishAlerts(ctx context.Context, alerts []models.Alert) error {
	if len(alerts) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, len(alerts))
	for i, a := range alerts {
		msgs[i] = pkgkafka.Message{
			Key:   []byte(a.Coin),
			Value: a.Flatten(),
		}
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

func (p *KafkaAlertPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopAlertPublisher is used when Kafka is disabled.
type NopAlertPublisher struct{}

func (NopAlertPublisher) PublishAlerts(ctx context.Context, alerts []models.Alert) error { return nil }
func (NopAlertPublisher) Close() error                                                   { return nil }
