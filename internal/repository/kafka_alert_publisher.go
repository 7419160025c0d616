package repository

import (
	"context"
	"fmt"

	"TradeScope/internal/domain/models"
	domainrepo "TradeScope/internal/domain/repository"
	"TradeScope/pkg/kafka"
	applogger "TradeScope/pkg/logger"
)

// KafkaAlertPublisher emits alert events to a Kafka topic. The ticker is
// the message key, so all alerts for one ticker land on one partition in
// order.
type KafkaAlertPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaAlertPublisher creates a publisher bound to one topic.
func NewKafkaAlertPublisher(producer *kafka.Producer, topic string) *KafkaAlertPublisher {
	return &KafkaAlertPublisher{producer: producer, topic: topic}
}

var _ domainrepo.AlertPublisher = (*KafkaAlertPublisher)(nil)

// PublishAlert writes one alert event, keyed by ticker.
func (p *KafkaAlertPublisher) PublishAlert(ctx context.Context, alert models.AlertEvent) error {
	if err := p.producer.Publish(ctx, p.topic, []byte(alert.Ticker), alert); err != nil {
		return fmt.Errorf("publish alert for %s: %w", alert.Ticker, err)
	}
	return nil
}

// Close flushes and closes the underlying producer.
func (p *KafkaAlertPublisher) Close() error {
	return p.producer.Close()
}

// LogAlertPublisher is the fallback when Kafka is disabled: alerts are
// logged and dropped. It keeps the evaluator wiring unconditional.
type LogAlertPublisher struct {
	log *applogger.Logger
}

// NewLogAlertPublisher creates the logging fallback publisher.
func NewLogAlertPublisher(log *applogger.Logger) *LogAlertPublisher {
	return &LogAlertPublisher{log: log}
}

var _ domainrepo.AlertPublisher = (*LogAlertPublisher)(nil)

func (p *LogAlertPublisher) PublishAlert(_ context.Context, alert models.AlertEvent) error {
	p.log.Info("alert (kafka disabled)",
		applogger.String("ticker", alert.Ticker),
		applogger.String("type", alert.AlertType),
		applogger.Int("score", alert.Score),
	)
	return nil
}

func (p *LogAlertPublisher) Close() error { return nil }
