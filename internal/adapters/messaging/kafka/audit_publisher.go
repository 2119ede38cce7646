package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"

	"github.com/opentally/bookkeeping_app/internal/core/domain"
	"github.com/opentally/bookkeeping_app/internal/core/ports/messaging"
)

// auditPublisher streams transition audit events to a Kafka topic. Events are
// keyed by entry ID so consumers see each entry's transitions in order.
type auditPublisher struct {
	producer sarama.SyncProducer
	topic    string
}

// NewAuditPublisher connects a synchronous producer to the given brokers.
func NewAuditPublisher(brokers []string, topic string) (messaging.AuditPublisher, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &auditPublisher{producer: producer, topic: topic}, nil
}

var _ messaging.AuditPublisher = (*auditPublisher)(nil)

// PublishTransition implements messaging.AuditPublisher.
func (p *auditPublisher) PublishTransition(_ context.Context, record domain.TransitionRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode transition record: %w", err)
	}

	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(record.EntryID),
		Value: sarama.ByteEncoder(payload),
	}
	if _, _, err := p.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to publish transition record: %w", err)
	}
	return nil
}

// Close implements messaging.AuditPublisher.
func (p *auditPublisher) Close() error {
	return p.producer.Close()
}
