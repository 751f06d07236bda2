package kafkaproducer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// Producer implements secondary.EventPublisher using segmentio/kafka-go.
// Every event goes to the configured payment topic, keyed by record key so
// events for one record stay ordered within a partition.
type Producer struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

// NewProducer creates a Kafka producer from the application configuration.
func NewProducer(cfg *config.Config, logger *zap.Logger) secondary.EventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Balancer:     &kafka.Hash{},
		BatchTimeout: 100 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
	}

	logger.Info("kafka producer initialized",
		zap.Strings("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaPaymentTopic),
	)

	return &Producer{
		writer: writer,
		topic:  cfg.KafkaPaymentTopic,
		logger: logger.Named("kafka-producer"),
	}
}

// Publish writes the event to the payment topic.
func (p *Producer) Publish(ctx context.Context, event entity.PaymentEvent) error {
	msg, err := newMessage(p.topic, event)
	if err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("writing event to kafka topic %q: %w", p.topic, err)
	}

	p.logger.Debug("payment event produced",
		zap.String("topic", p.topic),
		zap.String("type", string(event.Type)),
		zap.String("basket_id", event.BasketID),
		zap.Int("value_size", len(msg.Value)),
	)

	return nil
}

// Close shuts down the Kafka writer and releases its resources.
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}

func newMessage(topic string, event entity.PaymentEvent) (kafka.Message, error) {
	value, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encoding payment event: %w", err)
	}

	key := event.RecordKey
	if key == "" {
		key = event.BasketID
	}

	return kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: value,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}, nil
}
