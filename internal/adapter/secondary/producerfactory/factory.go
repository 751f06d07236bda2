package producerfactory

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// NamedPublisher pairs a publisher with the sink name used in logs.
type NamedPublisher struct {
	Name      string
	Publisher secondary.EventPublisher
}

// Factory fans every payment event out to all configured publishers.
type Factory struct {
	publishers []NamedPublisher
	logger     *zap.Logger
}

// NewFactory creates a fan-out publisher over the given publishers.
// With no publishers every Publish is a no-op.
func NewFactory(logger *zap.Logger, publishers ...NamedPublisher) secondary.EventPublisher {
	return &Factory{
		publishers: publishers,
		logger:     logger.Named("producer-factory"),
	}
}

// NewFromConfig builds the publishers enabled in cfg: Kafka when brokers are
// set, HTTP when an events webhook URL is set.
func NewFromConfig(
	cfg *config.Config,
	newKafka func(*config.Config, *zap.Logger) secondary.EventPublisher,
	newHTTP func(*config.Config, *zap.Logger) secondary.EventPublisher,
	logger *zap.Logger,
) secondary.EventPublisher {
	var publishers []NamedPublisher

	if len(cfg.KafkaBrokers) > 0 {
		publishers = append(publishers, NamedPublisher{Name: "kafka", Publisher: newKafka(cfg, logger)})
	}
	if cfg.EventsWebhookURL != "" {
		publishers = append(publishers, NamedPublisher{Name: "http", Publisher: newHTTP(cfg, logger)})
	}

	if len(publishers) == 0 {
		logger.Info("no payment event sinks configured, events are dropped")
	}

	return NewFactory(logger, publishers...)
}

// Publish sends the event to every publisher. A failing sink does not stop
// delivery to the others.
func (f *Factory) Publish(ctx context.Context, event entity.PaymentEvent) error {
	var errs []error

	for _, p := range f.publishers {
		f.logger.Debug("routing payment event",
			zap.String("sink", p.Name),
			zap.String("type", string(event.Type)),
		)
		if err := p.Publisher.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("publishing to %s: %w", p.Name, err))
		}
	}

	return errors.Join(errs...)
}

// Close closes all underlying publishers.
func (f *Factory) Close() error {
	var errs []error

	for _, p := range f.publishers {
		if err := p.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s producer: %w", p.Name, err))
		}
	}

	return errors.Join(errs...)
}
