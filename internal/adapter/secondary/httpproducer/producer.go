package httpproducer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ruudy-sib/payhook/internal/config"
	"github.com/ruudy-sib/payhook/internal/domain/entity"
	"github.com/ruudy-sib/payhook/internal/port/secondary"
)

// Producer implements secondary.EventPublisher by POSTing events as JSON to
// a configured sink URL.
type Producer struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewProducer creates an HTTP producer for cfg.EventsWebhookURL.
func NewProducer(cfg *config.Config, logger *zap.Logger) secondary.EventPublisher {
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}

	logger.Info("http event producer initialized",
		zap.String("url", cfg.EventsWebhookURL),
		zap.Duration("timeout", client.Timeout),
	)

	return &Producer{
		url:    cfg.EventsWebhookURL,
		client: client,
		logger: logger.Named("http-producer"),
	}
}

// Publish sends the event via HTTP POST to the sink URL.
func (p *Producer) Publish(ctx context.Context, event entity.PaymentEvent) error {
	if p.url == "" {
		return fmt.Errorf("events webhook URL is required for HTTP delivery")
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding payment event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(value))
	if err != nil {
		return fmt.Errorf("creating http request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Event-Type", string(event.Type))
	req.Header.Set("X-Message-Key", event.RecordKey)
	req.Header.Set("User-Agent", "payhook/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing http request to %q: %w", p.url, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("http request failed with status %d: %s", resp.StatusCode, string(body))
	}

	p.logger.Debug("payment event delivered via http",
		zap.String("url", p.url),
		zap.String("type", string(event.Type)),
		zap.Int("status_code", resp.StatusCode),
	)

	return nil
}

// Close releases idle connections.
func (p *Producer) Close() error {
	if p.client != nil {
		p.client.CloseIdleConnections()
	}
	return nil
}
