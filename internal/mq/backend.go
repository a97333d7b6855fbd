package mq

import (
	"context"

	"github.com/messagely/apiserver/config"
)

// NewFromConfig selects a broker backend from config: RabbitMQ when a
// URL is configured, otherwise Pub/Sub when a project id is configured.
// With neither present it returns (nil, nil) and the caller runs
// without event publishing.
func NewFromConfig(ctx context.Context, cfg config.Config) (*MQ, error) {
	if cfg.RabbitMQ.URL != "" {
		backend, err := NewRabbitMQClient(cfg.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	}
	if cfg.PubSub.ProjectID != "" {
		backend, err := NewPubSubClient(ctx, cfg.PubSub)
		if err != nil {
			return nil, err
		}
		return New(backend), nil
	}
	return nil, nil
}
