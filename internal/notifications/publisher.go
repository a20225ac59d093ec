package notifications

import (
	"context"
	"fmt"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	pkgpubsub "github.com/mealora/mealora-backend/pkg/pubsub"
)

type pubsubPublisher struct {
	pub *gcppubsub.Publisher
}

// NewPubSubPublisher adapts the shared Pub/Sub client to the notification sink.
func NewPubSubPublisher(client *pkgpubsub.Client) (Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client required")
	}
	pub := client.NotificationPublisher()
	if pub == nil {
		return nil, fmt.Errorf("notification topic not configured")
	}
	return &pubsubPublisher{pub: pub}, nil
}

func (p *pubsubPublisher) Publish(ctx context.Context, data []byte) error {
	result := p.pub.Publish(ctx, &gcppubsub.Message{Data: data})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publishing notification event: %w", err)
	}
	return nil
}
