package activity

import (
	"context"

	"github.com/example/ec-storefront/internal/infrastructure/kafka"
)

// Publisher emits activity events. Publishing happens after the mutation has
// been persisted; a publish failure never undoes it.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// KafkaPublisher writes events keyed by user id, so one user's events stay
// ordered within a partition.
type KafkaPublisher struct {
	producer *kafka.Producer
}

func NewKafkaPublisher(producer *kafka.Producer) *KafkaPublisher {
	return &KafkaPublisher{producer: producer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, e Event) error {
	return p.producer.Publish(ctx, e.UserID, e)
}

// NopPublisher discards events. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
