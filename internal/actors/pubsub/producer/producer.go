package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	"github.com/rbroggi/atoll/internal/metrics"
)

// Message attributes set on every published domain event.
const (
	AttributeKind     = "kind"
	AttributeEntityID = "entity_id"
)

var _ ports.Sender = (*Producer)(nil)

// NewProducer creates a new producer.
func NewProducer(topic *pubsub.Topic) (*Producer, error) {
	if topic == nil {
		return nil, errors.New("topic is nil")
	}
	return &Producer{topic: topic}, nil
}

// Producer is the pubsub producer of domain events.
type Producer struct {
	topic *pubsub.Topic
}

// Send publishes the event as JSON and waits for the server acknowledgement.
func (p *Producer) Send(ctx context.Context, event model.DomainEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		metrics.ObserveDomainEvent(string(event.Kind), "error")
		return fmt.Errorf("error marshaling domain event: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			AttributeKind:     string(event.Kind),
			AttributeEntityID: event.EntityID.String(),
		},
	})
	// Block until the result is returned and a server-generated
	// ID is returned for the published message.
	if _, err := result.Get(ctx); err != nil {
		metrics.ObserveDomainEvent(string(event.Kind), "error")
		return fmt.Errorf("error publishing domain event: %w", err)
	}
	metrics.ObserveDomainEvent(string(event.Kind), "ok")
	return nil
}

// Close flushes pending messages.
func (p *Producer) Close() {
	p.topic.Stop()
}
