package ports

import (
	"context"

	"github.com/rbroggi/atoll/internal/core/model"
)

// Sender is the port for publishing/informing/sending outbound domain events.
type Sender interface {
	// Send sends domain-event data.
	Send(ctx context.Context, event model.DomainEvent) error
}
