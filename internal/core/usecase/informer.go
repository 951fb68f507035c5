package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/rbroggi/atoll/internal/core/ports"
	log "github.com/sirupsen/logrus"
)

// InformerOptArgs are the optional arguments for building an Informer.
type InformerOptArgs = func(*Informer)

// WithInformerNowFunc can be used to override the nowFunc. Useful for testing.
func WithInformerNowFunc(nowFunc func() time.Time) InformerOptArgs {
	return func(i *Informer) {
		i.nowFunc = nowFunc
	}
}

// NewInformer builds a new informer. A nil sender makes it a no-op.
func NewInformer(sender ports.Sender, optArgs ...InformerOptArgs) *Informer {
	i := &Informer{sender: sender, nowFunc: func() time.Time { return time.Now().UTC() }}
	for _, opt := range optArgs {
		opt(i)
	}
	return i
}

// Informer publicly 'informs' about committed domain changes.
// Informing is best effort: the change is already durable when it happens, so a failure is only logged.
type Informer struct {
	sender  ports.Sender
	nowFunc func() time.Time
}

// Inform sends a domain event of the given kind about entityID.
func (i *Informer) Inform(ctx context.Context, kind model.DomainEventKind, entityID model.ID, attrs map[string]string) {
	if i == nil || i.sender == nil {
		return
	}
	event := model.DomainEvent{
		ID:         uuid.NewString(),
		Kind:       kind,
		EntityID:   entityID,
		OccurredAt: i.nowFunc(),
		Attributes: attrs,
	}
	if err := i.sender.Send(ctx, event); err != nil {
		log.WithError(err).
			WithField("kind", kind).
			WithField("entity_id", entityID).
			Warn("could not inform domain event")
	}
}
