package producer

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/rbroggi/atoll/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func newTestTopic(t *testing.T) (*pstest.Server, *pubsub.Topic) {
	t.Helper()
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.Dial(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(ctx, "atoll", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.CreateTopic(ctx, "shared.atoll.DomainEvents")
	require.NoError(t, err)
	return srv, topic
}

func TestNewProducerNilTopic(t *testing.T) {
	_, err := NewProducer(nil)
	assert.Error(t, err)
}

func TestProducer_Send(t *testing.T) {
	srv, topic := newTestTopic(t)
	producer, err := NewProducer(topic)
	require.NoError(t, err)
	defer producer.Close()

	event := model.DomainEvent{
		ID:         "7d7c3f4e-0b7a-4bd3-9a53-2d0f1f0f6a11",
		Kind:       model.DomainEventInviteAccepted,
		EntityID:   "65f1c2a9e4b0a1b2c3d4e5f6",
		OccurredAt: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		Attributes: map[string]string{"user_id": "65f1c2a9e4b0a1b2c3d4e5f7"},
	}
	require.NoError(t, producer.Send(context.Background(), event))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, string(model.DomainEventInviteAccepted), msgs[0].Attributes[AttributeKind])
	assert.Equal(t, event.EntityID.String(), msgs[0].Attributes[AttributeEntityID])

	var got model.DomainEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.Equal(t, event, got)
}
