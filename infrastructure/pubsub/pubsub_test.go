package pubsub

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"token-platform/domain/model"
)

func TestEventPublisher_NilClient(t *testing.T) {
	p := NewEventPublisher(nil, "events")

	err := p.Publish(context.Background(), model.NewEvent(model.EventFeaturedChanged, 1, time.Now(), nil))

	assert.NoError(t, err)
}

func TestEventPublisher_PublishCreatesTopic(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	defer srv.Close()

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	client, err := pubsub.NewClient(ctx, "token-platform-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	defer client.Close()

	p := NewEventPublisher(client, "platform-events")
	defer p.Close()

	event := model.NewEvent(model.EventFeaturedChanged, 5, time.Now(), map[string]interface{}{"video_id": float64(12)})
	require.NoError(t, p.Publish(ctx, event))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, model.EventFeaturedChanged, msgs[0].Attributes["type"])

	var got model.Event
	require.NoError(t, json.Unmarshal(msgs[0].Data, &got))
	assert.Equal(t, event.ID, got.ID)
	assert.Equal(t, float64(12), got.Payload["video_id"])
}
