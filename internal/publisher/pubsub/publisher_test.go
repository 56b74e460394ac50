package pubsub

import (
	"context"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/JakeFAU/govjobs-ingestor/internal/notice"
)

func TestAttributesForSavedEvent(t *testing.T) {
	t.Parallel()

	attrs := attributesFor(notice.SavedEvent{SourceName: "UPSC", Category: notice.CategoryUPSC, State: "Central"})
	require.Equal(t, map[string]string{
		"event":    EventSaved,
		"source":   "UPSC",
		"category": "UPSC",
		"state":    "Central",
	}, attrs)
	require.Nil(t, attributesFor("plain"))
}

func TestPublishWithoutPublisher(t *testing.T) {
	t.Parallel()

	_, err := New(nil).Publish(context.Background(), EventSaved, notice.SavedEvent{})
	require.ErrorContains(t, err, "not configured")
	require.NoError(t, New(nil).Close())
}

func TestPublishAgainstFakeServer(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(ctx, "govjobs-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic, err := client.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: "projects/govjobs-test/topics/notices"})
	require.NoError(t, err)
	_, err = client.SubscriptionAdminClient.CreateSubscription(ctx, &pubsubpb.Subscription{
		Name:  "projects/govjobs-test/subscriptions/notices-sub",
		Topic: topic.Name,
	})
	require.NoError(t, err)

	pub := New(client.Publisher(topic.Name))
	t.Cleanup(func() { _ = pub.Close() })

	id, err := pub.Publish(ctx, EventSaved, notice.SavedEvent{ID: "n-1", SourceName: "SSC", Category: notice.CategorySSC})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	received := make(chan *pubsub.Message, 1)
	recvCtx, stop := context.WithCancel(ctx)
	go func() {
		_ = client.Subscriber("notices-sub").Receive(recvCtx, func(_ context.Context, msg *pubsub.Message) {
			msg.Ack()
			select {
			case received <- msg:
			default:
			}
			stop()
		})
	}()

	select {
	case msg := <-received:
		require.Equal(t, EventSaved, msg.Attributes["event"])
		require.Equal(t, "SSC", msg.Attributes["source"])
		require.Contains(t, string(msg.Data), `"id":"n-1"`)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
