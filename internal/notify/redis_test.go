package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisNotifierPublish(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	n := NewRedisNotifier(client, "governance:events")

	ctx := context.Background()
	sub := client.Subscribe(ctx, "governance:events")
	defer sub.Close()
	// wait for subscription confirmation before publishing
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, n.Publish(ctx, Event{
		Kind:       "document.transition",
		DocumentID: "qdoc_1",
		ActorSub:   "u2",
		FromState:  "draft",
		ToState:    "in_review",
	}))

	select {
	case msg := <-sub.Channel():
		var ev Event
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
		require.Equal(t, "document.transition", ev.Kind)
		require.Equal(t, "in_review", ev.ToState)
		require.False(t, ev.OccurredAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("no event received")
	}
}

func TestNoopNotifier(t *testing.T) {
	require.NoError(t, Noop{}.Publish(context.Background(), Event{Kind: "ticket.created"}))
}
