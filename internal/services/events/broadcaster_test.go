package events

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestBroadcaster_PublishReachesBothChannels(t *testing.T) {
	_, client := setupTestRedis(t)
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	sub := client.Subscribe(ctx, AllEventsChannel, SessionChannel("s-1"))
	t.Cleanup(func() { _ = sub.Close() })
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	b := NewBroadcaster(client, log)
	require.NoError(t, b.Publish(ctx, Event{
		Type:      EventTypeActionExecuted,
		SessionID: "s-1",
		Data:      map[string]any{"action": "open mailbox"},
	}))

	got := map[string]Event{}
	ch := sub.Channel()
	for len(got) < 2 {
		select {
		case msg := <-ch:
			var ev Event
			require.NoError(t, json.Unmarshal([]byte(msg.Payload), &ev))
			got[msg.Channel] = ev
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %d", len(got))
		}
	}

	for _, channel := range []string{AllEventsChannel, SessionChannel("s-1")} {
		ev, ok := got[channel]
		require.True(t, ok, "missing event on %s", channel)
		assert.Equal(t, EventTypeActionExecuted, ev.Type)
		assert.Equal(t, "s-1", ev.SessionID)
		assert.Equal(t, "open mailbox", ev.Data["action"])
		assert.False(t, ev.Timestamp.IsZero())
	}
}

func TestDial(t *testing.T) {
	mr, _ := setupTestRedis(t)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	b, err := Dial(context.Background(), "redis://"+mr.Addr(), log)
	require.NoError(t, err)
	assert.NoError(t, b.Close())

	_, err = Dial(context.Background(), "not a url", log)
	assert.Error(t, err)
}

func TestNoop(t *testing.T) {
	var p Publisher = Noop{}
	assert.NoError(t, p.Publish(context.Background(), Event{Type: EventTypeSessionStarted}))
	assert.NoError(t, p.Close())
}
