package worker

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minijira/issue-tracker/internal/events"
)

func TestDecodeEvent(t *testing.T) {
	body, err := json.Marshal(events.Event{ID: "e1", Type: events.EventTicketDeleted, TicketID: 7})
	require.NoError(t, err)

	event, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, "e1", event.ID)
	assert.Equal(t, events.EventTicketDeleted, event.Type)
	assert.EqualValues(t, 7, event.TicketID)

	_, err = DecodeEvent([]byte(`{"id":"x"}`))
	assert.Error(t, err)
	_, err = DecodeEvent([]byte(`not json`))
	assert.Error(t, err)
}

func TestTailEvents(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	channel := "tickets.events.test"
	received := make(chan events.Event, 1)
	done := make(chan error, 1)
	go func() {
		done <- TailEvents(ctx, client, channel, nil, func(e events.Event) {
			select {
			case received <- e:
			default:
			}
			cancel()
		})
	}()

	body, err := json.Marshal(events.Event{ID: "e2", Type: events.EventTicketCreated, TicketID: 3})
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		n, err := client.Publish(context.Background(), channel, body).Result()
		return err == nil && n > 0
	}, 3*time.Second, 50*time.Millisecond)

	select {
	case e := <-received:
		assert.Equal(t, "e2", e.ID)
	case <-time.After(5 * time.Second):
		t.Fatal("event not received")
	}
	assert.NoError(t, <-done)
}

func TestTailEvents_RequiresClient(t *testing.T) {
	assert.Error(t, TailEvents(context.Background(), nil, "c", nil, func(events.Event) {}))
}
