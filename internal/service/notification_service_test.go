package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minijira/issue-tracker/internal/config"
	"github.com/minijira/issue-tracker/internal/events"
)

type recordingPublisher struct {
	channel string
	bodies  [][]byte
	err     error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	if body, ok := message.([]byte); ok {
		p.bodies = append(p.bodies, body)
	}
	cmd := redis.NewIntCmd(ctx)
	if p.err != nil {
		cmd.SetErr(p.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func TestNotificationService_ForwardsEvents(t *testing.T) {
	dispatcher := events.NewInMemoryDispatcher(nil)
	publisher := &recordingPublisher{}
	svc := NewNotificationService(NotificationDependencies{
		Dispatcher: dispatcher,
		Publisher:  publisher,
		Channel:    "tickets.events",
	})
	svc.RegisterHandlers()

	ctx := context.Background()
	for _, eventType := range events.AllTicketEvents {
		require.NoError(t, dispatcher.Publish(ctx, events.Event{ID: string(eventType), Type: eventType, TicketID: 5}))
	}

	assert.Equal(t, "tickets.events", publisher.channel)
	require.Len(t, publisher.bodies, 3)

	var decoded events.Event
	require.NoError(t, json.Unmarshal(publisher.bodies[1], &decoded))
	assert.Equal(t, events.EventTicketUpdated, decoded.Type)
	assert.EqualValues(t, 5, decoded.TicketID)
}

func TestNotificationService_PublishFailureIsReported(t *testing.T) {
	publisher := &recordingPublisher{err: errors.New("connection refused")}
	svc := NewNotificationService(NotificationDependencies{Publisher: publisher, Channel: "c"})

	err := svc.handleTicketEvent(context.Background(), events.Event{ID: "e", Type: events.EventTicketCreated})
	assert.ErrorContains(t, err, "connection refused")
}

func TestNotificationService_WithoutRedis(t *testing.T) {
	svc := NewNotificationService(NotificationDependencies{})
	assert.NoError(t, svc.handleTicketEvent(context.Background(), events.Event{ID: "e", Type: events.EventTicketCreated}))
}

func TestNotificationService_DeliversWebhook(t *testing.T) {
	received := make(chan events.Event, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
		var event events.Event
		if assert.NoError(t, json.NewDecoder(r.Body).Decode(&event)) {
			received <- event
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	svc := NewNotificationService(NotificationDependencies{
		Config: config.NotificationConfig{WebhookURL: server.URL},
	})
	err := svc.handleTicketEvent(context.Background(), events.Event{ID: "evt-1", Type: events.EventTicketCreated, TicketID: 7})
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, "evt-1", got.ID)
		assert.Equal(t, events.EventTicketCreated, got.Type)
		assert.EqualValues(t, 7, got.TicketID)
	default:
		t.Fatal("webhook was not called")
	}
}

func TestNotificationService_WebhookFailureStillForwards(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	publisher := &recordingPublisher{}
	svc := NewNotificationService(NotificationDependencies{
		Publisher: publisher,
		Channel:   "tickets.events",
		Config:    config.NotificationConfig{WebhookURL: server.URL},
	})
	err := svc.handleTicketEvent(context.Background(), events.Event{ID: "evt-2", Type: events.EventTicketDeleted})
	assert.ErrorContains(t, err, "status 500")
	assert.Len(t, publisher.bodies, 1)
}
