package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_PublishInvokesSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	var calls []string

	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "first:"+e.ID)
		return errors.New("boom")
	})
	d.Subscribe(EventTicketCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second:"+e.ID)
		return nil
	})
	d.Subscribe(EventTicketDeleted, func(_ context.Context, e Event) error {
		calls = append(calls, "deleted")
		return nil
	})

	err := d.Publish(context.Background(), Event{ID: "e1", Type: EventTicketCreated})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:e1", "second:e1"}, calls)
}

func TestDispatcher_PublishWithoutSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	assert.NoError(t, d.Publish(context.Background(), Event{Type: EventTicketUpdated}))
}
