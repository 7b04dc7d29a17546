package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/minijira/issue-tracker/internal/events"
	"github.com/minijira/issue-tracker/internal/service"
)

// StartNotificationWorker registers notification handlers.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}

// TailEvents subscribes to channel and calls handle for every ticket event
// received until ctx is cancelled. Undecodable messages are logged and skipped.
func TailEvents(ctx context.Context, client *redis.Client, channel string, logger *zap.Logger, handle func(events.Event)) error {
	if client == nil {
		return errors.New("redis client not configured")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	sub := client.Subscribe(ctx, channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := DecodeEvent([]byte(msg.Payload))
			if err != nil {
				logger.Warn("skipping malformed event", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			handle(event)
		}
	}
}

// DecodeEvent parses an event as forwarded by the notification service. The
// payload is left as generic JSON.
func DecodeEvent(body []byte) (events.Event, error) {
	var event events.Event
	if err := json.Unmarshal(body, &event); err != nil {
		return events.Event{}, err
	}
	if event.Type == "" {
		return events.Event{}, errors.New("event type missing")
	}
	return event, nil
}
