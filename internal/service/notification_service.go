package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/minijira/issue-tracker/internal/config"
	"github.com/minijira/issue-tracker/internal/events"
)

// EventPublisher is the subset of the go-redis client used to fan events out.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	publisher  EventPublisher
	channel    string
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NotificationDependencies bundles collaborators for the notification service.
type NotificationDependencies struct {
	Dispatcher events.Dispatcher
	// Publisher is optional; nil disables Redis forwarding.
	Publisher EventPublisher
	Channel   string
	Logger    *zap.Logger
	Config    config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(deps NotificationDependencies) *NotificationService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: deps.Dispatcher,
		publisher:  deps.Publisher,
		channel:    deps.Channel,
		logger:     logger,
		cfg:        deps.Config,
	}
}

// RegisterHandlers subscribes to every ticket event.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	for _, eventType := range events.AllTicketEvents {
		n.dispatcher.Subscribe(eventType, n.handleTicketEvent)
	}
}

func (n *NotificationService) handleTicketEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("ticket event",
		zap.String("event_id", event.ID),
		zap.String("event_type", string(event.Type)),
		zap.Int64("ticket_id", event.TicketID),
		zap.Any("payload", event.Payload))

	return errors.Join(n.sendWebhook(event), n.forward(ctx, event))
}

func (n *NotificationService) forward(ctx context.Context, event events.Event) error {
	if n.publisher == nil || n.channel == "" {
		return nil
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	if err := n.publisher.Publish(ctx, n.channel, body).Err(); err != nil {
		return fmt.Errorf("publish event %s to %s: %w", event.ID, n.channel, err)
	}
	return nil
}

// sendWebhook POSTs the event as JSON to the configured webhook. Any
// non-2xx answer counts as a failed delivery.
func (n *NotificationService) sendWebhook(event events.Event) error {
	url := strings.TrimSpace(n.cfg.WebhookURL)
	if url == "" {
		return nil
	}
	agent := fiber.Post(url)
	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	agent.JSON(event)
	agent.Timeout(n.cfg.WebhookTimeout())

	status, _, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("deliver event %s to webhook: %w", event.ID, errs[0])
	}
	if status < fiber.StatusOK || status >= fiber.StatusMultipleChoices {
		return fmt.Errorf("deliver event %s to webhook: status %d", event.ID, status)
	}
	n.logger.Debug("webhook delivered",
		zap.String("event_id", event.ID),
		zap.Int("status", status))
	return nil
}
