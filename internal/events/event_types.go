package events

import (
	"context"
	"time"

	"github.com/minijira/issue-tracker/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated EventType = "ticket_created"
	EventTicketUpdated EventType = "ticket_updated"
	EventTicketDeleted EventType = "ticket_deleted"
)

// AllTicketEvents lists every ticket event type, in publication order.
var AllTicketEvents = []EventType{EventTicketCreated, EventTicketUpdated, EventTicketDeleted}

// Actor identifies who triggered an event. UserID is nil for system actions.
type Actor struct {
	UserID *int64          `json:"userId,omitempty"`
	Role   domain.UserRole `json:"role,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  int64     `json:"ticketId"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ProjectID  int64                 `json:"projectId"`
	AssigneeID *int64                `json:"assigneeId"`
	Priority   domain.TicketPriority `json:"priority"`
	Title      string                `json:"title"`
}

// TicketUpdatedPayload lists the fields a patch touched along with the
// resulting status and priority.
type TicketUpdatedPayload struct {
	Fields   []string              `json:"fields"`
	Status   domain.TicketStatus   `json:"status"`
	Priority domain.TicketPriority `json:"priority"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	ProjectID int64  `json:"projectId"`
	Title     string `json:"title"`
}

type actorKey struct{}

// ContextWithActor attaches the acting user to ctx.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the actor stored by ContextWithActor, or the zero
// (system) actor.
func ActorFromContext(ctx context.Context) Actor {
	actor, _ := ctx.Value(actorKey{}).(Actor)
	return actor
}
