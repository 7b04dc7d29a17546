package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/events"
	"github.com/minijira/issue-tracker/internal/repository"
	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets         repository.TicketRepository
	users           repository.UserRepository
	projects        repository.ProjectRepository
	dispatcher      events.Dispatcher
	caseInsensitive bool
	now             func() time.Time
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	UserRepo    repository.UserRepository
	ProjectRepo repository.ProjectRepository
	Dispatcher  events.Dispatcher
	// CaseInsensitiveSearch switches free-text search from LIKE to ILIKE.
	CaseInsensitiveSearch bool
	// Now overrides the clock, mainly for tests.
	Now func() time.Time
}

// TicketListFilter is the decoded query of GET /tickets. Nil fields are
// unconstrained.
type TicketListFilter struct {
	Search    *string
	Status    *domain.TicketStatus
	Priority  *domain.TicketPriority
	Assignee  repository.AssigneeFilter
	ProjectID *int64
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	ProjectID   *int64
	AssigneeID  *int64
	Priority    domain.TicketPriority
}

// TicketUpdateInput is a partial update. Nil fields are left unchanged.
// ClearAssignee unassigns the ticket and wins over AssigneeID.
type TicketUpdateInput struct {
	Title         *string
	Description   *string
	Priority      *domain.TicketPriority
	Status        *domain.TicketStatus
	AssigneeID    *int64
	ClearAssignee bool
	ProjectID     *int64
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &TicketService{
		tickets:         deps.TicketRepo,
		users:           deps.UserRepo,
		projects:        deps.ProjectRepo,
		dispatcher:      deps.Dispatcher,
		caseInsensitive: deps.CaseInsensitiveSearch,
		now:             now,
	}
}

// ListTickets returns tickets matching every supplied filter, most recently
// updated first.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		SearchTerm:      filter.Search,
		Status:          filter.Status,
		Priority:        filter.Priority,
		Assignee:        filter.Assignee,
		ProjectID:       filter.ProjectID,
		CaseInsensitive: s.caseInsensitive,
	}
	return s.tickets.List(ctx, repoFilter)
}

// GetTicket returns a ticket with its project and assignee resolved.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.TicketDetail, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, ticketLookupError(id, err)
	}

	detail := &domain.TicketDetail{Ticket: *ticket}
	project, err := s.projects.GetByID(ctx, ticket.ProjectID)
	switch {
	case err == nil:
		detail.Project = project
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}
	if ticket.AssigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *ticket.AssigneeID)
		switch {
		case err == nil:
			detail.Assignee = assignee
		case !errors.Is(err, repository.ErrNotFound):
			return nil, err
		}
	}
	return detail, nil
}

// CreateTicket validates input and persists a new Open ticket.
func (s *TicketService) CreateTicket(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	if isBlank(input.Title) || isBlank(input.Description) || input.ProjectID == nil || *input.ProjectID == 0 {
		return nil, apperrors.NewValidationError("title, description and projectId are required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !priority.Valid() {
		return nil, invalidPriority()
	}
	if err := s.ensureProject(ctx, *input.ProjectID); err != nil {
		return nil, err
	}
	if input.AssigneeID != nil {
		if err := s.ensureAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
	}

	now := s.clock()
	ticket := &domain.Ticket{
		Title:       input.Title,
		Description: input.Description,
		ProjectID:   *input.ProjectID,
		AssigneeID:  input.AssigneeID,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, referenceWriteError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			ProjectID:  ticket.ProjectID,
			AssigneeID: ticket.AssigneeID,
			Priority:   ticket.Priority,
			Title:      ticket.Title,
		},
	})
	return ticket, nil
}

// UpdateTicket validates every supplied field and then applies them in a
// single write. Existence of the ticket itself is checked by that write, so
// invalid input on a missing ticket reports the validation error.
func (s *TicketService) UpdateTicket(ctx context.Context, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.Title != nil && isBlank(*input.Title) {
		return nil, apperrors.NewValidationError("title must not be empty", nil)
	}
	if input.Description != nil && isBlank(*input.Description) {
		return nil, apperrors.NewValidationError("description must not be empty", nil)
	}
	if input.Priority != nil && !input.Priority.Valid() {
		return nil, invalidPriority()
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("status must be one of %s", domain.StatusList()), nil)
	}

	changes := repository.TicketChanges{
		Title:       input.Title,
		Description: input.Description,
		Priority:    input.Priority,
		Status:      input.Status,
		ProjectID:   input.ProjectID,
	}
	switch {
	case input.ClearAssignee:
		changes.AssigneeSet = true
	case input.AssigneeID != nil:
		if err := s.ensureAssignee(ctx, *input.AssigneeID); err != nil {
			return nil, err
		}
		changes.AssigneeSet = true
		changes.AssigneeID = input.AssigneeID
	}
	if input.ProjectID != nil {
		if err := s.ensureProject(ctx, *input.ProjectID); err != nil {
			return nil, err
		}
	}

	ticket, err := s.tickets.Update(ctx, id, changes, s.clock())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ticketNotFound(id)
		}
		return nil, referenceWriteError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Payload: events.TicketUpdatedPayload{
			Fields:   input.fields(),
			Status:   ticket.Status,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// DeleteTicket removes a ticket and returns the deleted record.
func (s *TicketService) DeleteTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.Delete(ctx, id)
	if err != nil {
		return nil, ticketLookupError(id, err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: ticket.ID,
		Payload: events.TicketDeletedPayload{
			ProjectID: ticket.ProjectID,
			Title:     ticket.Title,
		},
	})
	return ticket, nil
}

func (s *TicketService) ensureProject(ctx context.Context, id int64) error {
	if _, err := s.projects.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("projectId is invalid", map[string]any{"projectId": id})
		}
		return err
	}
	return nil
}

func (s *TicketService) ensureAssignee(ctx context.Context, id int64) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewValidationError("assigneeId is invalid", map[string]any{"assigneeId": id})
		}
		return err
	}
	return nil
}

// clock returns the current time at the precision Postgres stores.
func (s *TicketService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	event.Actor = events.ActorFromContext(ctx)
	_ = s.dispatcher.Publish(ctx, event)
}

func (in TicketUpdateInput) fields() []string {
	fields := []string{}
	if in.Title != nil {
		fields = append(fields, "title")
	}
	if in.Description != nil {
		fields = append(fields, "description")
	}
	if in.Priority != nil {
		fields = append(fields, "priority")
	}
	if in.Status != nil {
		fields = append(fields, "status")
	}
	if in.ClearAssignee || in.AssigneeID != nil {
		fields = append(fields, "assigneeId")
	}
	if in.ProjectID != nil {
		fields = append(fields, "projectId")
	}
	return fields
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func invalidPriority() error {
	return apperrors.NewValidationError(
		fmt.Sprintf("priority must be one of %s", domain.PriorityList()), nil)
}

func ticketNotFound(id int64) error {
	return apperrors.NewNotFound("Ticket", map[string]any{"id": id})
}

func ticketLookupError(id int64, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ticketNotFound(id)
	}
	return err
}

// referenceWriteError covers a project or user removed between validation
// and the write.
func referenceWriteError(err error) error {
	if errors.Is(err, repository.ErrConflict) {
		return apperrors.NewConflict("ticket references changed during the request", nil)
	}
	return err
}
