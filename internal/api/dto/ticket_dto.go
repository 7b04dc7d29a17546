package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository"
	"github.com/minijira/issue-tracker/internal/service"
	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

// UnassignedSentinel is the assigneeId query value selecting tickets with no
// assignee.
const UnassignedSentinel = "unassigned"

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ProjectID   OptionalID `json:"projectId"`
	AssigneeID  OptionalID `json:"assigneeId"`
	Priority    string     `json:"priority"`
}

// ToInput converts the payload into a service input.
func (r CreateTicketRequest) ToInput() service.TicketCreateInput {
	return service.TicketCreateInput{
		Title:       r.Title,
		Description: r.Description,
		ProjectID:   r.ProjectID.ID(),
		AssigneeID:  r.AssigneeID.ID(),
		Priority:    domain.TicketPriority(r.Priority),
	}
}

// UpdateTicketRequest is a partial update. Absent fields are left alone; an
// assigneeId of null or "" unassigns the ticket.
type UpdateTicketRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Status      *string    `json:"status"`
	AssigneeID  OptionalID `json:"assigneeId"`
	ProjectID   OptionalID `json:"projectId"`
}

// ToInput converts the payload into a service input. Empty priority and
// status strings count as not supplied. A projectId sent as null or "" can
// never resolve and is passed on as id 0.
func (r UpdateTicketRequest) ToInput() service.TicketUpdateInput {
	input := service.TicketUpdateInput{
		Title:       r.Title,
		Description: r.Description,
	}
	if r.Priority != nil && *r.Priority != "" {
		p := domain.TicketPriority(*r.Priority)
		input.Priority = &p
	}
	if r.Status != nil && *r.Status != "" {
		s := domain.TicketStatus(*r.Status)
		input.Status = &s
	}
	switch {
	case r.AssigneeID.Cleared():
		input.ClearAssignee = true
	case r.AssigneeID.Set:
		input.AssigneeID = r.AssigneeID.ID()
	}
	if r.ProjectID.Set {
		id := r.ProjectID.Value
		input.ProjectID = &id
	}
	return input
}

// TicketListQueryKeys are the filter parameters of GET /tickets.
var TicketListQueryKeys = []string{"search", "status", "priority", "assigneeId", "projectId"}

// TicketListQuery captures GET /tickets query parameters.
type TicketListQuery struct {
	Search     string `query:"search"`
	Status     string `query:"status"`
	Priority   string `query:"priority"`
	AssigneeID string `query:"assigneeId"`
	ProjectID  string `query:"projectId"`
}

// ToFilter converts the query into a service filter. Empty parameters are
// unconstrained. Unknown status or priority values pass through and simply
// match nothing.
func (q TicketListQuery) ToFilter() (service.TicketListFilter, error) {
	var filter service.TicketListFilter
	if q.Search != "" {
		search := q.Search
		filter.Search = &search
	}
	if q.Status != "" {
		status := domain.TicketStatus(q.Status)
		filter.Status = &status
	}
	if q.Priority != "" {
		priority := domain.TicketPriority(q.Priority)
		filter.Priority = &priority
	}

	switch assignee := strings.TrimSpace(q.AssigneeID); assignee {
	case "":
	case UnassignedSentinel:
		filter.Assignee = repository.AssigneeFilter{Mode: repository.AssigneeUnassigned}
	default:
		id, err := strconv.ParseInt(assignee, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("assigneeId must be a number or 'unassigned'",
				map[string]any{"assigneeId": q.AssigneeID})
		}
		filter.Assignee = repository.AssigneeFilter{Mode: repository.AssigneeExact, ID: id}
	}

	if project := strings.TrimSpace(q.ProjectID); project != "" {
		id, err := strconv.ParseInt(project, 10, 64)
		if err != nil {
			return filter, apperrors.NewValidationError("projectId must be a number",
				map[string]any{"projectId": q.ProjectID})
		}
		filter.ProjectID = &id
	}
	return filter, nil
}

// TicketResponse is the wire form of a ticket. assigneeId is null when the
// ticket is unassigned.
type TicketResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	ProjectID   int64                 `json:"projectId"`
	AssigneeID  *int64                `json:"assigneeId"`
	Priority    domain.TicketPriority `json:"priority"`
	Status      domain.TicketStatus   `json:"status"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// TicketDetailResponse is a ticket with its references embedded.
type TicketDetailResponse struct {
	TicketResponse
	Project  *ProjectResponse `json:"project"`
	Assignee *UserResponse    `json:"assignee"`
}

// NewTicketResponse maps a domain ticket.
func NewTicketResponse(t *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		ProjectID:   t.ProjectID,
		AssigneeID:  t.AssigneeID,
		Priority:    t.Priority,
		Status:      t.Status,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

// NewTicketResponses maps a slice of tickets, preserving order.
func NewTicketResponses(tickets []domain.Ticket) []TicketResponse {
	out := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		out = append(out, NewTicketResponse(&tickets[i]))
	}
	return out
}

// NewTicketDetailResponse maps a ticket detail.
func NewTicketDetailResponse(d *domain.TicketDetail) TicketDetailResponse {
	resp := TicketDetailResponse{TicketResponse: NewTicketResponse(&d.Ticket)}
	if d.Project != nil {
		p := NewProjectResponse(d.Project)
		resp.Project = &p
	}
	if d.Assignee != nil {
		u := NewUserResponse(d.Assignee)
		resp.Assignee = &u
	}
	return resp
}
