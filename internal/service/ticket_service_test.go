package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/events"
	"github.com/minijira/issue-tracker/internal/repository"
	"github.com/minijira/issue-tracker/internal/repository/memory"
	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

type ticketFixture struct {
	svc      *TicketService
	store    *memory.Store
	project  domain.Project
	other    domain.Project
	jane     domain.User
	john     domain.User
	clock    *fakeClock
	captured *[]events.Event
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func setupTicketService(t *testing.T) *ticketFixture {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()

	project := domain.Project{Name: "Mini Jira", Key: "MJ"}
	other := domain.Project{Name: "Website Revamp", Key: "WEB"}
	require.NoError(t, store.Projects().Create(ctx, &project))
	require.NoError(t, store.Projects().Create(ctx, &other))

	jane := domain.User{Name: "Jane Dev", Email: "jane@minijira.local", Role: domain.UserRoleUser}
	john := domain.User{Name: "John QA", Email: "john@minijira.local", Role: domain.UserRoleUser}
	require.NoError(t, store.Users().Create(ctx, &jane))
	require.NoError(t, store.Users().Create(ctx, &john))

	dispatcher := events.NewInMemoryDispatcher(nil)
	captured := []events.Event{}
	for _, eventType := range events.AllTicketEvents {
		dispatcher.Subscribe(eventType, func(_ context.Context, e events.Event) error {
			captured = append(captured, e)
			return nil
		})
	}

	clock := &fakeClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  store.Tickets(),
		UserRepo:    store.Users(),
		ProjectRepo: store.Projects(),
		Dispatcher:  dispatcher,
		Now:         clock.Now,
	})
	return &ticketFixture{
		svc: svc, store: store, project: project, other: other,
		jane: jane, john: john, clock: clock, captured: &captured,
	}
}

func (f *ticketFixture) create(t *testing.T, title, description string, assignee *int64) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), TicketCreateInput{
		Title:       title,
		Description: description,
		ProjectID:   &f.project.ID,
		AssigneeID:  assignee,
	})
	require.NoError(t, err)
	f.clock.Advance(time.Second)
	return ticket
}

func ptr[T any](v T) *T { return &v }

func requireDomainError(t *testing.T, err error, code, message string) {
	t.Helper()
	require.Error(t, err)
	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, code, domainErr.Code)
	assert.Equal(t, message, domainErr.Message)
}

func TestCreateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults priority and forces Open", func(t *testing.T) {
		f := setupTicketService(t)
		ticket, err := f.svc.CreateTicket(ctx, TicketCreateInput{
			Title: "Login fails", Description: "500 on submit", ProjectID: &f.project.ID,
		})
		require.NoError(t, err)
		assert.NotZero(t, ticket.ID)
		assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Nil(t, ticket.AssigneeID)
		assert.Equal(t, ticket.CreatedAt, ticket.UpdatedAt)
	})

	t.Run("stores title untrimmed", func(t *testing.T) {
		f := setupTicketService(t)
		ticket, err := f.svc.CreateTicket(ctx, TicketCreateInput{
			Title: "  padded ", Description: "d", ProjectID: &f.project.ID,
		})
		require.NoError(t, err)
		assert.Equal(t, "  padded ", ticket.Title)
	})

	tests := []struct {
		name    string
		input   func(f *ticketFixture) TicketCreateInput
		code    string
		message string
	}{
		{
			name:    "missing title",
			input:   func(f *ticketFixture) TicketCreateInput { return TicketCreateInput{Description: "d", ProjectID: &f.project.ID} },
			code:    apperrors.CodeValidation,
			message: "title, description and projectId are required",
		},
		{
			name: "whitespace description",
			input: func(f *ticketFixture) TicketCreateInput {
				return TicketCreateInput{Title: "t", Description: "   ", ProjectID: &f.project.ID}
			},
			code:    apperrors.CodeValidation,
			message: "title, description and projectId are required",
		},
		{
			name:    "missing project",
			input:   func(f *ticketFixture) TicketCreateInput { return TicketCreateInput{Title: "t", Description: "d"} },
			code:    apperrors.CodeValidation,
			message: "title, description and projectId are required",
		},
		{
			name: "required fields are checked before priority",
			input: func(f *ticketFixture) TicketCreateInput {
				return TicketCreateInput{Description: "d", ProjectID: &f.project.ID, Priority: "Urgent"}
			},
			code:    apperrors.CodeValidation,
			message: "title, description and projectId are required",
		},
		{
			name: "invalid priority",
			input: func(f *ticketFixture) TicketCreateInput {
				return TicketCreateInput{Title: "t", Description: "d", ProjectID: &f.project.ID, Priority: "Urgent"}
			},
			code:    apperrors.CodeValidation,
			message: "priority must be one of Low, Medium, High",
		},
		{
			name: "priority is checked before project existence",
			input: func(f *ticketFixture) TicketCreateInput {
				return TicketCreateInput{Title: "t", Description: "d", ProjectID: ptr(int64(999)), Priority: "urgent"}
			},
			code:    apperrors.CodeValidation,
			message: "priority must be one of Low, Medium, High",
		},
		{
			name: "unknown project",
			input: func(f *ticketFixture) TicketCreateInput {
				return TicketCreateInput{Title: "t", Description: "d", ProjectID: ptr(int64(999)), AssigneeID: ptr(int64(999))}
			},
			code:    apperrors.CodeValidation,
			message: "projectId is invalid",
		},
		{
			name: "unknown assignee",
			input: func(f *ticketFixture) TicketCreateInput {
				return TicketCreateInput{Title: "t", Description: "d", ProjectID: &f.project.ID, AssigneeID: ptr(int64(999))}
			},
			code:    apperrors.CodeValidation,
			message: "assigneeId is invalid",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTicketService(t)
			_, err := f.svc.CreateTicket(ctx, tc.input(f))
			requireDomainError(t, err, tc.code, tc.message)

			list, err := f.svc.ListTickets(ctx, TicketListFilter{})
			require.NoError(t, err)
			assert.Empty(t, list, "rejected create must not write")
			assert.Empty(t, *f.captured)
		})
	}
}

func TestUpdateTicket(t *testing.T) {
	ctx := context.Background()

	t.Run("unsupplied fields are left unchanged", func(t *testing.T) {
		f := setupTicketService(t)
		original := f.create(t, "Title", "Desc", &f.jane.ID)

		updated, err := f.svc.UpdateTicket(ctx, original.ID, TicketUpdateInput{Status: ptr(domain.TicketStatusInProgress)})
		require.NoError(t, err)
		assert.Equal(t, domain.TicketStatusInProgress, updated.Status)
		assert.Equal(t, "Title", updated.Title)
		assert.Equal(t, "Desc", updated.Description)
		assert.Equal(t, f.jane.ID, *updated.AssigneeID)
		assert.Equal(t, original.CreatedAt, updated.CreatedAt)
		assert.True(t, updated.UpdatedAt.After(original.UpdatedAt))
	})

	t.Run("clearing the assignee", func(t *testing.T) {
		f := setupTicketService(t)
		original := f.create(t, "Title", "Desc", &f.jane.ID)

		updated, err := f.svc.UpdateTicket(ctx, original.ID, TicketUpdateInput{ClearAssignee: true})
		require.NoError(t, err)
		assert.Nil(t, updated.AssigneeID)
	})

	t.Run("reassigning and moving project", func(t *testing.T) {
		f := setupTicketService(t)
		original := f.create(t, "Title", "Desc", nil)

		updated, err := f.svc.UpdateTicket(ctx, original.ID, TicketUpdateInput{
			AssigneeID: &f.john.ID,
			ProjectID:  &f.other.ID,
			Priority:   ptr(domain.TicketPriorityHigh),
		})
		require.NoError(t, err)
		assert.Equal(t, f.john.ID, *updated.AssigneeID)
		assert.Equal(t, f.other.ID, updated.ProjectID)
		assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
	})

	t.Run("updated_at strictly increases even with a frozen clock", func(t *testing.T) {
		f := setupTicketService(t)
		original := f.create(t, "Title", "Desc", nil)

		first, err := f.svc.UpdateTicket(ctx, original.ID, TicketUpdateInput{Title: ptr("A")})
		require.NoError(t, err)
		second, err := f.svc.UpdateTicket(ctx, original.ID, TicketUpdateInput{Title: ptr("B")})
		require.NoError(t, err)
		assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
	})

	t.Run("missing ticket with valid fields is not found", func(t *testing.T) {
		f := setupTicketService(t)
		_, err := f.svc.UpdateTicket(ctx, 404, TicketUpdateInput{Title: ptr("x")})
		requireDomainError(t, err, apperrors.CodeNotFound, "Ticket not found")
	})

	t.Run("validation precedes the existence check", func(t *testing.T) {
		f := setupTicketService(t)
		_, err := f.svc.UpdateTicket(ctx, 404, TicketUpdateInput{ProjectID: ptr(int64(999))})
		requireDomainError(t, err, apperrors.CodeValidation, "projectId is invalid")
	})

	tests := []struct {
		name    string
		input   TicketUpdateInput
		message string
	}{
		{"blank title", TicketUpdateInput{Title: ptr(" ")}, "title must not be empty"},
		{"blank description", TicketUpdateInput{Description: ptr("")}, "description must not be empty"},
		{"invalid priority", TicketUpdateInput{Priority: ptr(domain.TicketPriority("Critical"))}, "priority must be one of Low, Medium, High"},
		{"invalid status", TicketUpdateInput{Status: ptr(domain.TicketStatus("Done"))}, "status must be one of Open, In Progress, Resolved, Closed"},
		{
			"priority is checked before status",
			TicketUpdateInput{Priority: ptr(domain.TicketPriority("x")), Status: ptr(domain.TicketStatus("y"))},
			"priority must be one of Low, Medium, High",
		},
		{"unknown assignee", TicketUpdateInput{Title: ptr("New"), AssigneeID: ptr(int64(999))}, "assigneeId is invalid"},
		{
			"assignee is checked before project",
			TicketUpdateInput{AssigneeID: ptr(int64(999)), ProjectID: ptr(int64(999))},
			"assigneeId is invalid",
		},
		{"unknown project", TicketUpdateInput{Status: ptr(domain.TicketStatusClosed), ProjectID: ptr(int64(999))}, "projectId is invalid"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := setupTicketService(t)
			original := f.create(t, "Title", "Desc", &f.jane.ID)
			*f.captured = nil

			_, err := f.svc.UpdateTicket(ctx, original.ID, tc.input)
			requireDomainError(t, err, apperrors.CodeValidation, tc.message)

			stored, err := f.store.Tickets().GetByID(ctx, original.ID)
			require.NoError(t, err)
			assert.Equal(t, *original, *stored, "rejected update must not write")
			assert.Empty(t, *f.captured)
		})
	}
}

func TestListTickets(t *testing.T) {
	ctx := context.Background()
	f := setupTicketService(t)

	login := f.create(t, "Login button broken", "Safari only", &f.jane.ID)
	report := f.create(t, "Report export", "CSV has 100% wrong totals", nil)
	moved, err := f.svc.CreateTicket(ctx, TicketCreateInput{
		Title: "Landing page", Description: "new hero", ProjectID: &f.other.ID,
		AssigneeID: &f.john.ID, Priority: domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	f.clock.Advance(time.Second)

	ids := func(list []domain.Ticket) []int64 {
		out := make([]int64, len(list))
		for i, ticket := range list {
			out[i] = ticket.ID
		}
		return out
	}

	t.Run("no filters returns everything newest first", func(t *testing.T) {
		list, err := f.svc.ListTickets(ctx, TicketListFilter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{moved.ID, report.ID, login.ID}, ids(list))
	})

	t.Run("update moves a ticket to the front", func(t *testing.T) {
		_, err := f.svc.UpdateTicket(ctx, login.ID, TicketUpdateInput{Status: ptr(domain.TicketStatusInProgress)})
		require.NoError(t, err)
		f.clock.Advance(time.Second)

		list, err := f.svc.ListTickets(ctx, TicketListFilter{})
		require.NoError(t, err)
		assert.Equal(t, []int64{login.ID, moved.ID, report.ID}, ids(list))
	})

	t.Run("search matches title or description", func(t *testing.T) {
		list, err := f.svc.ListTickets(ctx, TicketListFilter{Search: ptr("Safari")})
		require.NoError(t, err)
		assert.Equal(t, []int64{login.ID}, ids(list))

		list, err = f.svc.ListTickets(ctx, TicketListFilter{Search: ptr("Report")})
		require.NoError(t, err)
		assert.Equal(t, []int64{report.ID}, ids(list))
	})

	t.Run("search is case-sensitive", func(t *testing.T) {
		list, err := f.svc.ListTickets(ctx, TicketListFilter{Search: ptr("safari")})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("search wildcards are literal", func(t *testing.T) {
		list, err := f.svc.ListTickets(ctx, TicketListFilter{Search: ptr("100%")})
		require.NoError(t, err)
		assert.Equal(t, []int64{report.ID}, ids(list))

		list, err = f.svc.ListTickets(ctx, TicketListFilter{Search: ptr("%")})
		require.NoError(t, err)
		assert.Equal(t, []int64{report.ID}, ids(list))
	})

	t.Run("unassigned sentinel", func(t *testing.T) {
		list, err := f.svc.ListTickets(ctx, TicketListFilter{Assignee: repository.AssigneeFilter{Mode: repository.AssigneeUnassigned}})
		require.NoError(t, err)
		assert.Equal(t, []int64{report.ID}, ids(list))
	})

	t.Run("filters combine conjunctively", func(t *testing.T) {
		list, err := f.svc.ListTickets(ctx, TicketListFilter{
			Priority:  ptr(domain.TicketPriorityHigh),
			ProjectID: &f.other.ID,
			Assignee:  repository.AssigneeFilter{Mode: repository.AssigneeExact, ID: f.john.ID},
		})
		require.NoError(t, err)
		assert.Equal(t, []int64{moved.ID}, ids(list))

		list, err = f.svc.ListTickets(ctx, TicketListFilter{
			Priority:  ptr(domain.TicketPriorityHigh),
			ProjectID: &f.project.ID,
		})
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("unknown status matches nothing", func(t *testing.T) {
		list, err := f.svc.ListTickets(ctx, TicketListFilter{Status: ptr(domain.TicketStatus("Done"))})
		require.NoError(t, err)
		assert.Empty(t, list)
	})
}

func TestListTickets_CaseInsensitiveSearch(t *testing.T) {
	ctx := context.Background()
	f := setupTicketService(t)
	f.create(t, "Login button broken", "Safari only", nil)

	svc := NewTicketService(TicketDependencies{
		TicketRepo:            f.store.Tickets(),
		UserRepo:              f.store.Users(),
		ProjectRepo:           f.store.Projects(),
		CaseInsensitiveSearch: true,
	})
	list, err := svc.ListTickets(ctx, TicketListFilter{Search: ptr("safari")})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGetTicket(t *testing.T) {
	ctx := context.Background()
	f := setupTicketService(t)
	ticket := f.create(t, "Title", "Desc", &f.jane.ID)

	detail, err := f.svc.GetTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, detail.ID)
	require.NotNil(t, detail.Project)
	assert.Equal(t, "MJ", detail.Project.Key)
	require.NotNil(t, detail.Assignee)
	assert.Equal(t, "Jane Dev", detail.Assignee.Name)

	_, err = f.svc.GetTicket(ctx, 999)
	requireDomainError(t, err, apperrors.CodeNotFound, "Ticket not found")
}

func TestDeleteTicket(t *testing.T) {
	ctx := context.Background()
	f := setupTicketService(t)
	ticket := f.create(t, "Title", "Desc", nil)

	deleted, err := f.svc.DeleteTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, deleted.ID)
	assert.Equal(t, "Title", deleted.Title)

	_, err = f.svc.DeleteTicket(ctx, ticket.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, "Ticket not found")

	_, err = f.svc.GetTicket(ctx, ticket.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestTicketEvents(t *testing.T) {
	f := setupTicketService(t)
	actorID := f.jane.ID
	ctx := events.ContextWithActor(context.Background(), events.Actor{UserID: &actorID, Role: domain.UserRoleUser})

	ticket, err := f.svc.CreateTicket(ctx, TicketCreateInput{Title: "t", Description: "d", ProjectID: &f.project.ID})
	require.NoError(t, err)
	_, err = f.svc.UpdateTicket(ctx, ticket.ID, TicketUpdateInput{Title: ptr("t2"), ClearAssignee: true})
	require.NoError(t, err)
	_, err = f.svc.DeleteTicket(ctx, ticket.ID)
	require.NoError(t, err)

	captured := *f.captured
	require.Len(t, captured, 3)
	assert.Equal(t, events.EventTicketCreated, captured[0].Type)
	assert.Equal(t, events.EventTicketUpdated, captured[1].Type)
	assert.Equal(t, events.EventTicketDeleted, captured[2].Type)
	for _, e := range captured {
		assert.NotEmpty(t, e.ID)
		assert.Equal(t, ticket.ID, e.TicketID)
		require.NotNil(t, e.Actor.UserID)
		assert.Equal(t, actorID, *e.Actor.UserID)
	}

	payload, ok := captured[1].Payload.(events.TicketUpdatedPayload)
	require.True(t, ok)
	assert.Equal(t, []string{"title", "assigneeId"}, payload.Fields)
}
