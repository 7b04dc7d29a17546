package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/client"
	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/store"
)

type boardAPI struct {
	mu        sync.Mutex
	tickets   []dto.TicketResponse
	listCalls []client.TicketFilters
	created   []client.NewTicket
	patches   []client.TicketPatch
	updateErr error
}

func (a *boardAPI) ListTickets(_ context.Context, f client.TicketFilters) ([]dto.TicketResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listCalls = append(a.listCalls, f)
	return append([]dto.TicketResponse(nil), a.tickets...), nil
}

func (a *boardAPI) CreateTicket(_ context.Context, in client.NewTicket) (*dto.TicketResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.created = append(a.created, in)
	t := dto.TicketResponse{
		ID: int64(100 + len(a.created)), Title: in.Title, Description: in.Description,
		ProjectID: in.ProjectID, AssigneeID: in.AssigneeID,
		Priority: domain.TicketPriority(in.Priority), Status: domain.TicketStatusOpen,
	}
	a.tickets = append([]dto.TicketResponse{t}, a.tickets...)
	return &t, nil
}

func (a *boardAPI) UpdateTicket(_ context.Context, id int64, patch client.TicketPatch) (*dto.TicketResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.updateErr != nil {
		return nil, a.updateErr
	}
	a.patches = append(a.patches, patch)
	for i := range a.tickets {
		if a.tickets[i].ID == id {
			a.tickets[i].Status = domain.TicketStatus(*patch.Status)
			a.tickets[i].AssigneeID = patch.Assignee.ID()
			t := a.tickets[i]
			return &t, nil
		}
	}
	return nil, &client.APIError{Status: 404, Message: "Ticket not found"}
}

func (a *boardAPI) ListUsers(context.Context) ([]dto.UserResponse, error) {
	return []dto.UserResponse{{ID: 1, Name: "Admin User"}, {ID: 2, Name: "Jane Dev"}}, nil
}

func (a *boardAPI) ListProjects(context.Context) ([]dto.ProjectResponse, error) {
	return []dto.ProjectResponse{{ID: 1, Name: "Mini Jira", Key: "MJ"}, {ID: 2, Name: "Website Revamp", Key: "WEB"}}, nil
}

func (a *boardAPI) lastFilters() client.TicketFilters {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listCalls[len(a.listCalls)-1]
}

func (a *boardAPI) calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.listCalls)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// press delivers a key. Commands are returned, not run, since text input
// keystrokes may return cursor blink timers.
func press(t *testing.T, model Model, message tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := model.Update(message)
	next, ok := updated.(Model)
	require.True(t, ok)
	return next, cmd
}

// settle runs a board command and feeds its result back into the model.
func settle(t *testing.T, model Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		return model
	}
	switch message := cmd().(type) {
	case nil:
		return model
	case tea.BatchMsg:
		for _, inner := range message {
			model = settle(t, model, inner)
		}
		return model
	case lookupsLoadedMsg, ticketsLoadedMsg, ticketSavedMsg:
		model, _ = press(t, model, message)
		return model
	default:
		t.Fatalf("unexpected message %T", message)
		return model
	}
}

func setupBoard(t *testing.T) (Model, *boardAPI, *store.Store) {
	t.Helper()
	jane := int64(2)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	api := &boardAPI{tickets: []dto.TicketResponse{
		{ID: 2, Title: "Checkout crash", Description: "500", ProjectID: 2, AssigneeID: &jane,
			Priority: domain.TicketPriorityHigh, Status: domain.TicketStatusOpen, UpdatedAt: now},
		{ID: 1, Title: "Login fails", Description: "401", ProjectID: 1,
			Priority: domain.TicketPriorityMedium, Status: domain.TicketStatusOpen, UpdatedAt: now.Add(-time.Hour)},
	}}
	s := store.New(api)
	model := NewModel(context.Background(), s)
	model = settle(t, model, model.Init())
	return model, api, s
}

func TestBoard_InitialView(t *testing.T) {
	model, api, _ := setupBoard(t)
	assert.Equal(t, 1, api.calls())

	view := model.View()
	assert.Contains(t, view, "Open 2")
	assert.Contains(t, view, "In Progress 0")
	assert.Contains(t, view, "Resolved 0")
	assert.Contains(t, view, "WEB")
	assert.Contains(t, view, "Jane Dev")
	assert.Contains(t, view, "Unassigned")
	assert.Contains(t, view, "Checkout crash")
}

func TestBoard_FilterCycling(t *testing.T) {
	model, api, _ := setupBoard(t)

	model, cmd := press(t, model, runes("s"))
	model = settle(t, model, cmd)
	assert.Equal(t, "Open", api.lastFilters().Status)

	model, cmd = press(t, model, runes("a"))
	model = settle(t, model, cmd)
	assert.Equal(t, dto.UnassignedSentinel, api.lastFilters().AssigneeID)

	model, cmd = press(t, model, runes("a"))
	model = settle(t, model, cmd)
	assert.Equal(t, "1", api.lastFilters().AssigneeID)

	model, cmd = press(t, model, runes("o"))
	model = settle(t, model, cmd)
	assert.Equal(t, "1", api.lastFilters().ProjectID)
	assert.Contains(t, model.View(), "MJ Mini Jira")

	before := api.calls()
	model, cmd = press(t, model, runes("x"))
	_ = settle(t, model, cmd)
	assert.Equal(t, before+1, api.calls())
	assert.Equal(t, client.TicketFilters{}, api.lastFilters())
}

func TestBoard_Search(t *testing.T) {
	model, api, _ := setupBoard(t)

	model, _ = press(t, model, runes("/"))
	model, _ = press(t, model, runes("crash"))
	assert.Equal(t, 1, api.calls(), "typing does not query")

	model, cmd := press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	model = settle(t, model, cmd)
	assert.Equal(t, "crash", api.lastFilters().Search)

	model, _ = press(t, model, runes("/"))
	model, _ = press(t, model, runes("zzz"))
	model, cmd = press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.Equal(t, "crash", model.search.Value(), "escape restores the applied search")
}

func TestBoard_CreateRequiresFields(t *testing.T) {
	model, api, _ := setupBoard(t)

	model, _ = press(t, model, runes("n"))
	require.NotNil(t, model.form)
	model, cmd := press(t, model, tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, cmd)
	assert.Contains(t, model.View(), MsgFormIncomplete)
	assert.Equal(t, fieldStatus, model.form.fieldCount(), "status is only offered when editing")
	assert.Empty(t, api.created)
}

func TestBoard_CreateTicket(t *testing.T) {
	model, api, _ := setupBoard(t)

	model, _ = press(t, model, runes("n"))
	model, _ = press(t, model, runes("Broken footer"))
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyTab})
	model, _ = press(t, model, runes("Links 404"))
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyTab})
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyRight})
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyRight})

	model, cmd := press(t, model, tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	model = settle(t, model, cmd)

	require.Len(t, api.created, 1)
	assert.Equal(t, client.NewTicket{
		Title: "Broken footer", Description: "Links 404", ProjectID: 2, Priority: "Medium",
	}, api.created[0])
	assert.Nil(t, model.form)
	assert.Equal(t, 2, api.calls(), "mutation is followed by a re-fetch")
	assert.Contains(t, model.View(), "Ticket created")
	assert.Contains(t, model.View(), "Broken footer")
}

func TestBoard_EditTicket(t *testing.T) {
	model, api, s := setupBoard(t)

	model, _ = press(t, model, runes("j"))
	model, _ = press(t, model, runes("e"))
	selected, ok := s.Selected()
	require.True(t, ok)
	assert.EqualValues(t, 1, selected.ID)
	require.NotNil(t, model.form)
	assert.True(t, model.form.editing)
	assert.Equal(t, "Login fails", model.form.title.Value())

	for i := 0; i < fieldStatus; i++ {
		model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyTab})
	}
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyRight})

	api.updateErr = &client.APIError{Status: 400, Message: "assigneeId is invalid"}
	model, cmd := press(t, model, tea.KeyMsg{Type: tea.KeyCtrlS})
	model = settle(t, model, cmd)
	require.NotNil(t, model.form, "failed save keeps the form open")
	assert.Equal(t, "assigneeId is invalid", model.form.err)
	_, ok = s.Selected()
	assert.True(t, ok)

	api.updateErr = nil
	model, cmd = press(t, model, tea.KeyMsg{Type: tea.KeyCtrlS})
	model = settle(t, model, cmd)
	require.Len(t, api.patches, 1)
	patch := api.patches[0]
	assert.Equal(t, "In Progress", *patch.Status)
	assert.True(t, patch.Assignee.Cleared())
	assert.EqualValues(t, 1, *patch.ProjectID)

	_, ok = s.Selected()
	assert.False(t, ok, "successful update clears the selection")
	assert.Nil(t, model.form)
	assert.Contains(t, model.View(), "In Progress 1")
}

func TestBoard_CancelClearsSelection(t *testing.T) {
	model, _, s := setupBoard(t)

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	_, ok := s.Selected()
	require.True(t, ok)

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	_, ok = s.Selected()
	assert.False(t, ok)
	assert.Nil(t, model.form)
	assert.Equal(t, modeList, model.mode)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
	assert.Equal(t, 5, len([]rune(truncate(strings.Repeat("é", 9), 5))))
}
