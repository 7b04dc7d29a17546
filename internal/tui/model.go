// Package tui is the terminal ticket board: status chips, a filter bar, the
// ticket table and a create/edit form, all driven by a store.Store.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/client"
	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/store"
)

type mode int

const (
	modeList mode = iota
	modeSearch
	modeForm
)

type lookupsLoadedMsg struct{ err error }

type ticketsLoadedMsg struct{ err error }

// ticketSavedMsg reports a create or update. saved is false only when the
// mutation itself failed; err may still carry a failed re-fetch.
type ticketSavedMsg struct {
	saved   bool
	editing bool
	err     error
}

// Model is the bubbletea model of the board.
type Model struct {
	ctx   context.Context
	store *store.Store
	keys  KeyMap
	theme Theme

	mode   mode
	cursor int
	width  int
	height int

	search   textinput.Model
	status   choice
	priority choice
	assignee choice
	project  choice

	form    *ticketForm
	saving  bool
	loading bool
	notice  string
	err     string
}

// NewModel builds a board over s. ctx bounds every request it issues.
func NewModel(ctx context.Context, s *store.Store) Model {
	search := newTextInput("title or description", 200)
	search.SetValue(s.Filters().Search)

	model := Model{
		ctx:      ctx,
		store:    s,
		keys:     DefaultKeyMap,
		theme:    DefaultTheme,
		search:   search,
		status:   choice{name: "Status", options: statusOptions(LabelAny)},
		priority: choice{name: "Priority", options: priorityOptions(LabelAny)},
		assignee: choice{name: "Assignee", options: assigneeFilterOptions(nil)},
		project:  choice{name: "Project", options: projectOptions(LabelAny, nil)},
		loading:  true,
	}
	filters := s.Filters()
	model.status.selectValue(filters.Status)
	model.priority.selectValue(filters.Priority)
	model.assignee.selectValue(filters.AssigneeID)
	model.project.selectValue(filters.ProjectID)
	return model
}

// Init loads the lookups and the first ticket page.
func (model Model) Init() tea.Cmd {
	return tea.Batch(model.loadLookups(), model.refresh())
}

func (model Model) loadLookups() tea.Cmd {
	s, ctx := model.store, model.ctx
	return func() tea.Msg {
		return lookupsLoadedMsg{err: s.LoadLookups(ctx)}
	}
}

func (model Model) refresh() tea.Cmd {
	s, ctx := model.store, model.ctx
	return func() tea.Msg {
		return ticketsLoadedMsg{err: s.Refresh(ctx)}
	}
}

// applyFilters pushes the filter bar into the store, which re-queries only
// when something changed.
func (model Model) applyFilters() tea.Cmd {
	s, ctx, filters := model.store, model.ctx, model.filters()
	return func() tea.Msg {
		issued, err := s.SetFilters(ctx, filters)
		if !issued && err == nil {
			return nil
		}
		return ticketsLoadedMsg{err: err}
	}
}

func (model Model) save(form *ticketForm) tea.Cmd {
	s, ctx := model.store, model.ctx
	if form.editing {
		id, patch := form.ticketID, form.patch()
		return func() tea.Msg {
			updated, err := s.UpdateTicket(ctx, id, patch)
			return ticketSavedMsg{saved: updated != nil, editing: true, err: err}
		}
	}
	in := form.newTicket()
	return func() tea.Msg {
		created, err := s.CreateTicket(ctx, in)
		return ticketSavedMsg{saved: created != nil, err: err}
	}
}

func (model Model) filters() client.TicketFilters {
	return client.TicketFilters{
		Search:     strings.TrimSpace(model.search.Value()),
		Status:     model.status.value(),
		Priority:   model.priority.value(),
		AssigneeID: model.assignee.value(),
		ProjectID:  model.project.value(),
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		return model, nil

	case lookupsLoadedMsg:
		if message.err != nil {
			model.err = message.err.Error()
			return model, nil
		}
		model.assignee.setOptions(assigneeFilterOptions(model.store.Users()))
		model.project.setOptions(projectOptions(LabelAny, model.store.Projects()))
		return model, nil

	case ticketsLoadedMsg:
		model.loading = false
		switch {
		case errors.Is(message.err, store.ErrStale):
		case message.err != nil:
			model.err = message.err.Error()
		default:
			model.err = ""
		}
		model.clampCursor()
		return model, nil

	case ticketSavedMsg:
		return model.handleSaved(message)

	case tea.KeyMsg:
		if message.String() == "ctrl+c" {
			return model, tea.Quit
		}
		switch model.mode {
		case modeSearch:
			return model.handleSearchKeys(message)
		case modeForm:
			return model.handleFormKeys(message)
		default:
			return model.handleListKeys(message)
		}
	}
	return model, nil
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	tickets := model.store.Tickets()
	switch {
	case key.Matches(message, model.keys.Quit):
		return model, tea.Quit
	case key.Matches(message, model.keys.Up):
		if model.cursor > 0 {
			model.cursor--
		}
	case key.Matches(message, model.keys.Down):
		if model.cursor < len(tickets)-1 {
			model.cursor++
		}
	case key.Matches(message, model.keys.Search):
		model.mode = modeSearch
		model.search.Focus()
	case key.Matches(message, model.keys.CycleStatus):
		model.status.next()
		return model, model.applyFilters()
	case key.Matches(message, model.keys.CyclePriority):
		model.priority.next()
		return model, model.applyFilters()
	case key.Matches(message, model.keys.CycleAssignee):
		model.assignee.next()
		return model, model.applyFilters()
	case key.Matches(message, model.keys.CycleProject):
		model.project.next()
		return model, model.applyFilters()
	case key.Matches(message, model.keys.ClearFilters):
		model.search.SetValue("")
		model.status.index = 0
		model.priority.index = 0
		model.assignee.index = 0
		model.project.index = 0
		return model, model.applyFilters()
	case key.Matches(message, model.keys.Refresh):
		model.loading = true
		return model, model.refresh()
	case key.Matches(message, model.keys.New):
		model.notice = ""
		model.form = newTicketForm(model.store.Users(), model.store.Projects())
		model.mode = modeForm
	case key.Matches(message, model.keys.Edit):
		if model.cursor < len(tickets) {
			selected := tickets[model.cursor]
			model.store.Select(selected)
			model.notice = ""
			model.form = editTicketForm(selected, model.store.Users(), model.store.Projects())
			model.mode = modeForm
		}
	}
	return model, nil
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.search.SetValue(model.store.Filters().Search)
		model.search.Blur()
		model.mode = modeList
		return model, nil
	case tea.KeyEnter:
		model.search.Blur()
		model.mode = modeList
		return model, model.applyFilters()
	}
	var cmd tea.Cmd
	model.search, cmd = model.search.Update(message)
	return model, cmd
}

func (model Model) handleFormKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	form := model.form
	if form == nil {
		model.mode = modeList
		return model, nil
	}
	if model.saving {
		return model, nil
	}

	switch {
	case key.Matches(message, model.keys.Cancel):
		model.form = nil
		model.mode = modeList
		model.store.ClearSelection()
		return model, nil
	case key.Matches(message, model.keys.Submit):
		if !form.complete() {
			form.err = MsgFormIncomplete
			return model, nil
		}
		form.err = ""
		model.saving = true
		return model, model.save(form)
	case key.Matches(message, model.keys.NextField):
		form.nextField()
		return model, nil
	case key.Matches(message, model.keys.PrevField):
		form.prevField()
		return model, nil
	}

	if selected := form.focusedChoice(); selected != nil {
		switch {
		case key.Matches(message, model.keys.OptionNext):
			selected.next()
		case key.Matches(message, model.keys.OptionPrev):
			selected.prev()
		}
		return model, nil
	}

	var cmd tea.Cmd
	switch form.focus {
	case fieldTitle:
		form.title, cmd = form.title.Update(message)
	case fieldDescription:
		form.description, cmd = form.description.Update(message)
	}
	return model, cmd
}

func (model Model) handleSaved(message ticketSavedMsg) (tea.Model, tea.Cmd) {
	model.saving = false
	if !message.saved {
		if model.form != nil && message.err != nil {
			model.form.err = message.err.Error()
		}
		return model, nil
	}

	model.form = nil
	model.mode = modeList
	model.loading = false
	if message.editing {
		model.notice = "Ticket updated"
	} else {
		model.notice = "Ticket created"
	}
	switch {
	case message.err != nil:
		model.err = message.err.Error()
	default:
		model.err = ""
	}
	model.clampCursor()
	return model, nil
}

func (model *Model) clampCursor() {
	count := len(model.store.Tickets())
	if model.cursor >= count {
		model.cursor = count - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}
}

// View implements tea.Model.
func (model Model) View() string {
	sections := []string{model.renderHeader(), model.renderFilterBar()}
	if model.mode == modeForm && model.form != nil {
		sections = append(sections, model.renderForm())
	} else {
		sections = append(sections, model.renderTable())
	}
	sections = append(sections, model.renderFooter())
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (model Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground)
	counts := model.store.StatusCounts()
	parts := []string{titleStyle.Render("Tickets"), "  "}
	for _, status := range []domain.TicketStatus{
		domain.TicketStatusOpen,
		domain.TicketStatusInProgress,
		domain.TicketStatusResolved,
	} {
		chipStyle := lipgloss.NewStyle().
			Foreground(model.theme.StatusColor(status)).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(model.theme.BorderColor).
			Padding(0, 1)
		parts = append(parts, chipStyle.Render(fmt.Sprintf("%s %d", status, counts[status])))
	}
	return lipgloss.JoinHorizontal(lipgloss.Center, parts...)
}

func (model Model) renderFilterBar() string {
	labelStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	valueStyle := lipgloss.NewStyle().Foreground(model.theme.NormalText).Bold(true)

	search := model.search.View()
	if model.mode != modeSearch && model.search.Value() == "" {
		search = labelStyle.Render("(none)")
	}
	parts := []string{labelStyle.Render("Search: ") + search}
	for _, c := range []choice{model.status, model.priority, model.assignee, model.project} {
		parts = append(parts, labelStyle.Render(c.name+": ")+valueStyle.Render(c.label()))
	}
	return strings.Join(parts, "   ")
}

func (model Model) renderTable() string {
	tickets := model.store.Tickets()
	if len(tickets) == 0 {
		text := "No tickets match the current filters."
		if model.loading {
			text = "Loading tickets..."
		}
		return lipgloss.NewStyle().Foreground(model.theme.FaintText).Padding(1, 2).Render(text)
	}

	rows := make([][]string, 0, len(tickets))
	for _, t := range tickets {
		rows = append(rows, model.ticketRow(t))
	}
	theme := model.theme
	cursor := model.cursor
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.BorderColor)).
		Headers("Project", "Title", "Assignee", "Priority", "Status", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			style := lipgloss.NewStyle().Padding(0, 1)
			if row == table.HeaderRow {
				return style.Bold(true).Foreground(theme.HeaderForeground)
			}
			if row == cursor {
				style = style.Background(theme.SelectedBackground).Foreground(theme.SelectedForeground)
			}
			switch col {
			case 3:
				return style.Foreground(theme.PriorityColor(tickets[row].Priority))
			case 4:
				return style.Foreground(theme.StatusColor(tickets[row].Status))
			}
			return style
		}).
		String()
}

func (model Model) ticketRow(t dto.TicketResponse) []string {
	return []string{
		model.store.ProjectKey(t.ProjectID),
		truncate(t.Title, 48),
		model.store.UserName(t.AssigneeID),
		string(t.Priority),
		string(t.Status),
		t.UpdatedAt.Local().Format("2006-01-02 15:04"),
	}
}

func (model Model) renderForm() string {
	form := model.form
	labelStyle := lipgloss.NewStyle().Width(13).Foreground(model.theme.FaintText)
	focusStyle := labelStyle.Foreground(model.theme.HeaderForeground).Bold(true)

	heading := "New ticket"
	if form.editing {
		heading = fmt.Sprintf("Edit ticket #%d", form.ticketID)
	}
	lines := []string{lipgloss.NewStyle().Bold(true).Render(heading), ""}

	label := func(field int, text string) string {
		if form.focus == field {
			return focusStyle.Render("> " + text)
		}
		return labelStyle.Render("  " + text)
	}
	lines = append(lines,
		label(fieldTitle, "Title")+form.title.View(),
		label(fieldDescription, "Description")+form.description.View(),
		label(fieldProject, "Project")+"‹ "+form.project.label()+" ›",
		label(fieldAssignee, "Assignee")+"‹ "+form.assignee.label()+" ›",
		label(fieldPriority, "Priority")+"‹ "+form.priority.label()+" ›",
	)
	if form.editing {
		lines = append(lines, label(fieldStatus, "Status")+"‹ "+form.status.label()+" ›")
	}
	if form.err != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(model.theme.ErrorText).Render(form.err))
	}
	if model.saving {
		lines = append(lines, "", "Saving...")
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(model.theme.BorderColor).
		Padding(0, 1).
		Render(strings.Join(lines, "\n"))
}

func (model Model) renderFooter() string {
	lines := []string{}
	if model.err != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.ErrorText).Render(model.err))
	} else if model.notice != "" {
		lines = append(lines, lipgloss.NewStyle().Foreground(model.theme.StatusOpen).Render(model.notice))
	}

	var bindings []key.Binding
	switch model.mode {
	case modeForm:
		bindings = []key.Binding{model.keys.NextField, model.keys.OptionNext, model.keys.Submit, model.keys.Cancel}
	case modeSearch:
		bindings = []key.Binding{
			key.NewBinding(key.WithHelp("Enter", "apply")),
			model.keys.Cancel,
		}
	default:
		bindings = []key.Binding{
			model.keys.Up, model.keys.Down, model.keys.Search, model.keys.CycleStatus,
			model.keys.CyclePriority, model.keys.CycleAssignee, model.keys.CycleProject,
			model.keys.ClearFilters, model.keys.New, model.keys.Edit, model.keys.Refresh, model.keys.Quit,
		}
	}
	helpStyle := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		help := b.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	lines = append(lines, helpStyle.Render(strings.Join(parts, " • ")))
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

// Run starts the board full screen and blocks until the user quits.
func Run(ctx context.Context, s *store.Store) error {
	program := tea.NewProgram(NewModel(ctx, s), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}
