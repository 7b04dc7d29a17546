package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/client"
	"github.com/minijira/issue-tracker/internal/domain"
)

// MsgFormIncomplete is shown, without sending a request, when a required
// field is empty.
const MsgFormIncomplete = "Title, description and project are required."

const (
	fieldTitle = iota
	fieldDescription
	fieldProject
	fieldAssignee
	fieldPriority
	fieldStatus
)

// ticketForm creates a ticket, or edits the selected one when editing is set.
// Status is only offered while editing.
type ticketForm struct {
	editing  bool
	ticketID int64

	title       textinput.Model
	description textinput.Model
	project     choice
	assignee    choice
	priority    choice
	status      choice

	focus int
	err   string
}

func newTextInput(placeholder string, limit int) textinput.Model {
	input := textinput.New()
	input.Placeholder = placeholder
	input.CharLimit = limit
	input.Prompt = ""
	return input
}

func newTicketForm(users []dto.UserResponse, projects []dto.ProjectResponse) *ticketForm {
	f := &ticketForm{
		title:       newTextInput("Short summary", 200),
		description: newTextInput("What happened?", 2000),
		project:     choice{name: "Project", options: projectOptions(LabelNone, projects)},
		assignee:    choice{name: "Assignee", options: assigneeFormOptions(users)},
		priority:    choice{name: "Priority", options: priorityOptions("")},
		status:      choice{name: "Status", options: statusOptions("")},
	}
	f.priority.selectValue(string(domain.TicketPriorityMedium))
	f.focusField(fieldTitle)
	return f
}

func editTicketForm(t dto.TicketResponse, users []dto.UserResponse, projects []dto.ProjectResponse) *ticketForm {
	f := newTicketForm(users, projects)
	f.editing = true
	f.ticketID = t.ID
	f.title.SetValue(t.Title)
	f.description.SetValue(t.Description)
	f.project.selectValue(strconv.FormatInt(t.ProjectID, 10))
	if t.AssigneeID != nil {
		f.assignee.selectValue(strconv.FormatInt(*t.AssigneeID, 10))
	}
	f.priority.selectValue(string(t.Priority))
	f.status.selectValue(string(t.Status))
	return f
}

func (f *ticketForm) fieldCount() int {
	if f.editing {
		return fieldStatus + 1
	}
	return fieldStatus
}

func (f *ticketForm) focusField(field int) {
	f.focus = field
	f.title.Blur()
	f.description.Blur()
	switch field {
	case fieldTitle:
		f.title.Focus()
	case fieldDescription:
		f.description.Focus()
	}
}

func (f *ticketForm) nextField() {
	f.focusField((f.focus + 1) % f.fieldCount())
}

func (f *ticketForm) prevField() {
	f.focusField((f.focus - 1 + f.fieldCount()) % f.fieldCount())
}

// focusedChoice returns the select under focus, or nil on a text field.
func (f *ticketForm) focusedChoice() *choice {
	switch f.focus {
	case fieldProject:
		return &f.project
	case fieldAssignee:
		return &f.assignee
	case fieldPriority:
		return &f.priority
	case fieldStatus:
		return &f.status
	}
	return nil
}

func (f *ticketForm) complete() bool {
	return strings.TrimSpace(f.title.Value()) != "" &&
		strings.TrimSpace(f.description.Value()) != "" &&
		f.project.value() != ""
}

func (f *ticketForm) projectID() int64 {
	id, _ := strconv.ParseInt(f.project.value(), 10, 64)
	return id
}

func (f *ticketForm) assigneeID() *int64 {
	if f.assignee.value() == "" {
		return nil
	}
	id, err := strconv.ParseInt(f.assignee.value(), 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func (f *ticketForm) newTicket() client.NewTicket {
	return client.NewTicket{
		Title:       strings.TrimSpace(f.title.Value()),
		Description: strings.TrimSpace(f.description.Value()),
		ProjectID:   f.projectID(),
		AssigneeID:  f.assigneeID(),
		Priority:    f.priority.value(),
	}
}

// patch sends every field, clearing the assignee when none is chosen.
func (f *ticketForm) patch() client.TicketPatch {
	title := strings.TrimSpace(f.title.Value())
	description := strings.TrimSpace(f.description.Value())
	priority := f.priority.value()
	status := f.status.value()
	projectID := f.projectID()

	assignee := dto.ClearedID()
	if id := f.assigneeID(); id != nil {
		assignee = dto.NewOptionalID(*id)
	}
	return client.TicketPatch{
		Title:       &title,
		Description: &description,
		Priority:    &priority,
		Status:      &status,
		Assignee:    assignee,
		ProjectID:   &projectID,
	}
}
