package repository

import (
	"fmt"
	"strings"

	"github.com/minijira/issue-tracker/internal/domain"
)

// AssigneeMode selects how the assignee dimension is filtered.
type AssigneeMode int

const (
	// AssigneeAny applies no assignee constraint.
	AssigneeAny AssigneeMode = iota
	// AssigneeUnassigned matches tickets with no assignee.
	AssigneeUnassigned
	// AssigneeExact matches tickets assigned to AssigneeFilter.ID.
	AssigneeExact
)

// AssigneeFilter is the three-state assignee criterion.
type AssigneeFilter struct {
	Mode AssigneeMode
	ID   int64
}

// TicketFilter captures the conjunctive ticket search criteria.
// Nil fields mean "any".
type TicketFilter struct {
	SearchTerm      *string
	Status          *domain.TicketStatus
	Priority        *domain.TicketPriority
	Assignee        AssigneeFilter
	ProjectID       *int64
	CaseInsensitive bool
}

// Matches evaluates the filter against a ticket in memory. It must agree
// with the SQL produced by whereClauses.
func (f TicketFilter) Matches(t domain.Ticket) bool {
	if term, ok := f.search(); ok {
		title, desc := t.Title, t.Description
		if f.CaseInsensitive {
			term = strings.ToLower(term)
			title = strings.ToLower(title)
			desc = strings.ToLower(desc)
		}
		if !strings.Contains(title, term) && !strings.Contains(desc, term) {
			return false
		}
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	switch f.Assignee.Mode {
	case AssigneeUnassigned:
		if t.AssigneeID != nil {
			return false
		}
	case AssigneeExact:
		if t.AssigneeID == nil || *t.AssigneeID != f.Assignee.ID {
			return false
		}
	}
	if f.ProjectID != nil && t.ProjectID != *f.ProjectID {
		return false
	}
	return true
}

func (f TicketFilter) search() (string, bool) {
	if f.SearchTerm == nil || *f.SearchTerm == "" {
		return "", false
	}
	return *f.SearchTerm, true
}

// whereClauses renders the filter as AND-ed SQL clauses with positional args.
func (f TicketFilter) whereClauses() ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if term, ok := f.search(); ok {
		args = append(args, "%"+escapeLike(term)+"%")
		placeholder := fmt.Sprintf("$%d", len(args))
		op := "LIKE"
		if f.CaseInsensitive {
			op = "ILIKE"
		}
		clauses = append(clauses, fmt.Sprintf("(title %s %s OR description %s %s)", op, placeholder, op, placeholder))
	}
	if f.Status != nil {
		args = append(args, string(*f.Status))
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if f.Priority != nil {
		args = append(args, string(*f.Priority))
		clauses = append(clauses, fmt.Sprintf("priority=$%d", len(args)))
	}
	switch f.Assignee.Mode {
	case AssigneeUnassigned:
		clauses = append(clauses, "assignee_id IS NULL")
	case AssigneeExact:
		args = append(args, f.Assignee.ID)
		clauses = append(clauses, fmt.Sprintf("assignee_id=$%d", len(args)))
	}
	if f.ProjectID != nil {
		args = append(args, *f.ProjectID)
		clauses = append(clauses, fmt.Sprintf("project_id=$%d", len(args)))
	}
	return clauses, args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes LIKE wildcards in user input match literally.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}
