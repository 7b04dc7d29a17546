// Package memory provides map-backed repositories used when no Postgres DSN
// is configured, and by tests.
package memory

import (
	"sync"
	"time"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository"
)

// Store holds every table behind one lock so cross-table checks (a project
// still referenced by tickets) see a consistent view.
type Store struct {
	mu       sync.RWMutex
	tickets  map[int64]domain.Ticket
	users    map[int64]domain.User
	projects map[int64]domain.Project

	nextTicketID  int64
	nextUserID    int64
	nextProjectID int64

	now func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		tickets:  make(map[int64]domain.Ticket),
		users:    make(map[int64]domain.User),
		projects: make(map[int64]domain.Project),
		now:      time.Now,
	}
}

// Tickets returns the ticket repository view.
func (s *Store) Tickets() repository.TicketRepository { return &ticketRepo{s: s} }

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepo{s: s} }

// Projects returns the project repository view.
func (s *Store) Projects() repository.ProjectRepository { return &projectRepo{s: s} }

func cloneTicket(t domain.Ticket) domain.Ticket {
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		t.AssigneeID = &id
	}
	return t
}
