package memory

import (
	"context"
	"sort"
	"time"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository"
)

type ticketRepo struct {
	s *Store
}

func (r *ticketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.projects[ticket.ProjectID]; !ok {
		return repository.ErrConflict
	}
	if ticket.AssigneeID != nil {
		if _, ok := r.s.users[*ticket.AssigneeID]; !ok {
			return repository.ErrConflict
		}
	}
	r.s.nextTicketID++
	ticket.ID = r.s.nextTicketID
	r.s.tickets[ticket.ID] = cloneTicket(*ticket)
	return nil
}

func (r *ticketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneTicket(t)
	return &out, nil
}

func (r *ticketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := []domain.Ticket{}
	for _, t := range r.s.tickets {
		if filter.Matches(t) {
			result = append(result, cloneTicket(t))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].UpdatedAt.Equal(result[j].UpdatedAt) {
			return result[i].UpdatedAt.After(result[j].UpdatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *ticketRepo) Update(_ context.Context, id int64, changes repository.TicketChanges, at time.Time) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if changes.ProjectID != nil {
		if _, ok := r.s.projects[*changes.ProjectID]; !ok {
			return nil, repository.ErrConflict
		}
	}
	if changes.AssigneeSet && changes.AssigneeID != nil {
		if _, ok := r.s.users[*changes.AssigneeID]; !ok {
			return nil, repository.ErrConflict
		}
	}

	changes.Apply(&t)
	if at.After(t.UpdatedAt) {
		t.UpdatedAt = at
	} else {
		t.UpdatedAt = t.UpdatedAt.Add(time.Microsecond)
	}
	r.s.tickets[id] = t
	out := cloneTicket(t)
	return &out, nil
}

func (r *ticketRepo) Delete(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(r.s.tickets, id)
	out := cloneTicket(t)
	return &out, nil
}
