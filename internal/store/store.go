// Package store holds client-side ticket state: the active filters, the last
// server-confirmed ticket list, directory lookups and the selected ticket.
package store

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/minijira/issue-tracker/internal/api/dto"
	"github.com/minijira/issue-tracker/internal/client"
	"github.com/minijira/issue-tracker/internal/domain"
)

// Fallback messages used when the server supplies none.
const (
	MsgLoadFailed    = "failed to load tickets"
	MsgSaveFailed    = "failed to save ticket"
	MsgLookupsFailed = "failed to load users and projects"
)

// TicketAPI is the subset of the API client the store depends on.
type TicketAPI interface {
	ListTickets(ctx context.Context, filters client.TicketFilters) ([]dto.TicketResponse, error)
	CreateTicket(ctx context.Context, in client.NewTicket) (*dto.TicketResponse, error)
	UpdateTicket(ctx context.Context, id int64, patch client.TicketPatch) (*dto.TicketResponse, error)
	ListUsers(ctx context.Context) ([]dto.UserResponse, error)
	ListProjects(ctx context.Context) ([]dto.ProjectResponse, error)
}

// Error is a failure surfaced to the user. Message is the server's message
// when it sent one, otherwise a generic fallback.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

func surface(err error, fallback string) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return &Error{Message: apiErr.Message, Err: err}
	}
	return &Error{Message: fallback, Err: err}
}

// ErrStale is returned by a list fetch whose response arrived after the
// response of a later fetch had already been applied.
var ErrStale = errors.New("stale ticket list response discarded")

// Option customizes a Store.
type Option func(*Store)

// WithLogger sets the logger for request failures and discarded responses.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFilters sets the initial filters without fetching.
func WithFilters(f client.TicketFilters) Option {
	return func(s *Store) { s.filters = f }
}

// Store is safe for concurrent use. Every mutation is followed by a full
// re-fetch of the filtered list; no local merge is ever performed.
type Store struct {
	api    TicketAPI
	logger *zap.Logger

	mu       sync.RWMutex
	filters  client.TicketFilters
	tickets  []dto.TicketResponse
	users    []dto.UserResponse
	projects []dto.ProjectResponse
	selected *dto.TicketResponse
	lastErr  error

	issued  uint64
	applied uint64
}

// New builds a Store over api.
func New(api TicketAPI, opts ...Option) *Store {
	s := &Store{api: api, logger: zap.NewNop(), tickets: []dto.TicketResponse{}}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoadLookups fetches all users and projects.
func (s *Store) LoadLookups(ctx context.Context) error {
	users, err := s.api.ListUsers(ctx)
	if err != nil {
		return s.fail(surface(err, MsgLookupsFailed))
	}
	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		return s.fail(surface(err, MsgLookupsFailed))
	}
	s.mu.Lock()
	s.users = users
	s.projects = projects
	s.mu.Unlock()
	return nil
}

// SetFilters stores f and re-queries when it differs from the current
// filters. Filters are kept even when the query fails. It reports whether a
// query was issued.
func (s *Store) SetFilters(ctx context.Context, f client.TicketFilters) (bool, error) {
	s.mu.Lock()
	if s.filters == f {
		s.mu.Unlock()
		return false, nil
	}
	s.filters = f
	s.mu.Unlock()
	return true, s.Refresh(ctx)
}

// Refresh re-issues the current query and replaces the list with the result.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	filters := s.filters
	s.mu.Unlock()

	tickets, err := s.api.ListTickets(ctx, filters)
	if err != nil {
		s.logger.Warn("ticket list request failed", zap.Uint64("seq", seq), zap.Error(err))
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq < s.applied {
			return ErrStale
		}
		err = surface(err, MsgLoadFailed)
		s.lastErr = err
		return err
	}
	if tickets == nil {
		tickets = []dto.TicketResponse{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		s.logger.Debug("discarding stale ticket list", zap.Uint64("seq", seq), zap.Uint64("applied", s.applied))
		return ErrStale
	}
	s.applied = seq
	s.tickets = tickets
	s.lastErr = nil
	return nil
}

// CreateTicket submits a new ticket and then re-fetches the list.
func (s *Store) CreateTicket(ctx context.Context, in client.NewTicket) (*dto.TicketResponse, error) {
	created, err := s.api.CreateTicket(ctx, in)
	if err != nil {
		s.logger.Warn("create ticket failed", zap.Error(err))
		return nil, s.fail(surface(err, MsgSaveFailed))
	}
	return created, s.refreshAfterMutation(ctx)
}

// UpdateTicket submits a partial update, clears the selection and re-fetches
// the list. On failure the selection is left as it was.
func (s *Store) UpdateTicket(ctx context.Context, id int64, patch client.TicketPatch) (*dto.TicketResponse, error) {
	updated, err := s.api.UpdateTicket(ctx, id, patch)
	if err != nil {
		s.logger.Warn("update ticket failed", zap.Int64("ticket_id", id), zap.Error(err))
		return nil, s.fail(surface(err, MsgSaveFailed))
	}
	s.ClearSelection()
	return updated, s.refreshAfterMutation(ctx)
}

func (s *Store) refreshAfterMutation(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
		return err
	}
	return nil
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = err
	s.mu.Unlock()
	return err
}

// Select marks t as the ticket being edited.
func (s *Store) Select(t dto.TicketResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = &t
}

// ClearSelection cancels editing.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
}

// Selected returns a copy of the selected ticket, if any.
func (s *Store) Selected() (dto.TicketResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return dto.TicketResponse{}, false
	}
	return *s.selected, true
}

// Filters returns the active filters.
func (s *Store) Filters() client.TicketFilters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// Tickets returns a copy of the last confirmed ticket list.
func (s *Store) Tickets() []dto.TicketResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dto.TicketResponse(nil), s.tickets...)
}

// Users returns the user lookup list.
func (s *Store) Users() []dto.UserResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dto.UserResponse(nil), s.users...)
}

// Projects returns the project lookup list.
func (s *Store) Projects() []dto.ProjectResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]dto.ProjectResponse(nil), s.projects...)
}

// LastError returns the most recent surfaced error, cleared by a successful
// list fetch.
func (s *Store) LastError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// UserName resolves an assignee id to a display name. Nil is "Unassigned".
func (s *Store) UserName(id *int64) string {
	if id == nil {
		return "Unassigned"
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.ID == *id {
			return u.Name
		}
	}
	return "Unknown"
}

// ProjectKey resolves a project id to its key.
func (s *Store) ProjectKey(id int64) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.projects {
		if p.ID == id {
			return p.Key
		}
	}
	return "?"
}

// StatusCounts tallies the current list by status.
func (s *Store) StatusCounts() map[domain.TicketStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.TicketStatus]int, len(domain.AllStatuses))
	for _, t := range s.tickets {
		counts[t.Status]++
	}
	return counts
}
