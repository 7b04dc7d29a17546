// Package client is a typed HTTP client for the issue tracker API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/minijira/issue-tracker/internal/api/dto"
)

const defaultTimeout = 15 * time.Second

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status  int
	Code    string
	Message string
	Details map[string]any
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("request failed with status %d", e.Status)
}

// TicketFilters are the five list dimensions. Empty strings are unconstrained;
// AssigneeID may be "unassigned".
type TicketFilters struct {
	Search     string
	Status     string
	Priority   string
	AssigneeID string
	ProjectID  string
}

// Query encodes the non-empty filters as URL query parameters.
func (f TicketFilters) Query() url.Values {
	q := url.Values{}
	set := func(key, value string) {
		if value != "" {
			q.Set(key, value)
		}
	}
	set("search", f.Search)
	set("status", f.Status)
	set("priority", f.Priority)
	set("assigneeId", f.AssigneeID)
	set("projectId", f.ProjectID)
	return q
}

// NewTicket is the payload of a ticket creation.
type NewTicket struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectID   int64  `json:"projectId"`
	AssigneeID  *int64 `json:"assigneeId,omitempty"`
	Priority    string `json:"priority,omitempty"`
}

// TicketPatch is a partial update. Nil fields are not sent; Assignee
// distinguishes leaving the assignee alone from clearing it.
type TicketPatch struct {
	Title       *string
	Description *string
	Priority    *string
	Status      *string
	Assignee    dto.OptionalID
	ProjectID   *int64
}

func (p TicketPatch) body() map[string]any {
	body := map[string]any{}
	if p.Title != nil {
		body["title"] = *p.Title
	}
	if p.Description != nil {
		body["description"] = *p.Description
	}
	if p.Priority != nil {
		body["priority"] = *p.Priority
	}
	if p.Status != nil {
		body["status"] = *p.Status
	}
	if p.Assignee.Set {
		body["assigneeId"] = p.Assignee
	}
	if p.ProjectID != nil {
		body["projectId"] = *p.ProjectID
	}
	return body
}

// Client talks to the API over fiber's fasthttp-based agent. It is safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *fiber.Client
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithToken sets the bearer token sent on every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTimeout bounds requests whose context has no deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:4000/api".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &fiber.Client{},
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*dto.AuthResponse, error) {
	var out dto.AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, fiber.MethodPost, "/auth/login", nil, body, &out); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// ListTickets queries tickets with the given filters.
func (c *Client) ListTickets(ctx context.Context, filters TicketFilters) ([]dto.TicketResponse, error) {
	var out []dto.TicketResponse
	if err := c.do(ctx, fiber.MethodGet, "/tickets", filters.Query(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTicket fetches one ticket with its references resolved.
func (c *Client) GetTicket(ctx context.Context, id int64) (*dto.TicketDetailResponse, error) {
	var out dto.TicketDetailResponse
	if err := c.do(ctx, fiber.MethodGet, ticketPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateTicket creates a ticket.
func (c *Client) CreateTicket(ctx context.Context, in NewTicket) (*dto.TicketResponse, error) {
	var out dto.TicketResponse
	if err := c.do(ctx, fiber.MethodPost, "/tickets", nil, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTicket applies a partial update.
func (c *Client) UpdateTicket(ctx context.Context, id int64, patch TicketPatch) (*dto.TicketResponse, error) {
	var out dto.TicketResponse
	if err := c.do(ctx, fiber.MethodPatch, ticketPath(id), nil, patch.body(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteTicket deletes a ticket and returns the deleted record.
func (c *Client) DeleteTicket(ctx context.Context, id int64) (*dto.TicketResponse, error) {
	var out dto.TicketResponse
	if err := c.do(ctx, fiber.MethodDelete, ticketPath(id), nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns all users.
func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var out []dto.UserResponse
	if err := c.do(ctx, fiber.MethodGet, "/users", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]dto.ProjectResponse, error) {
	var out []dto.ProjectResponse
	if err := c.do(ctx, fiber.MethodGet, "/projects", nil, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, key string) (*dto.ProjectResponse, error) {
	var out dto.ProjectResponse
	body := map[string]string{"name": name, "key": key}
	if err := c.do(ctx, fiber.MethodPost, "/projects", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func ticketPath(id int64) string {
	return "/tickets/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var agent *fiber.Agent
	switch method {
	case fiber.MethodGet:
		agent = c.http.Get(target)
	case fiber.MethodPost:
		agent = c.http.Post(target)
	case fiber.MethodPatch:
		agent = c.http.Patch(target)
	case fiber.MethodDelete:
		agent = c.http.Delete(target)
	default:
		return fmt.Errorf("unsupported method %s", method)
	}

	agent.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if token := c.Token(); token != "" {
		agent.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	if body != nil {
		agent.JSON(body)
	}
	agent.Timeout(c.requestTimeout(ctx))

	status, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("%s %s: %w", method, path, errs[0])
	}
	if status < 200 || status >= 300 {
		return decodeAPIError(status, respBody)
	}
	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) requestTimeout(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining > 0 {
			return remaining
		}
		return time.Millisecond
	}
	return c.timeout
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	}
	return apiErr
}
