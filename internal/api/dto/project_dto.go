package dto

import (
	"time"

	"github.com/minijira/issue-tracker/internal/domain"
)

// CreateProjectRequest payload.
type CreateProjectRequest struct {
	Name string `json:"name" validate:"max=120"`
	Key  string `json:"key" validate:"omitempty,alphanum,max=10"`
}

// RenameProjectRequest payload.
type RenameProjectRequest struct {
	Name string `json:"name" validate:"max=120"`
}

// ProjectResponse is the wire form of a project.
type ProjectResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewProjectResponse maps a domain project.
func NewProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{ID: p.ID, Name: p.Name, Key: p.Key, CreatedAt: p.CreatedAt, UpdatedAt: p.UpdatedAt}
}

// NewProjectResponses maps a slice of projects.
func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, NewProjectResponse(&projects[i]))
	}
	return out
}
