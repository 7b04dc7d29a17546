package service

import (
	"context"
	"errors"
	"strings"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository"
	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

// DirectoryService serves the user and project lookups.
type DirectoryService struct {
	users    repository.UserRepository
	projects repository.ProjectRepository
}

// DirectoryDependencies bundles repositories for directory service.
type DirectoryDependencies struct {
	UserRepo    repository.UserRepository
	ProjectRepo repository.ProjectRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(deps DirectoryDependencies) *DirectoryService {
	return &DirectoryService{users: deps.UserRepo, projects: deps.ProjectRepo}
}

// ListUsers returns users newest first.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// ListProjects returns projects newest first.
func (s *DirectoryService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.projects.List(ctx)
}

// CreateProject adds a project. Keys are stored upper-cased and must be unique.
func (s *DirectoryService) CreateProject(ctx context.Context, name, key string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	key = strings.ToUpper(strings.TrimSpace(key))
	if name == "" || key == "" {
		return nil, apperrors.NewValidationError("name and key are required", nil)
	}
	project := &domain.Project{Name: name, Key: key}
	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewConflict("project key already exists", map[string]any{"key": key})
		}
		return nil, err
	}
	return project, nil
}

// RenameProject changes a project's display name.
func (s *DirectoryService) RenameProject(ctx context.Context, id int64, name string) (*domain.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name is required", nil)
	}
	project, err := s.projects.Rename(ctx, id, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("Project", map[string]any{"id": id})
		}
		return nil, err
	}
	return project, nil
}

// DeleteProject removes a project that no ticket references.
func (s *DirectoryService) DeleteProject(ctx context.Context, id int64) (*domain.Project, error) {
	project, err := s.projects.Delete(ctx, id)
	switch {
	case err == nil:
		return project, nil
	case errors.Is(err, repository.ErrNotFound):
		return nil, apperrors.NewNotFound("Project", map[string]any{"id": id})
	case errors.Is(err, repository.ErrConflict):
		return nil, apperrors.NewConflict("project still has tickets", map[string]any{"id": id})
	default:
		return nil, err
	}
}
