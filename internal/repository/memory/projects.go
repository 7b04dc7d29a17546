package memory

import (
	"context"
	"sort"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository"
)

type projectRepo struct {
	s *Store
}

func (r *projectRepo) Create(_ context.Context, project *domain.Project) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.projects {
		if existing.Key == project.Key {
			return repository.ErrConflict
		}
	}
	r.s.nextProjectID++
	now := r.s.now()
	project.ID = r.s.nextProjectID
	project.CreatedAt = now
	project.UpdatedAt = now
	r.s.projects[project.ID] = *project
	return nil
}

func (r *projectRepo) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (r *projectRepo) List(_ context.Context) ([]domain.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		result = append(result, p)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *projectRepo) Rename(_ context.Context, id int64, name string) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Name = name
	p.UpdatedAt = r.s.now()
	r.s.projects[id] = p
	return &p, nil
}

func (r *projectRepo) Delete(_ context.Context, id int64) (*domain.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	for _, t := range r.s.tickets {
		if t.ProjectID == id {
			return nil, repository.ErrConflict
		}
	}
	delete(r.s.projects, id)
	return &p, nil
}

func (r *projectRepo) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.projects), nil
}
