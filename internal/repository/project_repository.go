package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minijira/issue-tracker/internal/domain"
)

// ProjectRepository manages project persistence.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	GetByID(ctx context.Context, id int64) (*domain.Project, error)
	List(ctx context.Context) ([]domain.Project, error)
	Rename(ctx context.Context, id int64, name string) (*domain.Project, error)
	// Delete fails with ErrConflict while tickets still reference the project.
	Delete(ctx context.Context, id int64) (*domain.Project, error)
	Count(ctx context.Context) (int, error)
}

type projectRepository struct {
	pool *pgxpool.Pool
}

// NewProjectRepository builds the repository.
func NewProjectRepository(pool *pgxpool.Pool) ProjectRepository {
	return &projectRepository{pool: pool}
}

const projectColumns = `id, name, key, created_at, updated_at`

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	const query = `
        INSERT INTO projects (name, key)
        VALUES ($1,$2)
        RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		project.Name,
		project.Key,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
	return mapPgError(err)
}

func (r *projectRepository) GetByID(ctx context.Context, id int64) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id=$1`
	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return project, nil
}

func (r *projectRepository) List(ctx context.Context) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects ORDER BY created_at DESC, id DESC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Project{}
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *project)
	}
	return result, rows.Err()
}

func (r *projectRepository) Rename(ctx context.Context, id int64, name string) (*domain.Project, error) {
	query := `UPDATE projects SET name=$1, updated_at=NOW() WHERE id=$2 RETURNING ` + projectColumns
	project, err := scanProject(r.pool.QueryRow(ctx, query, name, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return project, nil
}

func (r *projectRepository) Delete(ctx context.Context, id int64) (*domain.Project, error) {
	query := `DELETE FROM projects WHERE id=$1 RETURNING ` + projectColumns
	project, err := scanProject(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPgError(err)
	}
	return project, nil
}

func (r *projectRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM projects`).Scan(&n)
	return n, err
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Name,
		&project.Key,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &project, nil
}
