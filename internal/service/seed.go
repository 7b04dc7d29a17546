package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/minijira/issue-tracker/internal/auth"
	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository"
)

// DefaultSeedPassword is the password of every seeded user.
const DefaultSeedPassword = "Password@123"

// Seeder inserts demo users and projects into empty tables.
type Seeder struct {
	users      repository.UserRepository
	projects   repository.ProjectRepository
	bcryptCost int
	logger     *zap.Logger
}

// NewSeeder constructs a seeder.
func NewSeeder(users repository.UserRepository, projects repository.ProjectRepository, bcryptCost int, logger *zap.Logger) *Seeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Seeder{users: users, projects: projects, bcryptCost: bcryptCost, logger: logger}
}

// SeedDefaultsIfEmpty seeds each table independently, only when it has no rows.
func (s *Seeder) SeedDefaultsIfEmpty(ctx context.Context) error {
	userCount, err := s.users.Count(ctx)
	if err != nil {
		return fmt.Errorf("count users: %w", err)
	}
	if userCount == 0 {
		hash, err := auth.HashPassword(DefaultSeedPassword, s.bcryptCost)
		if err != nil {
			return err
		}
		defaults := []domain.User{
			{Name: "Admin User", Email: "admin@minijira.local", Role: domain.UserRoleAdmin},
			{Name: "Jane Dev", Email: "jane@minijira.local", Role: domain.UserRoleUser},
			{Name: "John QA", Email: "john@minijira.local", Role: domain.UserRoleUser},
		}
		for i := range defaults {
			defaults[i].PasswordHash = hash
			if err := s.users.Create(ctx, &defaults[i]); err != nil {
				return fmt.Errorf("seed user %s: %w", defaults[i].Email, err)
			}
		}
		s.logger.Info("seeded default users", zap.Int("count", len(defaults)))
	}

	projectCount, err := s.projects.Count(ctx)
	if err != nil {
		return fmt.Errorf("count projects: %w", err)
	}
	if projectCount == 0 {
		defaults := []domain.Project{
			{Name: "Mini Jira", Key: "MJ"},
			{Name: "Website Revamp", Key: "WEB"},
		}
		for i := range defaults {
			if err := s.projects.Create(ctx, &defaults[i]); err != nil {
				return fmt.Errorf("seed project %s: %w", defaults[i].Key, err)
			}
		}
		s.logger.Info("seeded default projects", zap.Int("count", len(defaults)))
	}
	return nil
}
