package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/minijira/issue-tracker/internal/domain"
	"github.com/minijira/issue-tracker/internal/repository/memory"
	apperrors "github.com/minijira/issue-tracker/pkg/util"
)

func TestDirectoryService_Projects(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	svc := NewDirectoryService(DirectoryDependencies{UserRepo: store.Users(), ProjectRepo: store.Projects()})

	project, err := svc.CreateProject(ctx, " Mini Jira ", "mj")
	require.NoError(t, err)
	assert.Equal(t, "Mini Jira", project.Name)
	assert.Equal(t, "MJ", project.Key)

	t.Run("name and key required", func(t *testing.T) {
		_, err := svc.CreateProject(ctx, "", "X")
		requireDomainError(t, err, apperrors.CodeValidation, "name and key are required")
	})

	t.Run("duplicate key", func(t *testing.T) {
		_, err := svc.CreateProject(ctx, "Another", "MJ")
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
	})

	t.Run("rename", func(t *testing.T) {
		renamed, err := svc.RenameProject(ctx, project.ID, "Jira Lite")
		require.NoError(t, err)
		assert.Equal(t, "Jira Lite", renamed.Name)

		_, err = svc.RenameProject(ctx, 999, "x")
		requireDomainError(t, err, apperrors.CodeNotFound, "Project not found")
	})

	t.Run("delete refused while tickets reference it", func(t *testing.T) {
		ticket := &domain.Ticket{Title: "t", Description: "d", ProjectID: project.ID}
		require.NoError(t, store.Tickets().Create(ctx, ticket))

		_, err := svc.DeleteProject(ctx, project.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))

		_, err = store.Tickets().Delete(ctx, ticket.ID)
		require.NoError(t, err)
		deleted, err := svc.DeleteProject(ctx, project.ID)
		require.NoError(t, err)
		assert.Equal(t, project.ID, deleted.ID)

		_, err = svc.DeleteProject(ctx, project.ID)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
	})
}

func TestSeeder(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seeder := NewSeeder(store.Users(), store.Projects(), bcrypt.MinCost, nil)

	require.NoError(t, seeder.SeedDefaultsIfEmpty(ctx))
	require.NoError(t, seeder.SeedDefaultsIfEmpty(ctx))

	users, err := store.Users().List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)

	projects, err := store.Projects().List(ctx)
	require.NoError(t, err)
	require.Len(t, projects, 2)

	keys := []string{projects[0].Key, projects[1].Key}
	assert.ElementsMatch(t, []string{"MJ", "WEB"}, keys)

	admin, err := store.Users().GetByEmail(ctx, "admin@minijira.local")
	require.NoError(t, err)
	assert.Equal(t, domain.UserRoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(DefaultSeedPassword)))
}
