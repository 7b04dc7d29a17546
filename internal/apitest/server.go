// Package apitest runs the full API over an in-memory store for tests of its
// clients.
package apitest

import (
	"context"
	"net"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	httptransport "github.com/minijira/issue-tracker/internal/api/http"
	"github.com/minijira/issue-tracker/internal/api/http/handlers"
	"github.com/minijira/issue-tracker/internal/auth"
	"github.com/minijira/issue-tracker/internal/config"
	"github.com/minijira/issue-tracker/internal/events"
	"github.com/minijira/issue-tracker/internal/observability"
	"github.com/minijira/issue-tracker/internal/persistence"
	"github.com/minijira/issue-tracker/internal/repository/memory"
	"github.com/minijira/issue-tracker/internal/service"
)

// Seeded admin credentials.
const (
	AdminEmail    = "admin@minijira.local"
	AdminPassword = service.DefaultSeedPassword
)

// NewApp builds the API with seeded users and projects.
func NewApp(t testing.TB) *fiber.App {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	require.NoError(t, service.NewSeeder(store.Users(), store.Projects(), bcrypt.MinCost, nil).SeedDefaultsIfEmpty(ctx))

	authService := service.NewAuthService(config.AuthConfig{
		JWTSecret:             "apitest-secret",
		AccessTokenTTLMinutes: 10,
		BcryptCost:            bcrypt.MinCost,
	}, service.AuthDependencies{UserRepo: store.Users()})
	directory := service.NewDirectoryService(service.DirectoryDependencies{
		UserRepo:    store.Users(),
		ProjectRepo: store.Projects(),
	})
	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo:  store.Tickets(),
		UserRepo:    store.Users(),
		ProjectRepo: store.Projects(),
		Dispatcher:  events.NewInMemoryDispatcher(nil),
	})
	metrics := observability.NewMetrics()
	return httptransport.NewServer(httptransport.ServerConfig{
		AppName: "apitest",
		Metrics: metrics,
		Routes: httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler("issue-tracker", "test", &persistence.Postgres{}, &persistence.Redis{}, metrics),
			Auth:           handlers.NewAuthHandler(authService),
			Users:          handlers.NewUsersHandler(directory),
			Projects:       handlers.NewProjectsHandler(directory),
			Tickets:        handlers.NewTicketsHandler(tickets),
			AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), store.Users()),
		},
	})
}

// Start serves a fresh API on a loopback port until the test ends and
// returns its /api base URL.
func Start(t testing.TB) string {
	t.Helper()
	app := NewApp(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })
	return "http://" + ln.Addr().String() + "/api"
}
