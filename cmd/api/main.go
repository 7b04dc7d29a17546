package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/minijira/issue-tracker/internal/api/http"
	"github.com/minijira/issue-tracker/internal/api/http/handlers"
	"github.com/minijira/issue-tracker/internal/auth"
	"github.com/minijira/issue-tracker/internal/config"
	"github.com/minijira/issue-tracker/internal/events"
	"github.com/minijira/issue-tracker/internal/observability"
	"github.com/minijira/issue-tracker/internal/persistence"
	"github.com/minijira/issue-tracker/internal/repository"
	"github.com/minijira/issue-tracker/internal/repository/memory"
	"github.com/minijira/issue-tracker/internal/service"
	"github.com/minijira/issue-tracker/internal/worker"
)

type repositories struct {
	tickets  repository.TicketRepository
	users    repository.UserRepository
	projects repository.ProjectRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	repos := newRepositories(pg)

	if cfg.App.SeedDefaults {
		seeder := service.NewSeeder(repos.users, repos.projects, cfg.Auth.BcryptCost, logger)
		if err := seeder.SeedDefaultsIfEmpty(ctx); err != nil {
			logger.Fatal("failed to seed defaults", zap.Error(err))
		}
	}

	dispatcher := events.NewInMemoryDispatcher(logger)
	notifications := service.NewNotificationService(service.NotificationDependencies{
		Dispatcher: dispatcher,
		Publisher:  publisherFor(redis),
		Channel:    cfg.Redis.EventsChannel,
		Logger:     logger,
		Config:     cfg.Notification,
	})
	worker.StartNotificationWorker(notifications)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{UserRepo: repos.users})
	directoryService := service.NewDirectoryService(service.DirectoryDependencies{
		UserRepo:    repos.users,
		ProjectRepo: repos.projects,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:            repos.tickets,
		UserRepo:              repos.users,
		ProjectRepo:           repos.projects,
		Dispatcher:            dispatcher,
		CaseInsensitiveSearch: cfg.Search.CaseInsensitive,
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewServer(httptransport.ServerConfig{
		AppName: cfg.App.Name,
		Logger:  logger,
		Metrics: metrics,
		Middleware: httptransport.MiddlewareConfig{
			Timeout:          cfg.App.RequestTimeout(),
			CORSAllowOrigins: cfg.App.CORSAllowOrigins,
		},
		Routes: httptransport.RouteConfig{
			Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
			Auth:           handlers.NewAuthHandler(authService),
			Users:          handlers.NewUsersHandler(directoryService),
			Projects:       handlers.NewProjectsHandler(directoryService),
			Tickets:        handlers.NewTicketsHandler(ticketService),
			AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.users),
		},
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func newRepositories(pg *persistence.Postgres) repositories {
	if !pg.Enabled() {
		store := memory.NewStore()
		return repositories{tickets: store.Tickets(), users: store.Users(), projects: store.Projects()}
	}
	pool := pg.PoolHandle()
	return repositories{
		tickets:  repository.NewTicketRepository(pool),
		users:    repository.NewUserRepository(pool),
		projects: repository.NewProjectRepository(pool),
	}
}

// publisherFor returns nil when Redis is disabled so the interface stays nil.
func publisherFor(r *persistence.Redis) service.EventPublisher {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
