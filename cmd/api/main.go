package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/ericlong128/reimbursement-service/internal/api/http"
	"github.com/ericlong128/reimbursement-service/internal/api/http/handlers"
	"github.com/ericlong128/reimbursement-service/internal/auth"
	"github.com/ericlong128/reimbursement-service/internal/config"
	"github.com/ericlong128/reimbursement-service/internal/events"
	"github.com/ericlong128/reimbursement-service/internal/observability"
	"github.com/ericlong128/reimbursement-service/internal/persistence"
	"github.com/ericlong128/reimbursement-service/internal/repository"
	"github.com/ericlong128/reimbursement-service/internal/secrets"
	"github.com/ericlong128/reimbursement-service/internal/service"
	"github.com/ericlong128/reimbursement-service/internal/worker"
)

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

	var secretSource secrets.Source
	if cfg.Auth.SecretSource == "redis" {
		secretSource = secrets.NewRedisSource(redis.Client, cfg.Auth.SecretRedisKey)
	} else {
		secretSource = secrets.NewEnvSource(cfg.Auth.JWTSecret)
	}
	secretProvider, err := secrets.NewCachedProvider(ctx, secretSource, cfg.Auth.SecretRefreshInterval(), logger)
	if err != nil {
		logger.Fatal("failed to load signing secret", zap.Error(err))
	}
	defer secretProvider.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	tokenMgr := auth.NewTokenManager(secretProvider, cfg.Auth.AccessTokenTTLMinutes)

	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		TokenMgr:   tokenMgr,
		Dispatcher: dispatcher,
		Logger:     logger,
		BcryptCost: cfg.Auth.BcryptCost,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	auditService := service.NewAuditService(dispatcher, logger)
	worker.StartAuditWorker(auditService)

	authMiddleware := auth.NewAuthMiddleware(tokenMgr)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
