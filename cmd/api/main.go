package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/contact-gateway/internal/api/http"
	"github.com/spec-kit/contact-gateway/internal/api/http/handlers"
	"github.com/spec-kit/contact-gateway/internal/auth"
	"github.com/spec-kit/contact-gateway/internal/config"
	"github.com/spec-kit/contact-gateway/internal/events"
	"github.com/spec-kit/contact-gateway/internal/gateway"
	"github.com/spec-kit/contact-gateway/internal/messaging"
	"github.com/spec-kit/contact-gateway/internal/observability"
	"github.com/spec-kit/contact-gateway/internal/persistence"
	"github.com/spec-kit/contact-gateway/internal/repository"
	"github.com/spec-kit/contact-gateway/internal/service"
	"github.com/spec-kit/contact-gateway/internal/worker"
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

	metrics := observability.NewMetrics()

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

	pool := pg.PoolHandle()
	operatorRepo := repository.NewOperatorRepository(pool)
	contactRepo := repository.NewContactRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	validator := messaging.NewCachedValidator(
		messaging.NewHTTPValidator(cfg.Messaging, logger),
		redis.Client,
		cfg.Messaging.CacheTTL(),
		logger,
	)

	dispatcher := events.NewInMemoryDispatcher()

	gw := gateway.New(logger, metrics)
	gateway.SetDefault(gw)
	defer gw.Close()

	authService := service.NewAuthService(*cfg, operatorRepo)
	contactService := service.NewContactService(service.ContactDependencies{
		ContactRepo:        contactRepo,
		Validator:          validator,
		Dispatcher:         dispatcher,
		Logger:             logger,
		ProfilePicRequired: cfg.Messaging.ProfilePicRequired,
	})
	ticketService := service.NewTicketService(ticketRepo, contactRepo, dispatcher, logger)
	broadcastService := service.NewBroadcastService(dispatcher, gw, logger)
	worker.StartBroadcastWorker(broadcastService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), operatorRepo)
	gatewayHandler := gateway.NewHandler(gw, authService.TokenManager(), cfg.Gateway, logger)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Sessions:       handlers.NewSessionsHandler(authService),
		Contacts:       handlers.NewContactsHandler(contactService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Gateway:        gatewayHandler,
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
