package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/festivaz/web-gateway/internal/api/http"
	"github.com/festivaz/web-gateway/internal/api/http/handlers"
	"github.com/festivaz/web-gateway/internal/auth"
	"github.com/festivaz/web-gateway/internal/backend"
	"github.com/festivaz/web-gateway/internal/config"
	"github.com/festivaz/web-gateway/internal/events"
	"github.com/festivaz/web-gateway/internal/observability"
	"github.com/festivaz/web-gateway/internal/persistence"
	"github.com/festivaz/web-gateway/internal/service"
	"github.com/festivaz/web-gateway/internal/session"
	"github.com/festivaz/web-gateway/internal/worker"
)

const purgeInterval = 15 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, dependencies, cleanup := buildSessionStore(ctx, cfg, logger)
	defer cleanup()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(service.NewAuditService(dispatcher, logger))

	var purgeDone <-chan struct{}
	if pgStore, ok := store.(*session.PostgresStore); ok {
		purgeDone = worker.StartPurgeWorker(ctx, pgStore, purgeInterval, logger)
	}

	manager := session.NewManager(store, nil)
	sessionMiddleware := auth.NewSessionMiddleware(manager, auth.CookieConfig{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.CookieSecure,
		MaxAge: cfg.Session.TTL(),
	})

	accountService := service.NewAccountService(service.AccountDependencies{
		API:        backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.Timeout()),
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	adminService := service.NewAdminAuthService(cfg.Admin, dispatcher, metrics, logger)
	if !adminService.Enabled() {
		logger.Warn("ADMIN_PASSWORD_HASH not set; admin console login disabled")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:        cfg.App.RequestTimeout(),
		AllowedOrigins: cfg.App.AllowedOrigins,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Account:        handlers.NewAccountHandler(accountService),
		Admin:          handlers.NewAdminHandler(adminService, sessionMiddleware),
		Pages:          handlers.NewPagesHandler(),
		Session:        sessionMiddleware,
		Guard:          auth.NewGuard(dispatcher, metrics, logger).VerifyIssuedBy(adminService.Tokens()),
		RootRedirector: auth.NewRootRedirector(dispatcher, metrics, logger),
		Metrics:        metrics.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
	cancel()
	if purgeDone != nil {
		<-purgeDone
	}
}

// buildSessionStore connects the configured session backend and returns the
// dependencies readiness should probe.
func buildSessionStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (session.Store, map[string]handlers.Pinger, func()) {
	ttl := cfg.Session.TTL()
	switch cfg.Session.Store {
	case config.StoreRedis:
		rdb := persistence.ConnectRedis(cfg.Redis, cfg.App.Name, logger)
		return rdb.SessionStore(ttl), map[string]handlers.Pinger{"redis": rdb}, rdb.Close
	case config.StorePostgres:
		pg, err := persistence.ConnectPostgres(ctx, cfg.Postgres, cfg.App.Name, logger)
		if err != nil {
			logger.Fatal("failed to open postgres session store", zap.Error(err))
		}
		return pg.SessionStore(ttl), map[string]handlers.Pinger{"postgres": pg}, pg.Close
	default:
		logger.Info("using in-memory session store")
		return session.NewMemoryStore(), map[string]handlers.Pinger{}, func() {}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
