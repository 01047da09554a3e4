package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	httpAdapter "github.com/lorrc/helpdesk-backend/internal/adapters/primary/http"
	mw "github.com/lorrc/helpdesk-backend/internal/adapters/primary/http/middleware"
	"github.com/lorrc/helpdesk-backend/internal/adapters/primary/websocket"
	"github.com/lorrc/helpdesk-backend/internal/adapters/secondary/email"
	"github.com/lorrc/helpdesk-backend/internal/adapters/secondary/postgres"
	"github.com/lorrc/helpdesk-backend/internal/adapters/secondary/redis"
	"github.com/lorrc/helpdesk-backend/internal/auth"
	"github.com/lorrc/helpdesk-backend/internal/config"
	"github.com/lorrc/helpdesk-backend/internal/core/domain"
	"github.com/lorrc/helpdesk-backend/internal/core/ports"
	"github.com/lorrc/helpdesk-backend/internal/core/services"
	"github.com/lorrc/helpdesk-backend/internal/infrastructure/logging"
	"github.com/lorrc/helpdesk-backend/internal/infrastructure/metrics"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Database: migrations, then the pool
	if cfg.Database.AutoMigrate {
		if err := postgres.MigrateUp(cfg.Database.URL); err != nil {
			logger.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
		logger.Info("database migrations applied")
	}

	pool, err := newPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connection established")

	healthDeps := []httpAdapter.Dependency{{Name: "database", Checker: pool}}

	// 4. Identity cache (optional)
	var identityCache ports.IdentityCache
	if cfg.RedisEnabled() {
		client := redis.NewClient(ctx, cfg.Redis, logger)
		cache := redis.NewIdentityCache(client, cfg.Redis.KeyPrefix, cfg.Redis.IdentityTTL)
		defer func() { _ = cache.Close() }()
		identityCache = cache
		healthDeps = append(healthDeps, httpAdapter.Dependency{Name: "redis", Checker: cache, Optional: true})
	} else {
		logger.Info("identity cache disabled")
	}

	// 5. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 6. Dependency Injection (Wiring the Hexagon)
	catalog := cfg.Tickets.Catalog
	tokenManager := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.AccessTokenTTL, cfg.JWT.Issuer)
	hasher := auth.NewBcryptHasher(cfg.Passwords.BcryptCost)

	// Repositories (Secondary Adapters)
	userRepo := postgres.NewUserRepository(pool)
	ticketRepo := postgres.NewTicketRepository(pool)
	changeRepo := postgres.NewChangeStatusRepository(pool)
	txManager := postgres.NewTransactionManager(pool)

	notifier := email.NewLogNotifier(userRepo, logger)

	// The hub checks subscriptions through the ticket service, which in turn
	// broadcasts through the hub.
	var ticketService ports.TicketService
	hub := websocket.NewHub(func(ctx context.Context, caller *domain.Caller, ticketID uuid.UUID) error {
		_, err := ticketService.GetTicket(ctx, caller, ticketID)
		return err
	}, logger).WithKeepalive(cfg.WebSocket.PingInterval, cfg.WebSocket.PongWait)

	hubCtx, stopHub := context.WithCancel(context.Background())
	hubDone := make(chan struct{})
	go func() {
		defer close(hubDone)
		hub.Run(hubCtx)
	}()

	// Services (Core)
	ticketService = services.NewTicketService(services.TicketServiceDeps{
		Tickets:     ticketRepo,
		Recorder:    services.NewStatusRecorder(changeRepo),
		Dispatcher:  services.NewQueryDispatcher(ticketRepo, collector),
		Numbers:     services.NewNumberGenerator(),
		TxManager:   txManager,
		Notifier:    notifier,
		Broadcaster: hub,
		Metrics:     collector,
		Catalog:     catalog,
		Logger:      logger,
	})
	userService := services.NewUserService(userRepo, hasher, identityCache, logger)
	authService := services.NewAuthService(userRepo, hasher, tokenManager)
	identityService := services.NewIdentityService(userRepo, identityCache, logger)

	if cfg.App.BootstrapAdmin != "" {
		created, err := services.EnsureAdmin(ctx, userRepo, hasher, cfg.App.BootstrapAdmin, cfg.App.BootstrapAdminPass)
		if err != nil {
			logger.Error("failed to seed bootstrap admin", "error", err)
			os.Exit(1)
		}
		if created {
			logger.Info("bootstrap admin created", "email", domain.NormalizeEmail(cfg.App.BootstrapAdmin))
		}
	}

	// Handlers (Primary Adapters)
	paging := httpAdapter.PagingConfig{
		DefaultSize: cfg.Tickets.DefaultPageSize,
		MaxSize:     cfg.Tickets.MaxPageSize,
	}
	errorHandler := httpAdapter.NewErrorHandler(logger)

	generalLimiter, authLimiter, callerLimiter := newRateLimiters(cfg.RateLimit)
	defer stopRateLimiters(generalLimiter, authLimiter, callerLimiter)

	deps := httpAdapter.RouterDeps{
		Config:         cfg,
		Logger:         logger,
		Authenticator:  mw.NewAuthenticator(tokenManager, identityService, logger),
		Auth:           httpAdapter.NewAuthHandler(authService, errorHandler, logger),
		Tickets:        httpAdapter.NewTicketHandler(ticketService, paging, errorHandler, logger),
		Users:          httpAdapter.NewUserHandler(userService, paging, errorHandler, logger),
		Health:         httpAdapter.NewHealthHandler(healthDeps, hub, cfg.App.Version),
		WebSocket:      httpAdapter.NewWebSocketHandler(hub, cfg, errorHandler, logger),
		GeneralLimiter: generalLimiter,
		AuthLimiter:    authLimiter,
		CallerLimiter:  callerLimiter,
	}
	if cfg.Metrics.Enabled {
		deps.HTTPObserver = collector
		deps.MetricsHandler = metrics.Handler(registry)
	}

	// 7. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      httpAdapter.NewRouter(deps),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		exitCode = 1
	}

	stopHub()
	<-hubDone
	ticketService.Shutdown()

	logger.Info("server shutdown complete")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

func newPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	poolConfig.MaxConnIdleTime = cfg.ConnMaxIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// newRateLimiters returns nil limiters when rate limiting is disabled.
func newRateLimiters(cfg config.RateLimitConfig) (general, login *mw.RateLimiter, caller *mw.RateLimitByKey) {
	if !cfg.Enabled {
		return nil, nil, nil
	}

	general = mw.NewRateLimiter(mw.RateLimiterConfig{
		RequestsPerSecond: cfg.RequestsPerSecond,
		BurstSize:         cfg.BurstSize,
		CleanupInterval:   time.Minute,
		TTL:               3 * time.Minute,
	})
	login = mw.NewRateLimiter(mw.RateLimiterConfig{
		RequestsPerSecond: cfg.AuthRPS,
		BurstSize:         cfg.AuthBurst,
		CleanupInterval:   time.Minute,
		TTL:               5 * time.Minute,
	})
	if cfg.CallerRPS > 0 {
		caller = mw.NewRateLimitByKey(cfg.CallerRPS, cfg.CallerBurst)
	}
	return general, login, caller
}

func stopRateLimiters(general, login *mw.RateLimiter, caller *mw.RateLimitByKey) {
	if general != nil {
		general.Stop()
	}
	if login != nil {
		login.Stop()
	}
	if caller != nil {
		caller.Stop()
	}
}
