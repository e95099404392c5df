// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelamos/studio-portal/internal/account"
	"github.com/angelamos/studio-portal/internal/admin"
	"github.com/angelamos/studio-portal/internal/auth"
	"github.com/angelamos/studio-portal/internal/client"
	"github.com/angelamos/studio-portal/internal/config"
	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/document"
	"github.com/angelamos/studio-portal/internal/finance"
	"github.com/angelamos/studio-portal/internal/health"
	"github.com/angelamos/studio-portal/internal/lead"
	"github.com/angelamos/studio-portal/internal/message"
	"github.com/angelamos/studio-portal/internal/middleware"
	"github.com/angelamos/studio-portal/internal/notify"
	"github.com/angelamos/studio-portal/internal/portal"
	"github.com/angelamos/studio-portal/internal/project"
	"github.com/angelamos/studio-portal/internal/server"
	"github.com/angelamos/studio-portal/internal/storage"
)

const (
	drainDelay = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // bootstrap code is inherently verbose
func run(configPath string) error {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	var telemetry *core.Telemetry
	if cfg.Otel.Enabled {
		tel, telErr := core.NewTelemetry(ctx, cfg.Otel, cfg.App)
		if telErr != nil {
			logger.Warn("failed to initialize telemetry", "error", telErr)
		} else {
			telemetry = tel
			logger.Info("OpenTelemetry tracer initialized",
				"endpoint", cfg.Otel.Endpoint,
			)
		}
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	redis, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	logger.Info("redis connected",
		"pool_size", cfg.Redis.PoolSize,
	)

	store, err := storage.NewS3Store(ctx, cfg.Storage, logger)
	if err != nil {
		return err
	}
	logger.Info("object storage configured",
		"bucket", cfg.Storage.Bucket,
		"region", cfg.Storage.Region,
	)

	sender, err := notify.NewSender(ctx, cfg.Email, cfg.Storage, logger)
	if err != nil {
		return err
	}
	notifier := notify.NewNotifier(sender, notify.NewTemplateRepository(db.DB), logger)
	logger.Info("email provider configured", "provider", sender.Name())

	jwtManager, err := auth.NewJWTManager(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("JWT manager initialized",
		"algorithm", "ES256",
		"key_id", jwtManager.KeyID(),
	)

	hasher, err := core.NewPasswordHasher(core.DefaultPasswordParams)
	if err != nil {
		return err
	}

	portalURL := cfg.App.PublicURL + "/portal"
	calc := finance.NewCalculator(finance.NewFormatter(cfg.Portal.CurrencyLabel, cfg.Portal.Locale))

	accountSvc := account.NewService(account.NewRepository(db.DB))
	accountHandler := account.NewHandler(accountSvc)

	authSvc := auth.NewService(auth.ServiceConfig{
		Repo:     auth.NewRepository(db.DB),
		JWT:      jwtManager,
		Accounts: accountSvc,
		Hasher:   hasher,
		Guard: auth.NewLoginGuard(
			auth.NewRedisCounterStore(redis.Client, "login_attempts:"),
			cfg.Auth.MaxAttempts,
			cfg.Auth.AttemptWindow,
			logger,
		),
		Redis:  redis.Client,
		Logger: logger,
	})
	authHandler := auth.NewHandler(authSvc)

	clientSvc := client.NewService(client.NewRepository(db.DB), authSvc, notifier, portalURL)
	clientHandler := client.NewHandler(clientSvc)

	projectSvc := project.NewService(
		project.NewRepository(db.DB, db),
		clientSvc,
		notifier,
		calc,
		portalURL,
	)
	projectHandler := project.NewHandler(projectSvc)

	documentSvc := document.NewService(document.ServiceConfig{
		Repo:       document.NewRepository(db.DB),
		Store:      store,
		Clients:    clientSvc,
		Projects:   projectSvc,
		MaxBytes:   cfg.Storage.MaxUploadBytes,
		PresignTTL: cfg.Storage.PresignTTL,
		Logger:     logger,
	})
	documentHandler := document.NewHandler(documentSvc)

	messageSvc := message.NewService(message.ServiceConfig{
		Repo:      message.NewRepository(db.DB),
		Projects:  projectSvc,
		Clients:   clientSvc,
		Notifier:  notifier,
		PortalURL: portalURL,
		Logger:    logger,
	})
	messageHandler := message.NewHandler(messageSvc)

	notifyHandler := notify.NewHandler(notifier)

	portalHandler := portal.NewHandler(portal.NewService(portal.ServiceConfig{
		Resolver: portal.NewResolver(clientSvc, portal.ResolverConfig{
			EligibleTier: cfg.Portal.EligibleTier,
			Wait:         cfg.Portal.ProvisioningWait,
			Interval:     cfg.Portal.PollInterval,
		}, logger),
		Access: portal.NewAccessSet(projectSvc),
		Composer: portal.NewComposer(portal.ComposerConfig{
			Phases:    projectSvc,
			Documents: documentSvc,
			Messages:  messageSvc,
			Calc:      calc,
			Logger:    logger,
		}),
		Messages:  messageSvc,
		Documents: documentSvc,
	}))

	leadHandler := lead.NewHandler(lead.NewService(lead.ServiceConfig{
		Repo:          lead.NewRepository(db.DB),
		Assets:        store,
		Notifier:      notifier,
		CalculatorKey: cfg.Storage.CalculatorKey,
		OfficeInbox:   cfg.Email.OfficeInbox,
		PresignTTL:    cfg.Storage.PresignTTL,
		Logger:        logger,
	}))

	healthHandler := health.NewHandler(
		health.Check{Name: "database", Checker: db, Critical: true},
		health.Check{Name: "redis", Checker: redis, Critical: true},
		health.Check{Name: "storage", Checker: store},
	)

	adminHandler := admin.NewHandler(admin.HandlerConfig{
		Clients:    clientSvc,
		Projects:   projectSvc,
		Messages:   messageSvc,
		DBStats:    db.Stats,
		RedisStats: redis.PoolStats,
		DBPing:     db.Ping,
		RedisPing:  redis.Ping,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	router := srv.Router()

	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(logger))
	if cfg.Metrics.Enabled {
		router.Use(middleware.Metrics)
	}
	router.Use(
		middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
			Limit: middleware.PerWindow(
				cfg.RateLimit.Requests,
				cfg.RateLimit.Burst,
				cfg.RateLimit.Window,
			),
			FailOpen: true,
		}).Handler,
	)
	router.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	router.Use(middleware.CORS(cfg.CORS))

	healthHandler.RegisterRoutes(router)

	if cfg.Metrics.Enabled {
		router.Handle(cfg.Metrics.Path, promhttp.Handler())
	}

	router.Get("/.well-known/jwks.json", jwtManager.JWKSHandler())

	authenticator := middleware.Authenticator(authSvc)
	leadLimiter := middleware.NewRateLimiter(redis.Client, middleware.RateLimitConfig{
		Limit: middleware.PerWindow(
			cfg.LeadRateLimit.Requests,
			cfg.LeadRateLimit.Burst,
			cfg.LeadRateLimit.Window,
		),
		Prefix:   "ratelimit:lead",
		FailOpen: true,
	})

	router.Route("/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r, authenticator)
		leadHandler.RegisterRoutes(r, leadLimiter.Handler)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireClient)
			portalHandler.RegisterRoutes(r)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticator)
			r.Use(middleware.RequireAdmin)

			adminHandler.RegisterAdminRoutes(r)
			accountHandler.RegisterAdminRoutes(r)
			clientHandler.RegisterAdminRoutes(r)
			projectHandler.RegisterAdminRoutes(r)
			documentHandler.RegisterAdminRoutes(r)
			messageHandler.RegisterAdminRoutes(r)
			notifyHandler.RegisterAdminRoutes(r)
		})
	})

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout+drainDelay+5*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx, drainDelay); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if err := notifier.Wait(shutdownCtx); err != nil {
		logger.Warn("pending emails abandoned", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	if err := redis.Close(); err != nil {
		logger.Error("redis close error", "error", err)
	}

	if err := db.Close(); err != nil {
		logger.Error("database close error", "error", err)
	}

	logger.Info("application stopped")
	return nil
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
