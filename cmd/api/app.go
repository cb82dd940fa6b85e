// AngelaMos | 2026
// app.go

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/templates/catalog-backend/internal/admin"
	"github.com/carterperez-dev/templates/catalog-backend/internal/auth"
	"github.com/carterperez-dev/templates/catalog-backend/internal/config"
	"github.com/carterperez-dev/templates/catalog-backend/internal/core"
	"github.com/carterperez-dev/templates/catalog-backend/internal/health"
	"github.com/carterperez-dev/templates/catalog-backend/internal/metrics"
	"github.com/carterperez-dev/templates/catalog-backend/internal/middleware"
	"github.com/carterperez-dev/templates/catalog-backend/internal/product"
	"github.com/carterperez-dev/templates/catalog-backend/internal/seed"
	"github.com/carterperez-dev/templates/catalog-backend/internal/server"
	"github.com/carterperez-dev/templates/catalog-backend/internal/user"
)

const drainDelay = 5 * time.Second

func bootstrap(configPath string) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	logger := setupLogger(cfg.Log)
	slog.SetDefault(logger)

	return cfg, logger, nil
}

//nolint:funlen // bootstrap code is inherently verbose
func runServe(parent context.Context, configPath string) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	logger.Info("starting application",
		"name", cfg.App.Name,
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
	)

	if cfg.JWT.SecretKey == config.DefaultJWTSecret {
		logger.Warn("using the default JWT secret; set JWT_SECRET_KEY")
	}

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
	defer closeWith(logger, "database", db.Close)
	logger.Info("database connected",
		"max_open_conns", cfg.Database.MaxOpenConns,
		"max_idle_conns", cfg.Database.MaxIdleConns,
	)

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeWith(logger, "redis", rdb.Close)
	logger.Info("redis connected", "pool_size", cfg.Redis.PoolSize)

	issuer, err := auth.NewTokenIssuer(cfg.JWT)
	if err != nil {
		return err
	}
	logger.Info("token issuer initialized",
		"algorithm", "HS256",
		"access_token_expire", cfg.JWT.AccessTokenExpire,
	)

	userSvc := user.NewService(user.NewRepository(db.DB))
	productSvc := product.NewService(
		product.NewRepository(db.DB),
		product.NewRedisCategoryCache(rdb.Client, cfg.Cache.CategoriesTTL),
	)

	if cfg.Seed.OnStart {
		seeder := seed.New(userSvc, productSvc, cfg.Seed, logger)
		if _, err := seeder.Run(ctx); err != nil {
			return err
		}
	}

	healthHandler := health.NewHandler(map[string]health.Checker{
		"database": db,
		"redis":    rdb,
	})

	srv := server.New(server.Config{
		ServerConfig:  cfg.Server,
		HealthHandler: healthHandler,
		Logger:        logger,
	})

	mountRoutes(srv.Router(), routeDeps{
		config:   cfg,
		logger:   logger,
		redis:    rdb.Client,
		verifier: issuer,
		health:   healthHandler,
		auth:     auth.NewHandler(auth.NewService(userSvc, issuer)),
		product:  product.NewHandler(productSvc),
		admin: admin.NewHandler(admin.HandlerConfig{
			DBStats:       db.Stats,
			RedisStats:    rdb.PoolStats,
			DBPing:        db.Ping,
			RedisPing:     rdb.Ping,
			CountUsers:    userSvc.Count,
			CountProducts: productSvc.Count,
		}),
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

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}

	logger.Info("application stopped")
	return nil
}

type routeDeps struct {
	config   *config.Config
	logger   *slog.Logger
	redis    *redis.Client
	verifier middleware.TokenVerifier
	health   *health.Handler
	auth     *auth.Handler
	product  *product.Handler
	admin    *admin.Handler
}

// mountRoutes installs the middleware chain and every route. Rate limiting
// is skipped when no redis client is supplied.
func mountRoutes(router chi.Router, d routeDeps) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(d.logger))
	router.Use(middleware.Recoverer(d.logger))
	router.Use(metrics.Middleware)
	router.Use(middleware.SecurityHeaders(d.config.IsProduction()))
	router.Use(middleware.CORS(d.config.CORS))

	var authLimiter func(next http.Handler) http.Handler
	if d.redis != nil {
		router.Use(
			middleware.NewRateLimiter(d.redis, middleware.RateLimitConfig{
				Limit: middleware.PerMinute(
					d.config.RateLimit.Requests,
					d.config.RateLimit.Burst,
				),
				FailOpen:   true,
				BypassFunc: isProbe,
			}).Handler,
		)

		authLimiter = middleware.NewRateLimiter(d.redis, middleware.RateLimitConfig{
			Limit: middleware.PerMinute(
				d.config.RateLimit.AuthRequests,
				d.config.RateLimit.AuthBurst,
			),
			KeyFunc:  middleware.KeyByUserAndEndpoint,
			FailOpen: true,
		}).Handler
	}

	d.health.RegisterRoutes(router)
	router.Method(http.MethodGet, "/metrics", metrics.Handler())

	authenticator := middleware.Authenticator(d.verifier)
	adminOnly := middleware.RequireAdmin

	router.Route("/api", func(r chi.Router) {
		d.auth.RegisterRoutes(r, authenticator, authLimiter)
		d.product.RegisterRoutes(r, authenticator, adminOnly)
		d.admin.RegisterRoutes(r, authenticator, adminOnly)
	})
}

func isProbe(r *http.Request) bool {
	switch r.URL.Path {
	case "/health", "/livez", "/readyz", "/metrics":
		return true
	}
	return false
}

func runMigrate(ctx context.Context, configPath string) error {
	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeWith(logger, "database", db.Close)

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	version, err := db.MigrationVersion(ctx)
	if err != nil {
		return err
	}

	logger.Info("schema applied", "version", version)
	return nil
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, logger, err := bootstrap(configPath)
	if err != nil {
		return err
	}

	db, err := core.NewDatabase(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer closeWith(logger, "database", db.Close)

	if err := db.Migrate(ctx); err != nil {
		return err
	}

	rdb, err := core.NewRedis(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeWith(logger, "redis", rdb.Close)

	productSvc := product.NewService(
		product.NewRepository(db.DB),
		product.NewRedisCategoryCache(rdb.Client, cfg.Cache.CategoriesTTL),
	)
	userSvc := user.NewService(user.NewRepository(db.DB))

	result, err := seed.New(userSvc, productSvc, cfg.Seed, logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	logger.Info("seed finished",
		"admin_created", result.AdminCreated,
		"products_added", result.ProductsAdded,
	)
	return nil
}

func closeWith(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Error(name+" close error", "error", err)
	}
}
