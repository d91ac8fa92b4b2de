package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/tasklane/internal/api"
	"github.com/lalith-99/tasklane/internal/auth"
	"github.com/lalith-99/tasklane/internal/config"
	"github.com/lalith-99/tasklane/internal/db"
	"github.com/lalith-99/tasklane/internal/middleware"
	"github.com/lalith-99/tasklane/internal/observ"
	"github.com/lalith-99/tasklane/internal/realtime"
	"github.com/lalith-99/tasklane/internal/repository/postgres"
	"github.com/lalith-99/tasklane/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// ---------------------------------------------------------------
	// 1. Config and logger
	// ---------------------------------------------------------------
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	observ.RegisterMetrics(prometheus.DefaultRegisterer)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---------------------------------------------------------------
	// 2. Postgres
	// ---------------------------------------------------------------
	database, err := db.New(ctx, cfg.DatabaseURL, db.PoolConfig{
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	}, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx); err != nil {
			return err
		}
	}

	pool := database.Pool()
	planRepo := postgres.NewPlanStore(pool)
	tenantRepo := postgres.NewTenantStore(pool)
	userRepo := postgres.NewUserStore(pool)
	projectRepo := postgres.NewProjectStore(pool)
	taskRepo := postgres.NewTaskStore(pool)

	if err := planRepo.EnsureDefaults(ctx); err != nil {
		return fmt.Errorf("ensure default plans: %w", err)
	}

	// ---------------------------------------------------------------
	// 3. Redis (optional): token denylist and event backplane
	// ---------------------------------------------------------------
	hub := realtime.NewHub(logger)
	var (
		denylist auth.Denylist      = auth.NopDenylist{}
		events   realtime.Publisher = realtime.NewLocalBroker(hub)
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		logger.Info("redis connected", zap.String("addr", opts.Addr))

		denylist = auth.NewRedisDenylist(rdb)
		broker := realtime.NewRedisBroker(rdb, hub, logger)
		events = broker
		go func() {
			if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("realtime backplane stopped", zap.Error(err))
			}
		}()
	} else {
		logger.Warn("REDIS_URL not set: logout will not revoke tokens and events stay in-process")
	}

	// ---------------------------------------------------------------
	// 4. Services and handlers
	// ---------------------------------------------------------------
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTTTL)
	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("create password hasher: %w", err)
	}

	authSvc := service.NewAuthService(planRepo, tenantRepo, userRepo, issuer, hasher, denylist, logger)
	projectSvc := service.NewProjectService(projectRepo, events, logger)
	taskSvc := service.NewTaskService(taskRepo, projectRepo, userRepo, events, logger)
	tenantSvc := service.NewTenantService(tenantRepo, planRepo, logger)
	userSvc := service.NewUserService(userRepo, hasher, events, logger)

	limiter := middleware.NewRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst)
	go sweepLimiter(ctx, limiter)

	router := api.NewRouter(api.Deps{
		Logger:      logger,
		Issuer:      issuer,
		Denylist:    denylist,
		AuthLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,
		DB:          database,

		TrustedProxies: cfg.TrustedProxies,

		Auth:     api.NewAuthHandler(authSvc),
		Projects: api.NewProjectHandler(projectSvc),
		Tasks:    api.NewTaskHandler(taskSvc),
		Tenants:  api.NewTenantHandler(tenantSvc),
		Members:  api.NewMemberHandler(userSvc),
		Users:    api.NewUserHandler(userSvc),
		Realtime: api.NewRealtimeHandler(ctx, hub, cfg.CORSOrigins),
	})

	// ---------------------------------------------------------------
	// 5. HTTP server with graceful shutdown
	// ---------------------------------------------------------------
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting tasklane",
			zap.String("port", cfg.Port),
			zap.String("env", cfg.Env),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func sweepLimiter(ctx context.Context, rl *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Sweep()
		}
	}
}
