// Command seed creates the default plans and the demo tenant and users.
// It is safe to run more than once.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/lalith-99/tasklane/internal/auth"
	"github.com/lalith-99/tasklane/internal/config"
	"github.com/lalith-99/tasklane/internal/db"
	"github.com/lalith-99/tasklane/internal/observ"
	"github.com/lalith-99/tasklane/internal/repository/postgres"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	database, err := db.New(ctx, cfg.DatabaseURL, db.PoolConfig{MaxConns: 2}, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	hasher, err := auth.NewHasher(cfg.BcryptCost)
	if err != nil {
		return err
	}
	if err := database.Seed(ctx, postgres.NewPlanStore(database.Pool()), hasher.Hash); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	for _, u := range db.DemoUsers {
		logger.Info("demo account",
			zap.String("email", u.Email),
			zap.String("tenant", u.TenantSubdomain),
			zap.String("role", string(u.Role)),
		)
	}
	return nil
}
