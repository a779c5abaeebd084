// Package main seeds the bootstrap super admin account and optionally
// replaces the delegate roster from a CSV export.
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/summit-delegates/backend/config"
	"github.com/summit-delegates/backend/internal/delegates"
	"github.com/summit-delegates/backend/internal/models"
	"github.com/summit-delegates/backend/internal/users"
	"github.com/summit-delegates/backend/pkg/database"
	"github.com/summit-delegates/backend/pkg/utils"
)

func main() {
	csvPath := flag.String("csv", "", "path to a delegate roster CSV; replaces all existing delegates")
	flag.Parse()

	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	if err := seedSuperAdmin(ctx, users.NewRepository(pool), cfg.Seed, logger); err != nil {
		logger.Fatal("seed super admin", zap.Error(err))
	}

	if *csvPath != "" {
		if err := seedDelegates(ctx, delegates.NewRepository(pool), *csvPath, logger); err != nil {
			logger.Fatal("seed delegates", zap.Error(err))
		}
	}
}

func seedSuperAdmin(ctx context.Context, repo *users.Repository, seed config.SeedConfig, logger *zap.Logger) error {
	exists, err := repo.HasRole(ctx, models.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if exists {
		logger.Info("super admin already exists")
		return nil
	}

	hash, err := utils.HashPassword(seed.SuperAdminPassword)
	if err != nil {
		return err
	}
	if _, err := repo.Create(ctx, seed.SuperAdminEmail, hash, seed.SuperAdminName, models.RoleSuperAdmin); err != nil {
		return err
	}
	logger.Info("super admin created", zap.String("email", seed.SuperAdminEmail))
	return nil
}

func seedDelegates(ctx context.Context, repo *delegates.Repository, path string, logger *zap.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	list, err := delegates.ParseCSV(f)
	if err != nil {
		return err
	}
	count, err := repo.ReplaceAll(ctx, list)
	if err != nil {
		return err
	}
	logger.Info("delegates seeded", zap.Int("count", count))
	return nil
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
