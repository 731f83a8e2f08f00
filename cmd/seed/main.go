package main

import (
	"context"

	"orgbanking/internal/config"
	"orgbanking/internal/db"
	"orgbanking/internal/logging"
	"orgbanking/internal/seed"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		logging.New(logging.Options{}).Fatal("load config", zap.Error(err))
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}).Named("seed")
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.String("organization_id", seed.DemoOrganizationID))
}
