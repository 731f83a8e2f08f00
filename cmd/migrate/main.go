package main

import (
	"context"
	"flag"

	"orgbanking/internal/config"
	"orgbanking/internal/db"
	"orgbanking/internal/logging"
	"orgbanking/internal/migrate"

	"go.uber.org/zap"
)

func main() {
	var (
		down        int
		showVersion bool
	)
	flag.IntVar(&down, "down", 0, "Roll back this many migrations instead of applying")
	flag.BoolVar(&showVersion, "version", false, "Print the applied migration version and exit")
	flag.Parse()

	cfg, err := config.Load(".")
	if err != nil {
		logging.New(logging.Options{}).Fatal("load config", zap.Error(err))
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}).Named("migrate")
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	switch {
	case showVersion:
		version, dirty, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal("read migration version", zap.Error(err))
		}
		logger.Info("migration version", zap.Uint("version", version), zap.Bool("dirty", dirty))
	case down > 0:
		if err := migrate.Rollback(ctx, pool, down); err != nil {
			logger.Fatal("roll back migrations", zap.Int("steps", down), zap.Error(err))
		}
		logger.Info("migrations rolled back", zap.Int("steps", down))
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		logger.Info("migrations applied")
	}
}
