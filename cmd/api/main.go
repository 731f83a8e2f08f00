package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"orgbanking/internal/authz"
	"orgbanking/internal/bankschema"
	"orgbanking/internal/config"
	"orgbanking/internal/db"
	"orgbanking/internal/httpserver"
	"orgbanking/internal/ids"
	"orgbanking/internal/logging"
	bankrepo "orgbanking/internal/repository/bank"
	customerrepo "orgbanking/internal/repository/customer"
	orgrepo "orgbanking/internal/repository/organization"
	banksvc "orgbanking/internal/service/bank"
	customersvc "orgbanking/internal/service/customer"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		logging.New(logging.Options{}).Fatal("load config", zap.Error(err))
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}).Named("api")
	defer logger.Sync()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	table, err := loadSchema(cfg.BankSchemaFile)
	if err != nil {
		logger.Fatal("load bank schema", zap.String("file", cfg.BankSchemaFile), zap.Error(err))
	}

	shortIDs, err := ids.NewShortGenerator(cfg.ShortIDNode)
	if err != nil {
		logger.Fatal("init short id generator", zap.Error(err))
	}

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect to db", zap.Error(err))
	}
	defer dbpool.Close()

	scope := bankrepo.ScopeOrganization
	if cfg.BankPreferredScope == config.PreferredScopeGlobal {
		scope = bankrepo.ScopeGlobal
	}

	gate := authz.NewGate(orgrepo.NewPostgres(dbpool, logger), logger)
	bankService := banksvc.New(
		bankrepo.NewPostgres(dbpool, logger, scope),
		gate,
		bankschema.NewValidator(table),
		banksvc.Options{StrictCountry: cfg.BankStrictCountry},
		logger.Named("bank"),
	)
	customerService := customersvc.New(
		customerrepo.NewPostgres(dbpool, logger),
		gate,
		shortIDs,
		logger.Named("customer"),
	)

	gin.SetMode(gin.ReleaseMode)
	srv, err := httpserver.New(cfg.HTTPAddr, logger.Named("http"), dbpool, httpserver.Deps{
		BankSvc:     bankService,
		CustomerSvc: customerService,
	}, httpserver.Config{
		JWTSecret:          cfg.JWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})
	if err != nil {
		logger.Fatal("init server", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		logger.Error("server error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	} else {
		logger.Info("server stopped")
	}
}

func loadSchema(path string) (bankschema.Table, error) {
	if path == "" {
		return bankschema.LoadDefault()
	}
	return bankschema.LoadFile(path)
}
