package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"orgbanking/internal/authz"
	"orgbanking/internal/config"
	"orgbanking/internal/db"
	"orgbanking/internal/ids"
	"orgbanking/internal/importer"
	"orgbanking/internal/logging"
	customerrepo "orgbanking/internal/repository/customer"
	orgrepo "orgbanking/internal/repository/organization"
	customersvc "orgbanking/internal/service/customer"

	"go.uber.org/zap"
)

func main() {
	var (
		filePath string
		orgID    string
		userID   string
	)
	flag.StringVar(&filePath, "file", "", "Path to customer CSV file")
	flag.StringVar(&orgID, "org", "", "Organization id to import into")
	flag.StringVar(&userID, "user", "", "User performing the import (defaults to the organization creator)")
	flag.Parse()

	if filePath == "" || orgID == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(".")
	if err != nil {
		logging.New(logging.Options{}).Fatal("load config", zap.Error(err))
	}
	logger := logging.New(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, File: cfg.LogFile}).Named("importer")
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	orgs := orgrepo.NewPostgres(pool, logger)
	if userID == "" {
		org, err := orgs.GetByID(ctx, orgID)
		if err != nil {
			logger.Fatal("load organization", zap.String("organization_id", orgID), zap.Error(err))
		}
		userID = org.CreatorID
	}

	node, err := cfg.ImporterNode()
	if err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}
	shortIDs, err := ids.NewShortGenerator(node)
	if err != nil {
		logger.Fatal("init short id generator", zap.Error(err))
	}
	svc := customersvc.New(customerrepo.NewPostgres(pool, logger), authz.NewGate(orgs, logger), shortIDs, logger)

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, svc, userID, orgID)

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Int("imported", count), zap.Error(err))
	}

	fmt.Printf("Imported %d customers into organization %s in %s\n", count, orgID, time.Since(start).Truncate(time.Millisecond))
}
