package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"newsdesk-service/internal/config"
	"newsdesk-service/internal/logging"
	"newsdesk-service/internal/store"
)

func main() {
	var (
		createIndexes = flag.Bool("create-indexes", false, "create performance indexes")
		analyzeTables = flag.Bool("analyze-tables", false, "refresh planner statistics")
		all           = flag.Bool("all", false, "run every optimization")
		timeout       = flag.Duration("timeout", 5*time.Minute, "overall time limit")
	)
	flag.Parse()

	cfg := config.Load()
	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if !*createIndexes && !*analyzeTables && !*all {
		flag.Usage()
		os.Exit(2)
	}

	target := cfg.DBDSN
	if cfg.DBDriver == store.DriverSQLite {
		target = cfg.DBPath
		if !filepath.IsAbs(target) {
			target = filepath.Join(cfg.BaseDir, target)
		}
	}
	st, err := store.Open(cfg.DBDriver, target, logger.Named("store"))
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer func() { _ = st.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *createIndexes || *all {
		created, failed := st.CreateIndexes(ctx, logger)
		logger.Info("indexes done", zap.String("dialect", st.Dialect()), zap.Int("created", created), zap.Int("failed", failed))
	}
	if *analyzeTables || *all {
		n, err := st.AnalyzeTables(ctx, logger)
		if err != nil {
			logger.Error("analyze failed", zap.Int("tables", n), zap.Error(err))
			cancel()
			os.Exit(1)
		}
		logger.Info("tables analyzed", zap.Int("tables", n))
	}
}
