package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"newsdesk-service/internal/backend"
	"newsdesk-service/internal/config"
	"newsdesk-service/internal/dbexport"
	httpapi "newsdesk-service/internal/http"
	"newsdesk-service/internal/imageopt"
	"newsdesk-service/internal/logging"
	"newsdesk-service/internal/media"
	"newsdesk-service/internal/metrics"
	"newsdesk-service/internal/newsroom"
	"newsdesk-service/internal/ratelimit"
	"newsdesk-service/internal/store"
)

const sweepInterval = time.Minute

func main() {
	cfg := config.Load()

	logger, err := logging.New(cfg.LogLevel, cfg.LogJSON)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		cache  backend.Backend
		memory *backend.MemoryBackend
		err    error
	)
	switch cfg.Backend {
	case "redis":
		cache, err = backend.NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		memory = backend.NewMemoryBackend()
		cache = memory
	}
	if err != nil {
		return err
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("backend close failed", zap.Error(err))
		}
	}()

	target := cfg.DBDSN
	if cfg.DBDriver == store.DriverSQLite {
		target = resolve(cfg.BaseDir, cfg.DBPath)
	}
	st, err := store.Open(cfg.DBDriver, target, logger.Named("store"))
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	storage, err := media.NewStorage(resolve(cfg.BaseDir, cfg.MediaRoot), cfg.MediaURL)
	if err != nil {
		return err
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	optimizer := imageopt.New(imageopt.Config(cfg.Image),
		imageopt.WithLogger(logger.Named("imageopt")),
		imageopt.WithObserver(m),
	)
	news := newsroom.New(st, storage, optimizer, newsroom.WithLogger(logger.Named("newsroom")))

	limiters := ratelimit.NewSet(cache,
		ratelimit.Profile(cfg.RateLimits.Search),
		ratelimit.Profile(cfg.RateLimits.API),
		ratelimit.Profile(cfg.RateLimits.Strict),
		ratelimit.WithLogger(logger.Named("ratelimit")),
		ratelimit.WithObserver(m),
	)

	var exporter *dbexport.Exporter
	if cfg.DBDriver == store.DriverSQLite {
		exporter = dbexport.New(cfg.DBPath, cfg.BaseDir, logger.Named("dbexport"))
	}
	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set, admin routes are disabled")
	}

	handler := httpapi.NewHandler(news, exporter, st.Ping, logger.Named("http"))
	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: httpapi.Routes(handler, httpapi.RouterConfig{
			Limiters:   limiters,
			AdminToken: cfg.AdminToken,
			Media:      storage.Fs(),
			MediaURL:   cfg.MediaURL,
			Gatherer:   prometheus.DefaultGatherer,
			Metrics:    m,
			Logger:     logger.Named("access"),
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("newsdesk listening",
			zap.String("port", cfg.Port),
			zap.String("backend", cfg.Backend),
			zap.String("db_driver", cfg.DBDriver),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
		}
		return nil
	})
	if memory != nil {
		g.Go(func() error {
			ticker := time.NewTicker(sweepInterval)
			defer ticker.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if n := memory.Sweep(); n > 0 {
						logger.Debug("swept expired rate limit windows", zap.Int("count", n))
					}
				}
			}
		})
	}
	return g.Wait()
}

func resolve(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
