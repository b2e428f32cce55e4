package main

import (
	"context"
	"crypto/tls"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	mw "github.com/5w1tchy/inventory-api/internal/api/middlewares"
	"github.com/5w1tchy/inventory-api/internal/api/router"
	"github.com/5w1tchy/inventory-api/internal/config"
	"github.com/5w1tchy/inventory-api/internal/inventory"
	"github.com/5w1tchy/inventory-api/internal/maintenance"
	"github.com/5w1tchy/inventory-api/internal/repository/redisconnect"
	"github.com/5w1tchy/inventory-api/internal/storage/s3"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	for _, w := range cfg.Warnings() {
		logger.Warn("config", slog.String("warning", w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Redis is shared by the redis store and the rate limiter.
	var rdb *redis.Client
	if cfg.Redis.Configured() {
		rdb, err = redisconnect.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		logger.Info("connected to redis")
	}

	store, closeStore, err := openStore(ctx, cfg, rdb)
	if err != nil {
		return err
	}
	defer closeStore()
	logger.Info("store ready", slog.String("driver", cfg.StoreDriver))

	svc := inventory.NewService(store, inventory.WithLogger(logger))

	if cfg.Snapshot.Enabled() {
		objects, err := s3.New(ctx, s3.Options{
			Bucket:          cfg.Snapshot.Bucket,
			Endpoint:        cfg.Snapshot.Endpoint,
			Region:          cfg.Snapshot.Region,
			AccessKeyID:     cfg.Snapshot.AccessKeyID,
			SecretAccessKey: cfg.Snapshot.SecretAccessKey,
		})
		if err != nil {
			return err
		}
		snap := maintenance.NewSnapshotter(svc, objects, cfg.Snapshot.Prefix, cfg.Snapshot.Keep, logger)
		maintenance.StartSnapshots(ctx, snap, cfg.Snapshot.Hour, cfg.Snapshot.Minute, cfg.Snapshot.Location)
		logger.Info("snapshots enabled",
			slog.String("bucket", cfg.Snapshot.Bucket),
			slog.Int("hour", cfg.Snapshot.Hour),
			slog.Int("minute", cfg.Snapshot.Minute),
		)
	}

	var limiter mw.Middleware
	if rdb != nil {
		limiter = mw.NewRedisTokenBucket(rdb, cfg.RateLimitRPS, cfg.RateLimitBurst, mw.PerIPKey("tb"), logger).Middleware
	} else {
		local := mw.NewLocalLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, mw.PerIPKey("tb"), logger)
		go local.Janitor(ctx, time.Minute)
		limiter = local.Middleware
	}

	secureMux := mw.Apply(
		router.Router(svc, logger),
		mw.RequestID,
		mw.Recovery(logger),
		mw.Cors(cfg.CORSAllowedOrigins, logger),
		mw.ResponseTime(logger),
		mw.SecurityHeaders,
		limiter,
		mw.BodySizeLimit(cfg.MaxBodySize),
		mw.Compression,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           secureMux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		TLSConfig:         &tls.Config{MinVersion: tls.VersionTLS12},
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.HTTPAddr), slog.Bool("tls", cfg.TLSEnabled()))
		if cfg.TLSEnabled() {
			errCh <- server.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			errCh <- server.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
