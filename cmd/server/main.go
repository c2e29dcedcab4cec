// Package main runs the booklovin backend: the domain services over the
// configured storage adapter, plus the operational HTTP endpoints.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/booklovin/backend/internal/app"
	"github.com/booklovin/backend/internal/app/httpapi"
	"github.com/booklovin/backend/internal/app/storage"
	"github.com/booklovin/backend/internal/app/storage/memory"
	"github.com/booklovin/backend/internal/app/storage/mongodb"
	"github.com/booklovin/backend/internal/app/storage/redisdb"
	"github.com/booklovin/backend/internal/config"
	"github.com/booklovin/backend/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to the YAML config file")
	flag.Parse()

	if v := os.Getenv("BOOKLOVIN_CONFIG"); v != "" && *configPath == "" {
		*configPath = v
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.LoggingConfig{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}).Named("server")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server exited")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, ready, cleanup, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	defer cleanup()
	log.WithField("backend", string(cfg.Backend)).Info("storage backend ready")

	application, err := app.New(app.FromStore(store), app.Options{
		LettersSweepSchedule: cfg.Letters.SweepSchedule,
	}, log)
	if err != nil {
		return fmt.Errorf("build application: %w", err)
	}
	if err := application.Start(ctx); err != nil {
		return fmt.Errorf("start application: %w", err)
	}

	ops := httpapi.NewOpsHandler(log, map[string]httpapi.ReadinessCheck{
		"storage": ready,
	})
	server := &http.Server{
		Addr:         cfg.Ops.Addr,
		Handler:      ops.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Ops.Addr).Info("ops endpoints listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("ops server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("ops server shutdown")
	}
	if err := application.Stop(shutdownCtx); err != nil {
		log.WithError(err).Warn("application shutdown")
	}
	return nil
}

// openStore builds the configured storage adapter and returns it with a
// readiness probe and a cleanup function.
func openStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (storage.Store, httpapi.ReadinessCheck, func(), error) {
	noop := func() {}

	switch cfg.Backend {
	case config.BackendMemory:
		s, err := memory.NewWithSnapshot(cfg.Memory.SnapshotPath, log.Named("memory"))
		if err != nil {
			return nil, nil, noop, err
		}
		ready := func(context.Context) error { return nil }
		return s, ready, noop, nil

	case config.BackendMongoDB:
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			return nil, nil, noop, err
		}
		cleanup := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		if err := client.Ping(connectCtx, nil); err != nil {
			cleanup()
			return nil, nil, noop, err
		}

		s := mongodb.New(client.Database(cfg.Mongo.Database), log.Named("mongodb"))
		if err := s.EnsureIndexes(connectCtx); err != nil {
			cleanup()
			return nil, nil, noop, err
		}
		ready := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return s, ready, cleanup, nil

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		cleanup := func() { _ = client.Close() }

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			cleanup()
			return nil, nil, noop, err
		}

		s := redisdb.New(client, log.Named("redisdb"))
		ready := func(ctx context.Context) error { return client.Ping(ctx).Err() }
		return s, ready, cleanup, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
