package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/runesbridge/staking-pipeline/internal/api"
	"github.com/runesbridge/staking-pipeline/internal/config"
	"github.com/runesbridge/staking-pipeline/internal/database"
	"github.com/runesbridge/staking-pipeline/internal/ledger"
	"github.com/runesbridge/staking-pipeline/internal/locker"
	"github.com/runesbridge/staking-pipeline/internal/logging"
	"github.com/runesbridge/staking-pipeline/internal/storage"
	"github.com/runesbridge/staking-pipeline/internal/utils"
)

const usage = "usage: staking-pipeline [-config path] serve|process"

// app holds everything wired from the configuration.
type app struct {
	cfg     config.Config
	logger  *zap.Logger
	service *ledger.Service
	job     *ledger.BatchJob
	closers []func() error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	flag.Parse()

	command := flag.Arg(0)
	if command != "serve" && command != "process" {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	envOnly := os.Getenv("STAKING_ENV_ONLY") == "true"
	cfg, err := config.Load(*configPath, envOnly)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	a, err := initialize(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Unable to initialize", zap.Error(err))
	}
	defer a.close()

	switch command {
	case "serve":
		err = a.serve(ctx)
	case "process":
		err = a.process(ctx)
	}
	if err != nil {
		a.close()
		logger.Fatal("Command failed", zap.String("command", command), zap.Error(err))
	}
}

func initialize(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var store ledger.Store
	switch cfg.Store.Driver {
	case "memory":
		logger.Warn("using in-memory store, wallets are lost on exit")
		store = database.NewMemoryStore()
	case "clickhouse":
		conn, err := database.NewClickHouseConnection(ctx, cfg.ClickHouse, logger)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		if err := database.Migrate(ctx, conn); err != nil {
			a.close()
			return nil, err
		}
		store = database.NewClickHouseStore(conn)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	var lk locker.Locker
	switch cfg.Lock.Driver {
	case "local":
		lk = locker.New()
	case "redis":
		client, err := locker.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		lk = locker.NewRedisLocker(client, logger, locker.RedisOptions{TTL: cfg.Lock.TTL, Wait: cfg.Lock.Wait})
	default:
		a.close()
		return nil, fmt.Errorf("unknown lock driver %q", cfg.Lock.Driver)
	}

	a.service = ledger.NewService(store, lk, logger, cfg.Merge.Workers)

	var exports storage.Storage
	if cfg.MinIO.Enabled {
		minioStorage, err := storage.NewMinIOStorage(ctx, cfg.MinIO, logger)
		if err != nil {
			a.close()
			return nil, err
		}
		exports = minioStorage
	}

	a.job = ledger.NewBatchJob(a.service, exports, cfg.Ingest.Path, cfg.Export.Path, cfg.Export.Sheet, logger)

	logger.Info("staking pipeline initialized",
		zap.String("env", cfg.App.Env),
		zap.String("store", cfg.Store.Driver),
		zap.String("lock", cfg.Lock.Driver),
		zap.Bool("minio", cfg.MinIO.Enabled))
	return a, nil
}

// serve runs the HTTP API until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	server := &http.Server{
		Addr:    a.cfg.Server.HTTPAddr,
		Handler: api.NewServer(a.service, a.job, a.logger).NewRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("API server is running", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// process runs one batch and prints the export table and the ledger totals.
func (a *app) process(ctx context.Context) error {
	result, err := a.job.Run(ctx)
	if err != nil {
		return err
	}

	utils.DisplayTable(os.Stdout, result.Table)

	totals, err := a.service.CategoryTotals(ctx)
	if err != nil {
		return err
	}
	utils.DisplayCategoryTotals(os.Stdout, totals)

	a.logger.Info("Data pipeline completed successfully.",
		zap.String("export", result.ExportPath),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated))
	return nil
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("error closing resource", zap.Error(err))
		}
	}
	a.closers = nil
}
