package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"orcamento/internal/amqp"
	"orcamento/internal/cache"
	"orcamento/internal/cli"
	"orcamento/internal/config"
	applog "orcamento/internal/log"
	"orcamento/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentWorker)
	cfg = cli.LoadAndValidateConfig(logger)

	if err := cfg.ValidateExport(); err != nil {
		logger.Error("Export configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	logger.Info("Starting orcamento-worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	history, err := cli.OpenSnapshotHistory(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize snapshot history", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	exportWorker := worker.NewExportWorker(history, nil)

	cacheManager := cache.NewManager()
	cacheManager.Register("exported_snapshots", exportWorker.SeenCache())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming budget snapshots", "queue", cfg.AMQPQueue)
		return amqpClient.ConsumeSnapshots(gctx, exportWorker.HandleSnapshotSaved)
	})
	g.Go(func() error {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				for name, n := range cacheManager.CleanNow() {
					if n > 0 {
						logger.Debug("Cache cleanup completed", "cache", name, "entries_removed", n)
					}
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
