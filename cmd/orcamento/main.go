package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"orcamento/internal/amqp"
	"orcamento/internal/cache"
	"orcamento/internal/cli"
	"orcamento/internal/config"
	apphttp "orcamento/internal/http"
	applog "orcamento/internal/log"
	"orcamento/internal/services"
	"orcamento/internal/tips"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()
	logger := cli.SetupLogger(cfg)
	cfg = cli.LoadAndValidateConfig(logger)

	ctx := context.Background()

	result := cli.OpenBackend(ctx, logger, cfg)
	defer cli.CloseBackend(logger, result)

	tipGen, tipCache, err := tips.New(ctx, tips.Settings{
		Provider: cfg.TipsProvider,
		Gemini:   tips.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel},
		OpenAI:   tips.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel},
		CacheTTL: cfg.TipsCacheTTL,
	}, logger.WithComponent(applog.ComponentTips).Logger)
	if err != nil {
		logger.Error("Failed to initialize tips provider", applog.FieldProvider, cfg.TipsProvider, applog.FieldError, err)
		os.Exit(1)
	}

	// Saved snapshots are announced only when a broker is configured.
	var publisher services.SnapshotPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer amqpClient.Close()
		publisher = amqpClient
		logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled - saved snapshots are not exported")
	}

	svc := services.NewBudgetService(result.Records, result.Auth, tipGen, publisher, services.Config{
		SaveMode:      cfg.SaveMode,
		SessionTTL:    cfg.SessionTTL,
		CDIAnnualRate: cfg.CDIAnnualRate,
	}, logger)

	cacheManager := cache.NewManager()
	cacheManager.Register("sessions", svc.Sessions().Cache())
	if tipCache != nil {
		cacheManager.Register("tips", tipCache.Cache())
	}
	cacheManager.StartCleanup(time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Logger:             logger,
		Ready:              result.Ready,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	shutdownCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting orcamento server",
		"port", cfg.Port,
		applog.FieldBackend, cfg.DataBackend,
		applog.FieldSaveMode, cfg.SaveMode,
		applog.FieldProvider, cfg.TipsProvider)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(shutdownCtx, done)
	logger.Info("Server stopped gracefully")
}
