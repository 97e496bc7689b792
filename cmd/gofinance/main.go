package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"gofinance/internal/amqp"
	"gofinance/internal/backend"
	"gofinance/internal/cache"
	"gofinance/internal/cli"
	"gofinance/internal/config"
	"gofinance/internal/core"
	apphttp "gofinance/internal/http"
	"gofinance/internal/kv"
	"gofinance/internal/live"
	"gofinance/internal/log"
	"gofinance/internal/repository"
	"gofinance/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).Validate)

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", log.FieldError, err)
		os.Exit(1)
	}

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	storeResult, err := backend.NewFactory(logger).CreateStore(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize storage", log.FieldError, err, log.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := storeResult.Cleanup(); err != nil {
			logger.Error("Failed to close storage", log.FieldError, err)
		}
	}()

	hub := live.NewHub(logger)
	opts := []services.Option{services.WithNotifier(hub)}

	// AMQP is optional on the server: without it nothing is exported.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		opts = append(opts, services.WithPublisher(amqpClient))
		logger.Info("AMQP publisher enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled - no AMQP_URL provided")
	}

	svc := services.NewFinanceService(
		repository.NewTransactionRepository(storeResult.Store, cfg.StorageNamespace),
		repository.NewSessionRepository(storeResult.Store, cfg.StorageNamespace),
		services.FinanceConfig{
			Catalog:   core.DefaultCatalog(),
			Location:  loc,
			CacheSize: cfg.CacheSize,
			CacheTTL:  cfg.CacheTTL,
		},
		logger,
		opts...,
	)

	cacheManager := cache.NewManager(logger)
	cacheManager.Register(svc.Cache())
	cacheManager.StartCleanup(time.Minute)

	var ready kv.Pinger
	if p, ok := storeResult.Store.(kv.Pinger); ok {
		ready = p
	}
	srv := apphttp.NewServer(":"+cfg.Port, svc, apphttp.Options{
		Ready:              ready,
		Hub:                hub,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Logger:             logger,
	})

	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		stopHub()
		cacheManager.Stop()
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				logger.Error("Failed to close AMQP client", log.FieldError, err)
			}
		}
	})

	logger.Info("Starting gofinance server",
		"port", cfg.Port,
		log.FieldBackend, cfg.DataBackend,
		"timezone", loc.String(),
		log.FieldOperation, log.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	<-done
	logger.Info("Server stopped gracefully")
}
