package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shopfront/internal/auth"
	"shopfront/internal/cache"
	"shopfront/internal/catalog"
	"shopfront/internal/config"
	"shopfront/internal/database"
	"shopfront/internal/handler"
	"shopfront/internal/metrics"
	"shopfront/internal/repository"
	"shopfront/internal/router"
	"shopfront/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting shopfront API server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool, logger); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Repositories
	productRepo := repository.NewProductRepository(pool, logger)
	cartRepo := repository.NewCartRepository(pool, logger)
	addressRepo := repository.NewAddressRepository(pool, logger)
	orderRepo := repository.NewOrderRepository(pool, logger)
	settingsRepo := repository.NewSettingsRepository(pool, logger)

	if len(cfg.Catalog.Feeds) > 0 {
		loader := catalog.NewLoaderFromConfig(ctx, cfg.S3, logger)
		if _, err := catalog.NewImporter(loader, productRepo, logger).Import(ctx, cfg.Catalog.Feeds); err != nil {
			return fmt.Errorf("failed to import catalog: %w", err)
		}
	}

	var settingsCache service.Cache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(ctx, cfg.Redis, logger)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer redisCache.Close()
		settingsCache = redisCache
	} else {
		logger.Info().Msg("redis disabled, settings are read from the database on every request")
	}

	var m *metrics.Metrics
	orderOpts := []service.OrderServiceOption{}
	if cfg.Metrics.Enabled {
		m = metrics.New()
		orderOpts = append(orderOpts, service.WithPlacementRecorder(m))
	}

	// Services
	productService := service.NewProductService(productRepo, logger)
	cartService := service.NewCartService(cartRepo, logger)
	addressService := service.NewAddressService(addressRepo, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, cartRepo, addressRepo, logger, orderOpts...)
	settingsService := service.NewSettingsService(settingsRepo, settingsCache, cfg.Settings.CacheTTL, logger)

	mux := router.New(router.Handlers{
		Products:  handler.NewProductHandler(productService, logger),
		Cart:      handler.NewCartHandler(cartService, logger),
		Addresses: handler.NewAddressHandler(addressService, logger),
		Orders:    handler.NewOrderHandler(orderService, logger),
		Settings:  handler.NewSettingsHandler(settingsService, logger),
	}, router.Options{
		Gate:        auth.NewJWTGate(cfg.Auth),
		Settings:    settingsService,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
	}, logger)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
