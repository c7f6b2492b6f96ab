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

	"github.com/outboardpro/catalog/config"
	httpDelivery "github.com/outboardpro/catalog/internal/delivery/http"
	"github.com/outboardpro/catalog/internal/domain"
	"github.com/outboardpro/catalog/internal/infrastructure/artifact"
	"github.com/outboardpro/catalog/internal/infrastructure/cache"
	"github.com/outboardpro/catalog/internal/infrastructure/shopify"
	"github.com/outboardpro/catalog/internal/observability"
	"github.com/outboardpro/catalog/internal/usecase"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.SetupLogger(cfg.Server.Environment, cfg.Log.Level)
	log.Info().
		Str("env", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Str("cache", cfg.Cache.Type).
		Str("source", cfg.Source.Type).
		Msg("starting outboard catalog v1.0.0")

	// Initialize infrastructure dependencies
	cacheRepo, closeCache, err := newCache(cfg)
	if err != nil {
		log.Error().Err(err).Msg("cache initialization failed")
		os.Exit(1)
	}
	defer closeCache()

	source := newSource(cfg)

	// Initialize usecase layer
	productService := usecase.NewProductService(cacheRepo, source, usecase.ProductServiceConfig{
		CacheTTL: cfg.Cache.TTL,
	})

	handler := httpDelivery.NewHandler(productService)
	router := httpDelivery.SetupRouter(cfg, handler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited")
}

func newCache(cfg *config.Config) (domain.CacheRepository, func(), error) {
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info().Dur("ttl", cfg.Cache.TTL).Msg("redis cache connected")
		return redisCache, func() { redisCache.Close() }, nil
	}

	memoryCache := cache.NewMemoryCache()
	log.Info().Dur("ttl", cfg.Cache.TTL).Msg("memory cache ready")
	return memoryCache, func() { memoryCache.Close() }, nil
}

func newSource(cfg *config.Config) domain.ProductSource {
	if cfg.Source.Type == "storefront" {
		client := shopify.NewClient(shopify.ClientConfig{
			Endpoint:          shopify.EndpointURL(cfg.Storefront.Domain, cfg.Storefront.APIVersion),
			Token:             cfg.Storefront.Token,
			PageSize:          cfg.Storefront.PageSize,
			Timeout:           cfg.Storefront.Timeout,
			RequestsPerSecond: cfg.Storefront.RequestsPerSecond,
		})

		// Enable debug mode in development environment
		if cfg.Storefront.Debug || cfg.Server.Environment == "development" {
			client.SetDebug(true)
			log.Debug().Msg("storefront client debug mode enabled")
		}
		log.Info().Str("domain", cfg.Storefront.Domain).Str("api_version", cfg.Storefront.APIVersion).Msg("storefront source configured")
		return usecase.NewStorefrontSource(client)
	}

	log.Info().Str("path", cfg.Source.CatalogPath).Msg("static catalog source configured")
	return artifact.NewStaticSource(cfg.Source.CatalogPath)
}
