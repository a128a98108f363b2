package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/paapi-product-cache/internal/config"
	"github.com/Sternrassler/paapi-product-cache/pkg/amazon"
	"github.com/Sternrassler/paapi-product-cache/pkg/cache"
	"github.com/Sternrassler/paapi-product-cache/pkg/catalog"
	"github.com/Sternrassler/paapi-product-cache/pkg/client"
	"github.com/Sternrassler/paapi-product-cache/pkg/logging"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup(logging.DefaultConfig())
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logger := logging.Setup(cfg.LoggingConfig())

	// Setup Redis
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	store := cache.NewRedisStore(redisClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.Ping(ctx); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr()).Msg("Failed to connect to Redis")
	}
	logger.Info().Str("addr", cfg.RedisAddr()).Msg("Connected to Redis")

	svc, err := buildService(cfg, store)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build product service")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           newRouter(svc, store, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().
			Str("addr", srv.Addr).
			Str("cache_hit_policy", cfg.Cache.HitPolicy).
			Bool("cache_coalesce", cfg.Cache.Coalesce).
			Msg("Starting product API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Graceful shutdown failed")
	}
}

// buildService assembles signer, client, provider, cache and catalog.
func buildService(cfg *config.Config, store cache.Store) (*catalog.Service, error) {
	sc, err := cfg.SigningContext()
	if err != nil {
		return nil, err
	}

	clientCfg := client.DefaultConfig(sc)
	clientCfg.Timeout = cfg.UpstreamTimeout
	paapi, err := client.New(clientCfg)
	if err != nil {
		return nil, err
	}

	log.Info().Object("signing", sc).Msg("PA-API client configured")

	registry := catalog.NewRegistry(amazon.NewProvider(paapi, cfg.ProviderConfig()))
	aside := cache.NewAside(store, cfg.CacheOptions())
	return catalog.NewService(aside, registry), nil
}
