package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/buy01/marketplace-system/internal/api"
	"github.com/buy01/marketplace-system/internal/core/auth"
	"github.com/buy01/marketplace-system/internal/core/cascade"
	"github.com/buy01/marketplace-system/internal/core/service"
	"github.com/buy01/marketplace-system/internal/infrastructure/config"
	mongodb "github.com/buy01/marketplace-system/internal/infrastructure/db/mongo"
	redisdb "github.com/buy01/marketplace-system/internal/infrastructure/db/redis"
	"github.com/buy01/marketplace-system/internal/infrastructure/relay"
	"github.com/buy01/marketplace-system/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Stores ---
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		_ = client.Disconnect(context.Background())
	}()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() {
		_ = rdb.Close()
	}()

	userRepo := mongodb.NewUserRepository(db)
	productRepo := mongodb.NewProductRepository(db)
	mediaRepo := mongodb.NewMediaRepository(db)
	for _, ensure := range []func(context.Context) error{
		userRepo.EnsureIndexes, productRepo.EnsureIndexes, mediaRepo.EnsureIndexes,
	} {
		if err := ensure(ctx); err != nil {
			log.Fatal().Err(err).Msg("index creation failed")
		}
	}

	// --- Core ---
	authority := auth.NewAuthority(cfg.JWTSecret, cfg.TokenTTL)

	eventRelay := relay.New(relay.Options{
		Shards:       cfg.Relay.Shards,
		RetryWait:    cfg.Relay.RetryWait,
		MaxRetryWait: cfg.Relay.MaxRetryWait,
	}, log)

	userService := service.NewUserService(userRepo, authority, eventRelay, log)
	productService := service.NewProductService(productRepo, eventRelay, log)
	mediaService := service.NewMediaService(mediaRepo, productRepo, log)

	// --- Cascade consumers ---
	dedup := redisdb.NewDedupChecker(rdb)
	cascade.NewProductCoordinator(productService, eventRelay, dedup, log).Register(eventRelay)
	cascade.NewMediaCoordinator(mediaService, log).Register(eventRelay)

	relayCtx, stopRelay := context.WithCancel(context.Background())
	eventRelay.Start(relayCtx)

	// --- HTTP ---
	e := api.NewRouter(api.Services{
		Users:    userService,
		Products: productService,
		Media:    mediaService,
	}, authority, db, rdb, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("marketplace backend started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	// Stop accepting requests first, then stop the relay so in-flight cascade
	// events finish or stay unacknowledged; only then drop the connections.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}

	stopRelay()
	eventRelay.Wait()

	log.Info().Msg("shutdown complete")
}
