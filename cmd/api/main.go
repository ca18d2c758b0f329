package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/marketbase/catalog-api/internal/api"
	"github.com/marketbase/catalog-api/internal/infrastructure/config"
	mongodb "github.com/marketbase/catalog-api/internal/infrastructure/db/mongo"
	redisdb "github.com/marketbase/catalog-api/internal/infrastructure/db/redis"
	"github.com/marketbase/catalog-api/pkg/logger"

	_ "github.com/marketbase/catalog-api/docs" // generated swagger docs
)

const shutdownTimeout = 10 * time.Second

// @title        Catalog API
// @version      1.0
// @description  Product catalog service with JWT authentication, ownership-based authorization and paginated search.
// @BasePath     /
//
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		l := logger.Init(logger.Options{})
		l.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect")
		}
	}()

	if err := ensureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("redis close")
		}
	}()

	e := api.NewRouter(db, rdb, cfg.JWTSecret, log)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting http server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	if err := mongodb.NewProductRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := mongodb.NewCategoryRepository(db).EnsureIndexes(ctx); err != nil {
		return err
	}
	return mongodb.NewUserRepository(db).EnsureIndexes(ctx)
}
