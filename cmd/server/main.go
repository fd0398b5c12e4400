package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/berkayemre/chitchat-notify/internal/api"
	"github.com/berkayemre/chitchat-notify/internal/api/middleware"
	"github.com/berkayemre/chitchat-notify/internal/config"
	"github.com/berkayemre/chitchat-notify/internal/events"
	"github.com/berkayemre/chitchat-notify/internal/fanout"
	"github.com/berkayemre/chitchat-notify/internal/handlers"
	"github.com/berkayemre/chitchat-notify/internal/push"
	"github.com/berkayemre/chitchat-notify/internal/store"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	var logger zerolog.Logger
	if cfg.IsDevelopment() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().
			Timestamp().
			Logger()
	} else {
		logger = zerolog.New(os.Stdout).
			With().
			Timestamp().
			Logger()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Realtime store
	redisStore, err := store.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer redisStore.Close()
	logger.Info().Msg("connected to Redis")

	// Delivery log: Postgres when configured, SQLite otherwise
	var deliveries store.DeliveryStore
	if cfg.DatabaseURL != "" {
		pgStore, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres connection failed")
		}
		deliveries = pgStore
		logger.Info().Msg("connected to PostgreSQL delivery log")
	} else {
		sqlStore, err := store.NewSQLiteStore(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal().Err(err).Msg("sqlite open failed")
		}
		deliveries = sqlStore
		logger.Info().Str("path", cfg.SQLitePath).Msg("using SQLite delivery log")
	}
	defer deliveries.Close()

	// Push sink
	var sink push.Sink
	if cfg.PushEnabled() {
		fcm, err := push.NewFCMSink(ctx, cfg.FCMProjectID, cfg.FCMClientEmail, cfg.FCMPrivateKey)
		if err != nil {
			logger.Fatal().Err(err).Msg("fcm initialization failed")
		}
		sink = fcm
		logger.Info().Str("project", cfg.FCMProjectID).Msg("FCM sink ready")
	} else {
		sink = push.DropSink{Logger: logger}
		logger.Warn().Msg("FCM credentials not set, push sends disabled")
	}

	// Fan-out pipeline
	dispatcher := fanout.New(redisStore, redisStore, sink, deliveries, logger, cfg.LiveBadge)

	var source events.Source
	if cfg.EventSource == "amqp" {
		source = events.NewAMQPSource(cfg.AMQPURL, logger)
	} else {
		source = events.NewStreamSource(redisStore.Client(), logger)
	}

	go func() {
		if err := source.Run(ctx, dispatcher.Handle); err != nil && ctx.Err() == nil {
			logger.Fatal().Err(err).Msg("event source failed")
		}
	}()

	// HTTP surface
	auth, err := middleware.NewAuthMiddleware(cfg.CallerKeys, redisStore)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid caller keys")
	}

	h := handlers.NewHandler(redisStore, redisStore, deliveries, sink,
		events.NewStreamPublisher(redisStore.Client()))
	router := api.NewRouter(logger, h, auth)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("env", cfg.Env).
			Str("event_source", cfg.EventSource).
			Msg("starting chitchat-notify")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down...")
	cancel() // stops the event source

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}
