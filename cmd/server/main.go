package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Apple-Square/moment-notification/internal/config"
	"github.com/Apple-Square/moment-notification/internal/infrastructure/postgres"
	"github.com/Apple-Square/moment-notification/internal/infrastructure/redisttl"
	kafkaconsumer "github.com/Apple-Square/moment-notification/internal/kafka"
	"github.com/Apple-Square/moment-notification/internal/notify"
	"github.com/Apple-Square/moment-notification/internal/sse"
	transporthttp "github.com/Apple-Square/moment-notification/internal/transport/http"
	"github.com/Apple-Square/moment-notification/internal/workerpool"
)

func main() {
	// ── Logging ──────────────────────────────────────────────────────────────
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// ── Config ───────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	if cfg.Server.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	log.Info().Str("env", cfg.Server.Env).Str("port", cfg.Server.Port).Msg("starting moment-notification")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ── Database ──────────────────────────────────────────────────────────────
	pool, err := pgxpool.New(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("postgres ping failed")
	}
	log.Info().Msg("postgres connected")

	// ── Redis (presence TTL store) ────────────────────────────────────────────
	redisClient, err := redisttl.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	// ── Stores, Hub & Worker Pool ─────────────────────────────────────────────
	records := postgres.New(pool)
	chat := postgres.NewChat(pool)
	ttl := redisttl.New(redisClient)

	hub := sse.NewHub(cfg.SSE.Buffer)
	workers := workerpool.New(cfg.Pool.Workers, cfg.Pool.QueueSize)
	presence := notify.NewPresence(ttl, chat, cfg.Presence.TTL())

	// ── Strategy Registry & Dispatch Service ──────────────────────────────────
	registry := notify.NewRegistry(notify.RegistryDeps{
		Records:       records,
		Follows:       records,
		Chat:          chat,
		Presence:      presence,
		Pusher:        hub,
		Pool:          workers,
		FeedBatchSize: cfg.Dispatch.FeedBatchSize,
	})
	svc := notify.NewService(registry, workers, records, chat, hub, cfg.Dispatch.ReplayBatchSize)

	// ── HTTP Server ───────────────────────────────────────────────────────────
	handler := transporthttp.NewHandler(svc, records, chat, presence, hub, cfg.SSE.IdleTimeout())
	router := transporthttp.NewRouter(handler, cfg.Auth.JWTSecret)

	// ── Kafka Consumer ────────────────────────────────────────────────────────
	consumer, err := kafkaconsumer.New(
		cfg.Kafka.Brokers,
		cfg.Kafka.ConsumerGroupID,
		cfg.Kafka.Topics,
		svc,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create kafka consumer")
	}

	// Start Kafka consumer in background
	go consumer.Start(ctx)
	log.Info().Strs("topics", cfg.Kafka.Topics).Msg("kafka consumer started")

	// ── Retention Purge Job (every 24h) ───────────────────────────────────────
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				count, err := records.PurgeOlderThan(context.Background(), cfg.Retention.Days)
				if err != nil {
					log.Error().Err(err).Msg("notification retention purge failed")
					continue
				}
				log.Info().Int64("deleted", count).Int("older_than_days", cfg.Retention.Days).Msg("notification retention purge completed")
			case <-ctx.Done():
				return
			}
		}
	}()

	// ── Start HTTP Server ─────────────────────────────────────────────────────
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("HTTP server listening")
		if err := router.Start(":" + cfg.Server.Port); err != nil {
			log.Info().Msg("HTTP server stopped")
		}
	}()

	// ── Graceful Shutdown ─────────────────────────────────────────────────────
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := router.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}
	workers.Shutdown()

	log.Info().Msg("moment-notification stopped")
}
