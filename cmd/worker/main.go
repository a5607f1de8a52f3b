package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/config"
	"github.com/farmgate/whatsapp-engine/internal/credential"
	"github.com/farmgate/whatsapp-engine/internal/database"
	"github.com/farmgate/whatsapp-engine/internal/queue"
	"github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/repository"
	"github.com/farmgate/whatsapp-engine/internal/service"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

// The worker drains the outbound queue without serving HTTP. Token rotations
// made through the server's admin endpoint reach it over Redis pub/sub.
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setLogLevel(cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()

	tokens := credential.NewRedisProvider(redisClient.Client, cfg.WhatsAppToken)
	tokens.Start()
	defer tokens.Close()

	graph := whatsapp.NewClient(whatsapp.Config{
		BaseURL:       cfg.WhatsAppAPIBaseURL,
		APIVersion:    cfg.WhatsAppAPIVersion,
		PhoneNumberID: cfg.WhatsAppPhoneNumberID,
		Timeout:       config.UpstreamHTTPTimeout,
	}, tokens)

	outbox := queue.New(redisClient.Client, queue.Options{
		MaxAttempts:   cfg.QueueMaxAttempts,
		BackoffBase:   cfg.QueueBackoffBase(),
		KeepCompleted: int64(cfg.QueueKeepCompleted),
		KeepFailed:    int64(cfg.QueueKeepFailed),
	})
	delivery := service.NewDeliveryHandler(graph, repository.NewOutboundLogRepository(db.DB))

	worker := queue.NewWorker(outbox, delivery, queue.WorkerOptions{
		Concurrency:    cfg.QueueConcurrency,
		PollInterval:   config.QueuePollInterval,
		StalledTimeout: config.QueueStalledTimeout,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := worker.Run(ctx); err != nil {
		log.Error().Err(err).Msg("queue worker exited")
	}
	log.Info().Msg("worker stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
