package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/farmgate/whatsapp-engine/internal/ai"
	"github.com/farmgate/whatsapp-engine/internal/config"
	"github.com/farmgate/whatsapp-engine/internal/conversation"
	"github.com/farmgate/whatsapp-engine/internal/credential"
	"github.com/farmgate/whatsapp-engine/internal/database"
	"github.com/farmgate/whatsapp-engine/internal/handler"
	"github.com/farmgate/whatsapp-engine/internal/i18n"
	"github.com/farmgate/whatsapp-engine/internal/jobs"
	"github.com/farmgate/whatsapp-engine/internal/marketplace"
	"github.com/farmgate/whatsapp-engine/internal/media"
	"github.com/farmgate/whatsapp-engine/internal/middleware"
	"github.com/farmgate/whatsapp-engine/internal/model"
	"github.com/farmgate/whatsapp-engine/internal/otp"
	"github.com/farmgate/whatsapp-engine/internal/queue"
	"github.com/farmgate/whatsapp-engine/internal/redis"
	"github.com/farmgate/whatsapp-engine/internal/repository"
	"github.com/farmgate/whatsapp-engine/internal/service"
	"github.com/farmgate/whatsapp-engine/internal/session"
	"github.com/farmgate/whatsapp-engine/internal/util"
	"github.com/farmgate/whatsapp-engine/internal/whatsapp"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	contactRepo := repository.NewContactRepository(db.DB)
	securityRepo := repository.NewSecurityRepository(db.DB)
	outboundLogRepo := repository.NewOutboundLogRepository(db.DB)
	market := marketplace.NewStore(db)

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
	messenger := service.NewMessenger(outbox)

	var (
		sessions session.Store
		sweeper  *session.MemoryStore
	)
	switch cfg.SessionBackend {
	case config.SessionBackendMemory:
		sweeper = session.NewMemoryStore(cfg.SessionTTL())
		sessions = sweeper
		log.Warn().Msg("using in-memory session store: sessions are not shared across instances")
	default:
		var sealer *util.Sealer
		if cfg.EncryptionKey != "" {
			sealer, err = util.NewSealer(cfg.EncryptionKey)
			if err != nil {
				log.Fatal().Err(err).Msg("invalid ENCRYPTION_KEY")
			}
		}
		sessions = session.NewRedisStore(redisClient.Client, cfg.SessionTTL(), sealer)
	}

	limiter := service.NewRateLimiter(redisClient.Client)
	contactService := service.NewContactService(contactRepo, redisClient.Client)
	securityService := service.NewSecurityService(securityRepo, cfg.PairingSecret, cfg.IdleLockAfter())
	otpService := service.NewOTPService(newOTPProvider(cfg, redisClient, messenger), limiter, redisClient.Client)
	notificationService := service.NewNotificationService(contactService, securityService, messenger, cfg.TemplateWindow())
	adminService := service.NewAdminService(tokens, outbox, outboundLogRepo, cfg.AdminTokenHash)
	deduper := service.NewDeduper(redisClient.Client, cfg.DedupeTTL())

	var extractor ai.Extractor = ai.Noop{}
	if cfg.OpenAIAPIKey != "" {
		extractor = ai.NewOpenAIExtractor(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set: free-text shortcuts and assistant answers disabled")
	}

	deps := conversation.Deps{
		Sessions:   sessions,
		Sender:     messenger,
		Market:     market,
		AI:         extractor,
		OTP:        otpService,
		Security:   securityService,
		Contacts:   contactService,
		Downloader: graph,
	}
	if cfg.S3Bucket != "" {
		store, err := media.NewStore(context.Background(), media.Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to configure media store")
		}
		deps.Media = store
	}

	engine := conversation.New(deps, conversation.Options{
		ShortcutThreshold: cfg.AIShortcutMinFields,
	})
	dispatcher := service.NewDispatcher(deduper, contactService, sessions, market, securityService, engine)

	signatureMiddleware := middleware.NewWhatsAppSignatureMiddleware(cfg.WhatsAppAppSecret)
	adminSecretMiddleware := middleware.NewAdminSecretMiddleware(adminService)
	webhookRateLimit := middleware.NewIPRateLimitMiddleware(limiter, config.WebhookIPLimit, config.WebhookIPWindow, "webhook")
	adminRateLimit := middleware.NewIPRateLimitMiddleware(limiter, 60, time.Minute, "admin")
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	apiHeadersMiddleware := middleware.NewAPIHeadersMiddleware(isProduction)

	webhookHandler := handler.NewWebhookHandler(dispatcher, cfg.WhatsAppVerifyToken)
	adminHandler := handler.NewAdminHandler(adminService, notificationService)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/webhooks/whatsapp", func(r chi.Router) {
		r.Use(webhookRateLimit.Handler)
		r.Get("/", webhookHandler.Verify)
		r.With(signatureMiddleware.Handler).Post("/", webhookHandler.Receive)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(apiHeadersMiddleware.Handler)
		r.Use(adminRateLimit.Handler)
		r.Use(adminSecretMiddleware.Handler)
		r.Mount("/", adminHandler.Routes())
	})

	var cleanupSessions interface {
		Sweep(ctx context.Context) (int64, error)
	}
	if sweeper != nil {
		cleanupSessions = sweeper
	}
	cleanupJob := jobs.NewCleanupJob(cleanupSessions, outboundLogRepo, config.DeliveryLogRetention, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	if cfg.WorkerEnabled {
		worker := queue.NewWorker(outbox, service.NewDeliveryHandler(graph, outboundLogRepo), queue.WorkerOptions{
			Concurrency:    cfg.QueueConcurrency,
			PollInterval:   config.QueuePollInterval,
			StalledTimeout: config.QueueStalledTimeout,
		})
		go func() {
			defer close(workerDone)
			if err := worker.Run(workerCtx); err != nil {
				log.Error().Err(err).Msg("queue worker exited")
			}
		}()
	} else {
		close(workerDone)
		log.Info().Msg("in-process worker disabled, run cmd/worker to deliver messages")
	}

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerRequestTimeout + 5*time.Second,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	stopWorker()
	<-workerDone

	log.Info().Msg("server stopped")
}

// newOTPProvider prefers Twilio Verify and falls back to codes delivered
// over WhatsApp itself.
func newOTPProvider(cfg *config.Config, client *redis.Client, messenger *service.Messenger) otp.Provider {
	if cfg.TwilioEnabled() {
		return otp.NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioVerifyServiceSID)
	}
	log.Warn().Msg("Twilio Verify not configured: one-time codes are sent over WhatsApp")
	return otp.NewLocalProvider(client.Client, func(ctx context.Context, to otp.Destination, code string) error {
		return messenger.Send(ctx, whatsapp.NewText(util.WaID(to.Phone), i18n.T(model.LocaleEnglish, "otp.code", code)))
	}, config.OTPCodeTTL)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
