package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gatherly/config"
	_ "gatherly/docs"
	authadapter "gatherly/internal/adapters/auth"
	"gatherly/internal/adapters/email"
	"gatherly/internal/adapters/notify"
	"gatherly/internal/adapters/queue"
	delivery "gatherly/internal/delivery/http"
	"gatherly/internal/delivery/http/controllers"
	"gatherly/internal/delivery/http/middleware"
	"gatherly/internal/repository/postgres"
	"gatherly/internal/services"
)

// @title Gatherly API
// @version 1.0
// @description Event registration and favorites service.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := config.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "err", err)
		os.Exit(1)
	}

	db, err := postgres.Open(cfg.DBUrl)
	if err != nil {
		logger.Error("failed to connect to database", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Repositories
	atomic := postgres.NewAtomicRunner(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	favoriteRepo := postgres.NewFavoriteRepository(db)
	userRepo := postgres.NewUserRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	audit := postgres.NewAuditLogger(db, logger)

	// Adapters
	hasher := authadapter.NewBcryptHasher(12)
	tokens := authadapter.NewJWTManager(cfg.JWTSecret)

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:          cfg.SESRegion,
			AccessKeyID:     cfg.SESAccessKey,
			SecretAccessKey: cfg.SESSecretKey,
		},
	}, logger)
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	var publisher *queue.Publisher
	if cfg.QueueEnabled {
		publisher, err = queue.NewPublisher(cfg.RabbitURL)
		if err != nil {
			logger.Error("failed to connect to message broker", "err", err)
			os.Exit(1)
		}
		defer publisher.Close()

		consumer := queue.NewEmailConsumer(cfg.RabbitURL, userRepo, mailer, logger)
		go consumer.Start(ctx)
	}
	notifier := notify.NewNoopNotifier()
	if cfg.NotificationsEnabled {
		notifier = notify.NewStoreNotifier(notificationRepo, publisher, logger)
	}

	// Services
	authService := services.NewAuthService(userRepo, hasher, tokens)
	eventService := services.NewEventService(eventRepo, registrationRepo, notifier, audit, cfg.RequestTimeout)
	registrationService := services.NewRegistrationService(atomic, eventRepo, registrationRepo, notifier, audit, logger, cfg.RequestTimeout)
	favoriteService := services.NewFavoriteService(atomic, eventRepo, favoriteRepo, logger, cfg.RequestTimeout)
	notificationService := services.NewNotificationService(notificationRepo, cfg.RequestTimeout)

	// Controllers
	authController := controllers.NewAuthController(logger, authService)
	eventController := controllers.NewEventController(logger, eventService)
	registrationController := controllers.NewRegistrationController(logger, registrationService)
	favoriteController := controllers.NewFavoriteController(logger, favoriteService)
	notificationController := controllers.NewNotificationController(logger, notificationService)

	mux := delivery.NewRouter(
		logger,
		tokens,
		authController,
		eventController,
		registrationController,
		favoriteController,
		notificationController,
	)

	handler := middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
