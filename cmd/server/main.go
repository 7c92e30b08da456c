package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"eventhub/config"
	adapterauth "eventhub/internal/adapters/auth"
	adapteremail "eventhub/internal/adapters/email"
	"eventhub/internal/adapters/ticketcode"
	delivery "eventhub/internal/delivery/http"
	"eventhub/internal/delivery/http/controllers"
	"eventhub/internal/delivery/http/middleware"
	"eventhub/internal/queue"
	"eventhub/internal/realtime"
	"eventhub/internal/repository/postgres"
	"eventhub/internal/services"
)

const serviceTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Environment)
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	ticketTypeRepo := postgres.NewTicketTypeRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)
	reportRepo := postgres.NewReportRepository(db)
	notificationRepo := postgres.NewNotificationRepository(db)
	messageRepo := postgres.NewMessageRepository(db)

	// Adapters
	hasher := adapterauth.NewBcryptHasher(0)
	issuer := adapterauth.NewJWTIssuer(cfg.JWTSecret)
	verifier := adapterauth.NewJWTVerifier(cfg.JWTSecret)
	codeGenerator := ticketcode.NewGenerator()
	mailer, err := adapteremail.NewMailer(cfg.Email)
	if err != nil {
		logger.Error("init mailer", "err", err)
		os.Exit(1)
	}
	renderer := adapteremail.NewTemplateRenderer()
	publisher := queue.NewPublisher(cfg.AMQPUrl, logger)

	// Services
	emailService := services.NewEmailService(mailer, renderer)
	notificationService := services.NewNotificationService(notificationRepo, publisher, logger)
	authService := services.NewAuthService(userRepo, hasher, issuer, cfg.JWTExpiry)
	userService := services.NewUserService(userRepo)
	eventService := services.NewEventService(eventRepo, ticketTypeRepo, registrationRepo, userRepo, notificationService, emailService, logger, serviceTimeout)
	registrationService := services.NewRegistrationService(registrationRepo, eventRepo, userRepo, notificationService, emailService, logger)
	ticketService := services.NewTicketService(ticketRepo, ticketTypeRepo, eventRepo, userRepo, codeGenerator, emailService, logger, cfg.RefundWindow)
	reportService := services.NewReportService(reportRepo, eventRepo, userRepo, notificationService, logger)
	chatService := services.NewChatService(messageRepo, eventRepo, registrationRepo, notificationService, logger)

	// Real-time delivery: queue consumer feeds the session registry.
	registry := realtime.NewRegistry()
	consumer := queue.NewConsumer(cfg.AMQPUrl, func(ctx context.Context, event *queue.NotificationEvent) error {
		registry.Deliver(event)
		return nil
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go consumer.Run(ctx)

	mux := delivery.NewRouter(delivery.Controllers{
		Auth:         controllers.NewAuthController(logger, authService),
		User:         controllers.NewUserController(logger, userService),
		Event:        controllers.NewEventController(logger, eventService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
		Ticket:       controllers.NewTicketController(logger, ticketService),
		Report:       controllers.NewReportController(logger, reportService),
		Notification: controllers.NewNotificationController(logger, notificationService, registry),
		Chat:         controllers.NewChatController(logger, chatService),
	}, verifier, logger)

	handler := middleware.CORS(cfg.CORSAllowedOrigins, middleware.LoggingMiddleware(logger, mux))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", "port", cfg.Port, "env", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
