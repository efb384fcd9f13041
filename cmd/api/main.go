package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/classwork-go-api/internal/config"
	"github.com/noah-isme/classwork-go-api/internal/database"
	"github.com/noah-isme/classwork-go-api/internal/handler"
	"github.com/noah-isme/classwork-go-api/internal/middleware"
	"github.com/noah-isme/classwork-go-api/internal/models"
	"github.com/noah-isme/classwork-go-api/internal/repository"
	"github.com/noah-isme/classwork-go-api/internal/router"
	"github.com/noah-isme/classwork-go-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Enrollment{},
		&models.Assignment{},
		&models.Submission{},
		&models.QuizQuestion{},
		&models.QuizAnswer{},
		&models.GradebookEntry{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	redisClient, err := database.ConnectRedis(cfg.RedisURL)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()

	// NATS is optional; single-node deployments fall back to the in-process
	// broker plus Redis pub/sub.
	natsConn, err := database.ConnectNATS(cfg.NATSURL)
	if err != nil {
		logger.Warn().Err(err).Msg("nats unavailable, cross-node fan-out limited to redis")
		natsConn = nil
	} else {
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	classRepo := repository.NewClassRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	submissionRepo := repository.NewSubmissionRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	gradebookRepo := repository.NewGradebookRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	guard := service.NewAccessGuard(classRepo, logger)

	classService := service.NewClassService(classRepo, guard, validate, logger)
	assignmentService := service.NewAssignmentService(assignmentRepo, guard, validate, logger)
	gradebookService := service.NewGradebookService(gradebookRepo, assignmentRepo, guard, redisClient, cfg.GradebookCacheTTL, validate, logger)
	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.NotificationChannel, natsConn, validate, logger)
	submissionService := service.NewSubmissionService(submissionRepo, assignmentRepo, gradebookService, notificationService, guard, validate, logger)
	quizService := service.NewQuizService(quizRepo, submissionRepo, assignmentRepo, guard, validate, logger)

	classHandler := handler.NewClassHandler(classService, logger)
	assignmentHandler := handler.NewAssignmentHandler(assignmentService, logger)
	submissionHandler := handler.NewSubmissionHandler(submissionService, logger)
	quizHandler := handler.NewQuizHandler(quizService, logger)
	gradebookHandler := handler.NewGradebookHandler(gradebookService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger, cfg.SSEKeepAlive)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		ClassHandler:        classHandler,
		AssignmentHandler:   assignmentHandler,
		SubmissionHandler:   submissionHandler,
		QuizHandler:         quizHandler,
		GradebookHandler:    gradebookHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	runCtx, stopConsumers := context.WithCancel(context.Background())
	notificationService.Start(runCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopConsumers)
}

func waitForShutdown(app *fiber.App, stopConsumers context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopConsumers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
