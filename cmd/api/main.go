package main

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/gema-assignment-hub/internal/config"
	"github.com/noah-isme/gema-assignment-hub/internal/database"
	"github.com/noah-isme/gema-assignment-hub/internal/handler"
	"github.com/noah-isme/gema-assignment-hub/internal/middleware"
	"github.com/noah-isme/gema-assignment-hub/internal/repository"
	"github.com/noah-isme/gema-assignment-hub/internal/router"
	"github.com/noah-isme/gema-assignment-hub/internal/service"
	"github.com/noah-isme/gema-assignment-hub/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", cfg.AppName).Logger()
	if cfg.AppEnv == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelStartup()

	db, err := database.ConnectPostgres(database.PostgresConfig{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	redisClient, err := database.ConnectRedis(startupCtx, cfg.RedisURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to redis")
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	natsConn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to nats")
	}
	if natsConn != nil {
		defer natsConn.Drain()
	}

	generator, closer, err := buildGenerator(startupCtx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Str("provider", cfg.AIProvider).Msg("failed to create model client")
	}
	if closer != nil {
		defer closer.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	assignmentRepo := repository.NewAssignmentRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	templateRepo := repository.NewTemplateRepository(db)

	progressService := service.NewProgressService(assignmentRepo, studentRepo, redisClient, cfg.ProgressCacheTTL, logger)
	events := service.ChainPublishers(
		service.NewEventPublisher(redisClient, natsConn, cfg.EventsChannel, logger),
		progressService,
	)

	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		Assignments: assignmentRepo,
		Students:    studentRepo,
		Generator:   generator,
		Composer:    service.NewPromptComposer(service.NewHistoryLookup(assignmentRepo, logger)),
		Assembler:   service.NewAssignmentAssembler(assignmentRepo, logger),
		Feedback:    service.NewFeedbackRequester(generator, cfg.FeedbackTimeout, logger),
		Events:      events,
		Validator:   validate,
	}, logger)
	topicService := service.NewTopicService(studentRepo, generator, redisClient, cfg.TopicsCacheTTL, logger)
	templateService := service.NewTemplateService(templateRepo, validate, logger)
	studentService := service.NewStudentService(studentRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.AllowedOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		AssignmentHandler: handler.NewAssignmentHandler(
			assignmentService,
			middleware.RateLimit("generate", cfg.GenerationRateLimit, cfg.GenerationWindow),
			logger,
		),
		TopicHandler:    handler.NewTopicHandler(topicService, logger),
		TemplateHandler: handler.NewTemplateHandler(templateService, logger),
		StudentHandler:  handler.NewStudentHandler(studentService, progressService, logger),
		HealthProbes:    healthProbes(db, redisClient, natsConn),
		JWTMiddleware: middleware.JWTProtected(middleware.JWTConfig{
			Secret: cfg.JWTSecret,
			Issuer: cfg.JWTIssuer,
			Leeway: 30 * time.Second,
		}),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
}

func buildGenerator(ctx context.Context, cfg config.Config, logger zerolog.Logger) (ai.TextGenerator, io.Closer, error) {
	switch cfg.AIProvider {
	case "gemini":
		generator, err := ai.NewGeminiGenerator(ctx, ai.GeminiConfig{
			APIKey:      cfg.GeminiAPIKey,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Timeout:     cfg.AITimeout,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, generator, nil
	default:
		generator, err := ai.NewOpenAIGenerator(ai.OpenAIConfig{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.AIModel,
			MaxTokens:   cfg.AIMaxTokens,
			Temperature: cfg.AITemperature,
			Timeout:     cfg.AITimeout,
			Logger:      logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return generator, nil, nil
	}
}

func healthProbes(db *gorm.DB, redisClient *redis.Client, natsConn *nats.Conn) map[string]handler.HealthProbe {
	probes := map[string]handler.HealthProbe{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if redisClient != nil {
		probes["redis"] = func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}
	}
	if natsConn != nil {
		probes["nats"] = func(context.Context) error {
			if !natsConn.IsConnected() {
				return errors.New("nats disconnected")
			}
			return nil
		}
	}
	return probes
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
