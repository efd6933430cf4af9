package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/turmas-api/internal/config"
	"github.com/noah-isme/turmas-api/internal/handler"
	"github.com/noah-isme/turmas-api/internal/kvstore"
	"github.com/noah-isme/turmas-api/internal/logger"
	"github.com/noah-isme/turmas-api/internal/middleware"
	"github.com/noah-isme/turmas-api/internal/observability"
	"github.com/noah-isme/turmas-api/internal/repository"
	"github.com/noah-isme/turmas-api/internal/router"
	"github.com/noah-isme/turmas-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := logger.Setup("info", "pretty")
		bootLogger.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("TURMAS_JWT_SECRET must be set")
	}

	observability.RegisterMetrics()

	ctx := context.Background()
	kv, err := kvstore.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer kv.Close()

	store := repository.NewStore(kv, log)
	validate := validator.New(validator.WithRequiredStructEnabled())

	authService := service.NewAuthService(store.Users, store.Session, validate, service.AuthConfig{
		SessionTTL: cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
	}, log)
	tokenService := service.NewTokenService(cfg.JWTSecret, cfg.AppName)
	classService := service.NewClassService(store, validate, log)
	enrollmentService := service.NewEnrollmentService(store, validate, log)
	attendanceService := service.NewAttendanceService(store, validate, log)
	gradeService := service.NewGradeService(store, validate, log)
	commentService := service.NewCommentService(store, validate, log)

	seedService := service.NewSeedService(store, cfg.BcryptCost, log)
	if cfg.SeedOnStart {
		report, err := seedService.EnsureSeedData(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("seeding demo data failed")
		} else if !report.Skipped {
			log.Info().Int("users", report.Users).Msg("demo users seeded")
		}
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &log, AllowOrigins: cfg.CORSAllowOrigins})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, tokenService, log),
		ClassHandler:      handler.NewClassHandler(classService, store, log),
		EnrollmentHandler: handler.NewEnrollmentHandler(enrollmentService, log),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, log),
		GradeHandler:      handler.NewGradeHandler(gradeService, log),
		CommentHandler:    handler.NewCommentHandler(commentService, log),
		SeedHandler:       handler.NewSeedHandler(seedService, cfg.SeedToken, log),
		SessionMiddleware: middleware.SessionAuth(tokenService, authService),
		HealthProbe:       store.Ping,
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, log)
}

func waitForShutdown(app *fiber.App, log zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	log.Info().Msg("server stopped")
}
