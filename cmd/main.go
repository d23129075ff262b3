package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nutqapp/nutq-backend/internal/db"
	"github.com/nutqapp/nutq-backend/internal/handlers"
	"github.com/nutqapp/nutq-backend/internal/logger"
	"github.com/nutqapp/nutq-backend/internal/middleware"
	"github.com/nutqapp/nutq-backend/internal/observability"
	"github.com/nutqapp/nutq-backend/internal/repos"
	"github.com/nutqapp/nutq-backend/internal/server"
	"github.com/nutqapp/nutq-backend/internal/services"
	"github.com/nutqapp/nutq-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	tokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 2592000, log)
	port := utils.GetEnv("PORT", "8080", log)
	corsOrigins := utils.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173", log)
	environment := utils.GetEnv("APP_ENV", "development", log)

	// Tracing
	shutdownOTel := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: "nutq-backend",
		Environment: environment,
		Version:     os.Getenv("APP_VERSION"),
	})
	if shutdownOTel != nil {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownOTel(ctx)
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up Repos from main...")
	parentRepo := repos.NewParentRepo(thePG, log)
	specialistRepo := repos.NewSpecialistRepo(thePG, log)
	adminRepo := repos.NewAdminRepo(thePG, log)
	centerRepo := repos.NewCenterRepo(thePG, log)
	childRepo := repos.NewChildRepo(thePG, log)
	exerciseRepo := repos.NewExerciseRepo(thePG, log)
	counterRepo := repos.NewCounterRepo(thePG, log)

	// Services
	log.Info("Setting up Services from main...")
	tokenService := services.NewTokenService(log, jwtSecretKey, time.Duration(tokenTTL)*time.Second)
	mailer := services.NewLogMailer(log)
	resolver := services.NewActorResolver(log, parentRepo, specialistRepo, adminRepo)
	linkGraphService := services.NewLinkGraphService(thePG, log, parentRepo, specialistRepo, centerRepo, childRepo)
	authService := services.NewAuthService(thePG, log, parentRepo, specialistRepo, adminRepo, centerRepo, counterRepo, tokenService, mailer)
	childService := services.NewChildService(thePG, log, childRepo, counterRepo, linkGraphService)
	exerciseService := services.NewExerciseService(thePG, log, exerciseRepo, childRepo, linkGraphService)
	adminCenterService := services.NewAdminCenterService(thePG, log, parentRepo, specialistRepo, adminRepo, centerRepo, childRepo, counterRepo, linkGraphService)

	// Handlers
	log.Info("Setting up Handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	childHandler := handlers.NewChildHandler(childService)
	exerciseHandler := handlers.NewExerciseHandler(exerciseService)
	specialistHandler := handlers.NewSpecialistHandler(linkGraphService)
	adminHandler := handlers.NewAdminHandler(adminCenterService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, tokenService, resolver, linkGraphService)

	// Router
	router := server.NewRouter(server.RouterConfig{
		AllowOrigins:      strings.Split(corsOrigins, ","),
		AuthMiddleware:    authMiddleware,
		AuthHandler:       authHandler,
		ChildHandler:      childHandler,
		ExerciseHandler:   exerciseHandler,
		SpecialistHandler: specialistHandler,
		AdminHandler:      adminHandler,
	})

	log.Info("Starting server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server exited", "error", err)
	}
}
