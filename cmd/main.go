package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/polyia/polyia-backend/internal/clients/anthropic"
	"github.com/polyia/polyia-backend/internal/clients/google"
	"github.com/polyia/polyia-backend/internal/clients/localmodel"
	"github.com/polyia/polyia-backend/internal/clients/openai"
	"github.com/polyia/polyia-backend/internal/db"
	"github.com/polyia/polyia-backend/internal/handlers"
	"github.com/polyia/polyia-backend/internal/logger"
	"github.com/polyia/polyia-backend/internal/middleware"
	"github.com/polyia/polyia-backend/internal/observability"
	"github.com/polyia/polyia-backend/internal/repos"
	"github.com/polyia/polyia-backend/internal/server"
	"github.com/polyia/polyia-backend/internal/services"
	"github.com/polyia/polyia-backend/internal/utils"
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
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "change-me-in-production-use-a-long-random-string", log)
	accessTokenTTLMinutes := utils.GetEnvAsInt("ACCESS_TOKEN_TTL_MINUTES", 60, log)
	allowedOrigins := strings.Split(utils.GetEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173", log), ",")

	// Tracing
	shutdownTracing := observability.InitTracing(context.Background(), log, observability.Config{
		ServiceName: "polyia-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})
	if shutdownTracing != nil {
		defer shutdownTracing(context.Background())
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	leccionRepo := repos.NewLeccionRepo(thePG, log)
	mensajeRepo := repos.NewMensajeRepo(thePG, log)
	callLogRepo := repos.NewAICallLogRepo(thePG, log)

	// Model clients
	log.Info("Setting up model clients from main...")
	openaiClient := openai.New(log, openai.Config{
		APIKey: utils.GetEnv("OPENAI_API_KEY", "", log),
		Model:  utils.GetEnv("OPENAI_MODEL", "gpt-4o-mini", log),
	})
	anthropicClient := anthropic.New(log, anthropic.Config{
		APIKey: utils.GetEnv("ANTHROPIC_API_KEY", "", log),
		Model:  utils.GetEnv("ANTHROPIC_MODEL", "claude-3-haiku-20240307", log),
	})
	googleClient := google.New(log, google.Config{
		APIKey: utils.GetEnv("GOOGLE_API_KEY", "", log),
		Model:  utils.GetEnv("GOOGLE_MODEL", "gemini-1.5-flash", log),
	})
	localClient := localmodel.New(log, localmodel.Config{
		URL:   utils.GetEnv("LOCAL_MODEL_URL", "http://localhost:11434/api/generate", log),
		Model: utils.GetEnv("LOCAL_MODEL_NAME", "qwen2.5:3b", log),
	})

	// Services
	log.Info("Setting up services from main...")
	authService := services.NewAuthService(thePG, log, userRepo, jwtSecretKey, time.Duration(accessTokenTTLMinutes)*time.Minute)
	lessonService := services.NewLessonService(thePG, log, leccionRepo, callLogRepo, openaiClient, anthropicClient, googleClient)
	chatService := services.NewChatService(thePG, log, mensajeRepo, callLogRepo, localClient)

	// Handlers
	log.Info("Setting up handlers from main...")
	authHandler := handlers.NewAuthHandler(authService)
	lessonHandler := handlers.NewLessonHandler(lessonService)
	chatHandler := handlers.NewChatHandler(chatService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AllowedOrigins: allowedOrigins,
		AuthHandler:    authHandler,
		LessonHandler:  lessonHandler,
		ChatHandler:    chatHandler,
		AuthMiddleware: authMiddleware,
	})

	port := utils.GetEnv("PORT", "8000", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatal("Server failed", "error", err)
	}
}
